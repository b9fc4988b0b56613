// Package compress implements the archive block codecs: None, LZ4/LZ4HC
// and LZMA. Every block's uncompressed size is known ahead of time from
// the archive descriptor, so the interface is shaped around "decompress
// into a buffer of this declared size" rather than a streaming reader —
// the decode-only direction this read-only decoder needs.
package compress

import (
	"fmt"

	"github.com/unitydump/unityfs/format"
)

// Decompressor decompresses a block whose uncompressed size is known in
// advance. Implementations must return exactly size bytes or an error.
type Decompressor interface {
	Decompress(data []byte, size int) ([]byte, error)
}

var builtin = map[format.CompressionKind]Decompressor{
	format.CompressionNone:  NoOp{},
	format.CompressionLZ4:   LZ4{},
	format.CompressionLZ4HC: LZ4{},
	format.CompressionLZMA:  LZMA{},
}

// Get returns the Decompressor for kind.
func Get(kind format.CompressionKind) (Decompressor, error) {
	d, ok := builtin[kind]
	if !ok {
		return nil, fmt.Errorf("unityfs/archive/compress: unsupported compression kind: %s", kind)
	}

	return d, nil
}
