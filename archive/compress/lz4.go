package compress

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// LZ4 decompresses archive blocks compressed with LZ4 or LZ4HC — both
// share a block format and decoder, only the encoder differs. Since the
// archive descriptor always declares the exact uncompressed size, the
// destination buffer is allocated once up front instead of growing on
// lz4.ErrInvalidSourceShortBuffer.
type LZ4 struct{}

func (LZ4) Decompress(data []byte, size int) ([]byte, error) {
	dst := make([]byte, size)

	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("unityfs/archive/compress: lz4: %w", err)
	}

	if n != size {
		return nil, fmt.Errorf("unityfs/archive/compress: lz4: decompressed %d bytes, want %d", n, size)
	}

	return dst, nil
}
