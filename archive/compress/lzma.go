package compress

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// LZMA decompresses archive blocks compressed with LZMA. Unity's archive
// format stores raw LZMA streams without the classic 13-byte
// properties+dictionary-size+uncompressed-size header the ulikunitz/xz
// decoder expects, so the header is reconstructed from the engine's known
// default properties (lc=3, lp=0, pb=2) and the block's declared
// uncompressed size before handing the stream to the decoder.
type LZMA struct{}

// defaultProps is the packed properties byte (pb*5+lp)*9+lc for Unity's
// fixed lc=3, lp=0, pb=2.
const defaultProps = (2*5+0)*9 + 3

func (LZMA) Decompress(data []byte, size int) ([]byte, error) {
	header := make([]byte, 13)
	header[0] = defaultProps

	dictSize := uint32(size)
	if dictSize < 1<<16 {
		dictSize = 1 << 16
	}
	binary.LittleEndian.PutUint32(header[1:5], dictSize)
	binary.LittleEndian.PutUint64(header[5:13], uint64(size))

	stream := bytes.NewBuffer(make([]byte, 0, len(header)+len(data)))
	stream.Write(header)
	stream.Write(data)

	r, err := lzma.NewReader(stream)
	if err != nil {
		return nil, fmt.Errorf("unityfs/archive/compress: lzma: %w", err)
	}

	dst := make([]byte, size)
	if _, err := io.ReadFull(r, dst); err != nil {
		return nil, fmt.Errorf("unityfs/archive/compress: lzma: %w", err)
	}

	return dst, nil
}
