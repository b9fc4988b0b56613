package compress

import "fmt"

// NoOp passes block data through unchanged, still validating the
// declared uncompressed size against what was actually stored.
type NoOp struct{}

func (NoOp) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) != size {
		return nil, fmt.Errorf("unityfs/archive/compress: uncompressed block size mismatch: got %d, want %d", len(data), size)
	}

	return data, nil
}
