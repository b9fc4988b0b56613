package archive

import (
	"bytes"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/unitydump/unityfs/errs"
)

// mmapReadSeeker adapts a memory-mapped file to io.ReadSeeker so Open can
// parse it exactly as it would any other seekable reader, without copying
// the archive into a heap buffer first.
type mmapReadSeeker struct {
	*bytes.Reader
	data mmap.MMap
	f    *os.File
}

func (m *mmapReadSeeker) Close() error {
	unmapErr := m.data.Unmap()
	closeErr := m.f.Close()
	if unmapErr != nil {
		return unmapErr
	}

	return closeErr
}

// OpenFile memory-maps the archive at path (the fast path for local-disk
// archives, grounded on saferwall-pe's File.New) and opens it. The
// returned Archive's ReadFile calls read directly out of the mapping; call
// Close when done to release it.
func OpenFile(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("%w: mmap: %v", errs.ErrIO, err)
	}

	rs := &mmapReadSeeker{Reader: bytes.NewReader(data), data: data, f: f}

	a, err := Open(rs, path)
	if err != nil {
		rs.Close()

		return nil, err
	}
	a.closer = rs

	return a, nil
}

// Close releases the archive's mmap, if it was opened via OpenFile. It is
// a no-op for archives opened directly with Open.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}

	return a.closer.Close()
}
