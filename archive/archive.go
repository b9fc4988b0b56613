// Package archive implements the outer UnityFS container format. It
// parses the header and compressed descriptor, then exposes
// random-access reads of the logical files (nodes) the descriptor names,
// transparently decompressing the storage blocks that back them.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/unitydump/unityfs/archive/compress"
	"github.com/unitydump/unityfs/endian"
	"github.com/unitydump/unityfs/errs"
)

// Archive is one opened UnityFS container. Reads against the backing
// reader are serialized behind a mutex so concurrent ReadFile/
// OpenFileReader calls from multiple goroutines stay correct;
// the Archive itself does not spawn any goroutines.
type Archive struct {
	mu         sync.Mutex
	r          io.ReadSeeker
	header     Header
	blocks     []StorageBlock
	nodes      []Node
	dataStart  int64 // file offset where the first storage block begins
	SearchPath string
	closer     io.Closer
}

// Open parses an archive's header and descriptor from r. searchPath, if
// non-empty, is recorded for OpenResourceFile's sibling-file search order
//.
func Open(r io.ReadSeeker, searchPath string) (*Archive, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("%w: reading magic: %v", errs.ErrIO, err)
	}
	if string(magic) != Magic {
		return nil, fmt.Errorf("%w: bad magic %q", errs.ErrParse, magic)
	}

	hdr := Header{}
	var err error
	hdr.Version, err = readU32BE(r)
	if err != nil {
		return nil, err
	}
	if hdr.EngineVersion, err = readCString(r); err != nil {
		return nil, err
	}
	if hdr.EngineRevision, err = readCString(r); err != nil {
		return nil, err
	}
	if hdr.Size, err = readI64BE(r); err != nil {
		return nil, err
	}
	if hdr.CompressedDescriptorSize, err = readU32BE(r); err != nil {
		return nil, err
	}
	if hdr.UncompressedDescriptorSize, err = readU32BE(r); err != nil {
		return nil, err
	}
	rawFlags, err := readU32BE(r)
	if err != nil {
		return nil, err
	}
	hdr.Flags = Flags(rawFlags)

	if hdr.Version >= 7 {
		if err := alignTo16(r); err != nil {
			return nil, err
		}
	}

	desc, dataStart, err := readDescriptor(r, hdr)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		r:          r,
		header:     hdr,
		blocks:     desc.Blocks,
		nodes:      desc.Nodes,
		dataStart:  dataStart,
		SearchPath: searchPath,
	}

	return a, nil
}

// Header returns the parsed archive header.
func (a *Archive) Header() Header { return a.header }

// ListFiles returns the archive's logical files in descriptor order.
func (a *Archive) ListFiles() []Node {
	out := make([]Node, len(a.nodes))
	copy(out, a.nodes)

	return out
}

func (a *Archive) findNode(name string) (Node, bool) {
	for _, n := range a.nodes {
		if n.Name == name {
			return n, true
		}
	}

	return Node{}, false
}

// ReadFile returns the fully materialized, decompressed bytes of the named
// logical file, decompressing only the storage blocks that overlap its
// byte range.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	node, ok := a.findNode(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrNotFound, name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]byte, 0, node.Size)
	var compressedOffset, uncompressedOffset int64

	for _, block := range a.blocks {
		blockStart := uncompressedOffset
		blockEnd := blockStart + int64(block.UncompressedSize)
		nodeEnd := node.Offset + node.Size

		if blockEnd > node.Offset && blockStart < nodeEnd {
			compressedBuf := make([]byte, block.CompressedSize)
			if _, err := a.r.Seek(a.dataStart+compressedOffset, io.SeekStart); err != nil {
				return nil, fmt.Errorf("%w: seeking block: %v", errs.ErrIO, err)
			}
			if _, err := io.ReadFull(a.r, compressedBuf); err != nil {
				return nil, fmt.Errorf("%w: reading block: %v", errs.ErrIO, err)
			}

			codec, err := compress.Get(block.Flags.Compression())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrUnsupportedRevision, err)
			}
			uncompressed, err := codec.Decompress(compressedBuf, int(block.UncompressedSize))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrDecompression, err)
			}

			sliceStart := int64(0)
			if blockStart < node.Offset {
				sliceStart = node.Offset - blockStart
			}
			sliceEnd := int64(len(uncompressed))
			if blockEnd > nodeEnd {
				sliceEnd = sliceEnd - (blockEnd - nodeEnd)
			}
			out = append(out, uncompressed[sliceStart:sliceEnd]...)

			if int64(len(out)) >= node.Size {
				break
			}
		}

		compressedOffset += int64(block.CompressedSize)
		uncompressedOffset += int64(block.UncompressedSize)
	}

	if int64(len(out)) != node.Size {
		return nil, fmt.Errorf("%w: assembled %d bytes for %q, want %d", errs.ErrIO, len(out), name, node.Size)
	}

	return out, nil
}

// OpenFileReader returns a seekable reader over the named logical file.
// It favors simplicity over streaming block cursors: the file is fully
// materialized once and handed back as an in-memory cursor.
func (a *Archive) OpenFileReader(name string) (io.ReadSeeker, error) {
	data, err := a.ReadFile(name)
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(data), nil
}

func readDescriptor(r io.ReadSeeker, hdr Header) (descriptor, int64, error) {
	compressedBuf := make([]byte, hdr.CompressedDescriptorSize)

	if hdr.Flags.BlocksAtEnd() {
		savedPos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return descriptor{}, 0, fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		if _, err := r.Seek(-int64(hdr.CompressedDescriptorSize), io.SeekEnd); err != nil {
			return descriptor{}, 0, fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		if _, err := io.ReadFull(r, compressedBuf); err != nil {
			return descriptor{}, 0, fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		if _, err := r.Seek(savedPos, io.SeekStart); err != nil {
			return descriptor{}, 0, fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
	} else {
		if _, err := io.ReadFull(r, compressedBuf); err != nil {
			return descriptor{}, 0, fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
	}

	if hdr.Flags.PadBeforeBlocks() {
		if err := alignTo16(r); err != nil {
			return descriptor{}, 0, err
		}
	}

	dataStart, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return descriptor{}, 0, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	codec, err := compress.Get(hdr.Flags.Compression())
	if err != nil {
		return descriptor{}, 0, fmt.Errorf("%w: %v", errs.ErrUnsupportedRevision, err)
	}
	uncompressed, err := codec.Decompress(compressedBuf, int(hdr.UncompressedDescriptorSize))
	if err != nil {
		return descriptor{}, 0, fmt.Errorf("%w: descriptor: %v", errs.ErrDecompression, err)
	}

	desc, err := parseDescriptor(uncompressed)
	if err != nil {
		return descriptor{}, 0, err
	}

	return desc, dataStart, nil
}

func parseDescriptor(buf []byte) (descriptor, error) {
	br := endian.NewReader(buf, endian.BigEndianEngine)

	var d descriptor
	hash, ok := br.Bytes(16)
	if !ok {
		return d, fmt.Errorf("%w: descriptor hash truncated", errs.ErrParse)
	}
	copy(d.Hash[:], hash)

	blockCount, ok := br.U32()
	if !ok {
		return d, fmt.Errorf("%w: descriptor block count truncated", errs.ErrParse)
	}
	d.Blocks = make([]StorageBlock, 0, blockCount)
	for i := uint32(0); i < blockCount; i++ {
		uncSize, ok1 := br.U32()
		compSize, ok2 := br.I32()
		flags, ok3 := br.U16()
		if !ok1 || !ok2 || !ok3 {
			return d, fmt.Errorf("%w: storage block %d truncated", errs.ErrParse, i)
		}
		d.Blocks = append(d.Blocks, StorageBlock{
			UncompressedSize: uncSize,
			CompressedSize:   compSize,
			Flags:            BlockFlags(flags),
		})
	}

	nodeCount, ok := br.U32()
	if !ok {
		return d, fmt.Errorf("%w: descriptor node count truncated", errs.ErrParse)
	}
	d.Nodes = make([]Node, 0, nodeCount)
	for i := uint32(0); i < nodeCount; i++ {
		offset, ok1 := br.I64()
		size, ok2 := br.I64()
		flags, ok3 := br.U32()
		name, ok4 := br.CString()
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return d, fmt.Errorf("%w: node %d truncated", errs.ErrParse, i)
		}
		d.Nodes = append(d.Nodes, Node{Offset: offset, Size: size, Flags: flags, Name: name})
	}

	return d, nil
}

func alignTo16(r io.ReadSeeker) error {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	if rem := pos % 16; rem != 0 {
		if _, err := r.Seek(16-rem, io.SeekCurrent); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
	}

	return nil
}

func readU32BE(r io.Reader) (uint32, error) {
	b, err := readExact(r, 4)
	if err != nil {
		return 0, err
	}

	return endian.BigEndianEngine.Uint32(b), nil
}

func readI64BE(r io.Reader) (int64, error) {
	b, err := readExact(r, 8)
	if err != nil {
		return 0, err
	}

	return int64(endian.BigEndianEngine.Uint64(b)), nil
}

func readExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return buf, nil
}

func readCString(r io.Reader) (string, error) {
	var buf bytes.Buffer
	single := make([]byte, 1)
	for {
		if _, err := io.ReadFull(r, single); err != nil {
			return "", fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		if single[0] == 0 {
			return buf.String(), nil
		}
		buf.WriteByte(single[0])
	}
}
