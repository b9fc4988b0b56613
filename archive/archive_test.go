package archive

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

// buildArchive assembles a minimal UnityFS archive byte stream with a
// single, uncompressed descriptor (for test simplicity) and the given
// storage blocks/nodes, compressing each block's payload with LZ4.
func buildArchive(t *testing.T, blockPayloads [][]byte, nodes []Node) []byte {
	t.Helper()

	var compressedBlocks []byte
	blockInfos := make([]StorageBlock, 0, len(blockPayloads))
	for _, payload := range blockPayloads {
		dst := make([]byte, lz4.CompressBlockBound(len(payload)))
		var c lz4.Compressor
		n, err := c.CompressBlock(payload, dst)
		require.NoError(t, err)
		compressed := dst[:n]

		blockInfos = append(blockInfos, StorageBlock{
			UncompressedSize: uint32(len(payload)),
			CompressedSize:   int32(len(compressed)),
			Flags:            BlockFlags(uint16(2)), // LZ4
		})
		compressedBlocks = append(compressedBlocks, compressed...)
	}

	var descriptor bytes.Buffer
	descriptor.Write(make([]byte, 16)) // hash
	binary.Write(&descriptor, binary.BigEndian, uint32(len(blockInfos)))
	for _, b := range blockInfos {
		binary.Write(&descriptor, binary.BigEndian, b.UncompressedSize)
		binary.Write(&descriptor, binary.BigEndian, b.CompressedSize)
		binary.Write(&descriptor, binary.BigEndian, uint16(b.Flags))
	}
	binary.Write(&descriptor, binary.BigEndian, uint32(len(nodes)))
	for _, n := range nodes {
		binary.Write(&descriptor, binary.BigEndian, n.Offset)
		binary.Write(&descriptor, binary.BigEndian, n.Size)
		binary.Write(&descriptor, binary.BigEndian, n.Flags)
		descriptor.WriteString(n.Name)
		descriptor.WriteByte(0)
	}

	var out bytes.Buffer
	out.WriteString(Magic)
	binary.Write(&out, binary.BigEndian, uint32(6)) // version < 7: no 16-byte align
	out.WriteByte(0)                                 // engine version
	out.WriteByte(0)                                 // engine revision
	binary.Write(&out, binary.BigEndian, int64(0))   // size (unused by reader)
	binary.Write(&out, binary.BigEndian, uint32(descriptor.Len()))
	binary.Write(&out, binary.BigEndian, uint32(descriptor.Len()))
	binary.Write(&out, binary.BigEndian, uint32(0)) // flags: compression=None
	out.Write(descriptor.Bytes())
	out.Write(compressedBlocks)

	return out.Bytes()
}

func TestArchiveReadFileSingleBlock(t *testing.T) {
	require := require.New(t)

	payload := make([]byte, 32)
	for i := range payload {
		payload[i] = byte(i)
	}

	data := buildArchive(t, [][]byte{payload}, []Node{{Offset: 8, Size: 16, Name: "CAB-x"}})

	a, err := Open(bytes.NewReader(data), "")
	require.NoError(err)

	got, err := a.ReadFile("CAB-x")
	require.NoError(err)
	require.Equal(payload[8:24], got)
}

func TestArchiveReadFileCrossBlock(t *testing.T) {
	require := require.New(t)

	block0 := make([]byte, 10)
	block1 := make([]byte, 10)
	for i := range block0 {
		block0[i] = byte(i)
		block1[i] = byte(100 + i)
	}

	data := buildArchive(t, [][]byte{block0, block1}, []Node{{Offset: 6, Size: 8, Name: "n"}})

	a, err := Open(bytes.NewReader(data), "")
	require.NoError(err)

	got, err := a.ReadFile("n")
	require.NoError(err)

	want := append(append([]byte{}, block0[6:10]...), block1[0:4]...)
	require.Equal(want, got)
}

func TestArchiveReadFileNotFound(t *testing.T) {
	require := require.New(t)

	data := buildArchive(t, [][]byte{make([]byte, 4)}, []Node{{Offset: 0, Size: 4, Name: "n"}})

	a, err := Open(bytes.NewReader(data), "")
	require.NoError(err)

	_, err = a.ReadFile("missing")
	require.Error(err)
}

func TestArchiveOpenFileReaderIsSeekable(t *testing.T) {
	require := require.New(t)

	payload := []byte("hello world!!!!")
	data := buildArchive(t, [][]byte{payload}, []Node{{Offset: 0, Size: int64(len(payload)), Name: "CAB-x"}})

	a, err := Open(bytes.NewReader(data), "")
	require.NoError(err)

	r, err := a.OpenFileReader("CAB-x")
	require.NoError(err)

	_, err = r.Seek(6, io.SeekStart)
	require.NoError(err)

	buf := make([]byte, 5)
	_, err = io.ReadFull(r, buf)
	require.NoError(err)
	require.Equal("world", string(buf))
}
