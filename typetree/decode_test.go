package typetree

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unitydump/unityfs/commonstring"
	"github.com/unitydump/unityfs/endian"
)

// buildBlob assembles a raw blob type-tree buffer (node count, string
// buffer size, node records, string buffer) matching version17.rs's
// TypeTree struct, for nodes whose type/name use an inline string-buffer
// offset rather than the common table.
func buildBlob(t *testing.T, stringBuf []byte, nodes []struct {
	version   uint16
	level     uint8
	typeFlags uint8
	typeOff   uint32
	nameOff   uint32
	byteSize  int32
	index     int32
	metaFlag  int32
}) []byte {
	t.Helper()

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, int32(len(nodes)))
	binary.Write(&buf, binary.BigEndian, int32(len(stringBuf)))
	for _, n := range nodes {
		binary.Write(&buf, binary.BigEndian, n.version)
		binary.Write(&buf, binary.BigEndian, n.level)
		binary.Write(&buf, binary.BigEndian, n.typeFlags)
		binary.Write(&buf, binary.BigEndian, n.typeOff)
		binary.Write(&buf, binary.BigEndian, n.nameOff)
		binary.Write(&buf, binary.BigEndian, n.byteSize)
		binary.Write(&buf, binary.BigEndian, n.index)
		binary.Write(&buf, binary.BigEndian, n.metaFlag)
	}
	buf.Write(stringBuf)

	return buf.Bytes()
}

func TestDecodeBlobInlineStrings(t *testing.T) {
	require := require.New(t)

	// string buffer: "SInt32\0m_Value\0"
	stringBuf := []byte("SInt32\x00m_Value\x00")

	data := buildBlob(t, stringBuf, []struct {
		version   uint16
		level     uint8
		typeFlags uint8
		typeOff   uint32
		nameOff   uint32
		byteSize  int32
		index     int32
		metaFlag  int32
	}{
		{version: 1, level: 0, typeFlags: 0, typeOff: 0, nameOff: 7, byteSize: 4, index: 0, metaFlag: 0},
	})

	tree, err := DecodeBlob(endian.NewReader(data, endian.BigEndianEngine), false)
	require.NoError(err)
	require.Len(tree.Nodes, 1)
	require.Equal("SInt32", tree.Nodes[0].TypeName)
	require.Equal("m_Value", tree.Nodes[0].Name)
	require.Equal(int32(4), tree.Nodes[0].ByteSize)
}

func TestDecodeBlobCommonStringOffset(t *testing.T) {
	require := require.New(t)

	off, ok := commonstring.OffsetOf("int")
	require.True(ok)

	data := buildBlob(t, nil, []struct {
		version   uint16
		level     uint8
		typeFlags uint8
		typeOff   uint32
		nameOff   uint32
		byteSize  int32
		index     int32
		metaFlag  int32
	}{
		{version: 1, level: 0, typeFlags: 0, typeOff: off, nameOff: off, byteSize: 4, index: 0, metaFlag: 0},
	})

	tree, err := DecodeBlob(endian.NewReader(data, endian.BigEndianEngine), false)
	require.NoError(err)
	require.Equal("int", tree.Nodes[0].TypeName)
	require.Equal("int", tree.Nodes[0].Name)
}

func TestDecodeBlobWithRefTypeHash(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, int32(1))
	binary.Write(&buf, binary.BigEndian, int32(2)) // "a\0"
	binary.Write(&buf, binary.BigEndian, uint16(1))
	binary.Write(&buf, binary.BigEndian, uint8(0))
	binary.Write(&buf, binary.BigEndian, uint8(0))
	binary.Write(&buf, binary.BigEndian, uint32(0))
	binary.Write(&buf, binary.BigEndian, uint32(0))
	binary.Write(&buf, binary.BigEndian, int32(0))
	binary.Write(&buf, binary.BigEndian, int32(0))
	binary.Write(&buf, binary.BigEndian, int32(0))
	binary.Write(&buf, binary.BigEndian, uint64(0xdeadbeef))
	buf.WriteString("a\x00")

	tree, err := DecodeBlob(endian.NewReader(buf.Bytes(), endian.BigEndianEngine), true)
	require.NoError(err)
	require.True(tree.Nodes[0].HasRefHash)
	require.Equal(uint64(0xdeadbeef), tree.Nodes[0].RefTypeHash)
}

func TestDecodeRecursive(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	writeCString := func(s string) {
		buf.WriteString(s)
		buf.WriteByte(0)
	}

	// root: Base named Base, 1 child
	writeCString("Base")
	writeCString("Base")
	binary.Write(&buf, binary.BigEndian, int32(8)) // byte_size
	binary.Write(&buf, binary.BigEndian, int32(0)) // index
	binary.Write(&buf, binary.BigEndian, int32(0)) // type_flags
	binary.Write(&buf, binary.BigEndian, int32(1)) // version
	binary.Write(&buf, binary.BigEndian, int32(0)) // meta_flag
	binary.Write(&buf, binary.BigEndian, int32(1)) // children_count

	// child: SInt32 m_Value, 0 children
	writeCString("SInt32")
	writeCString("m_Value")
	binary.Write(&buf, binary.BigEndian, int32(4))
	binary.Write(&buf, binary.BigEndian, int32(1))
	binary.Write(&buf, binary.BigEndian, int32(0))
	binary.Write(&buf, binary.BigEndian, int32(1))
	binary.Write(&buf, binary.BigEndian, int32(0))
	binary.Write(&buf, binary.BigEndian, int32(0))

	tree, err := DecodeRecursive(endian.NewReader(buf.Bytes(), endian.BigEndianEngine))
	require.NoError(err)
	require.Len(tree.Nodes, 2)
	require.Equal(uint8(0), tree.Nodes[0].Level)
	require.Equal("Base", tree.Nodes[0].TypeName)
	require.Equal(uint8(1), tree.Nodes[1].Level)
	require.Equal("m_Value", tree.Nodes[1].Name)
	require.True(tree.IsRecord(0))
}
