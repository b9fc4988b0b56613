package unityfs

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unitydump/unityfs/format"
)

// buildStream assembles a minimal, valid revision-17 serialized-file byte
// stream: common header, little endianness, one type with an embedded
// blob type tree (Base { SInt32 m_Value; }), one object, no scripts, no
// externals. Mirrors serialize's own test fixture since the helper there
// is unexported.
func buildStream(t *testing.T) []byte {
	t.Helper()

	var body bytes.Buffer
	body.WriteString("2019.4.1f1")
	body.WriteByte(0)
	binary.Write(&body, binary.LittleEndian, int32(19))
	body.WriteByte(1)
	binary.Write(&body, binary.LittleEndian, uint32(1))

	binary.Write(&body, binary.LittleEndian, int32(1))
	body.WriteByte(0)
	binary.Write(&body, binary.LittleEndian, int16(-1))
	body.Write(make([]byte, 16))

	stringBuf := []byte("Base\x00SInt32\x00m_Value\x00")
	binary.Write(&body, binary.LittleEndian, int32(2))
	binary.Write(&body, binary.LittleEndian, int32(len(stringBuf)))
	binary.Write(&body, binary.LittleEndian, uint16(1))
	body.WriteByte(0)
	body.WriteByte(0)
	binary.Write(&body, binary.LittleEndian, uint32(0))
	binary.Write(&body, binary.LittleEndian, uint32(0))
	binary.Write(&body, binary.LittleEndian, int32(4))
	binary.Write(&body, binary.LittleEndian, int32(0))
	binary.Write(&body, binary.LittleEndian, int32(0))
	binary.Write(&body, binary.LittleEndian, uint16(1))
	body.WriteByte(1)
	body.WriteByte(0)
	binary.Write(&body, binary.LittleEndian, uint32(5))
	binary.Write(&body, binary.LittleEndian, uint32(12))
	binary.Write(&body, binary.LittleEndian, int32(4))
	binary.Write(&body, binary.LittleEndian, int32(1))
	binary.Write(&body, binary.LittleEndian, int32(0))
	body.Write(stringBuf)

	binary.Write(&body, binary.LittleEndian, int32(1))
	for body.Len()%4 != 0 {
		body.WriteByte(0)
	}
	binary.Write(&body, binary.LittleEndian, int64(1))
	binary.Write(&body, binary.LittleEndian, uint32(0))
	binary.Write(&body, binary.LittleEndian, uint32(4))
	binary.Write(&body, binary.LittleEndian, int32(0))

	binary.Write(&body, binary.LittleEndian, int32(0))
	binary.Write(&body, binary.LittleEndian, int32(0))
	body.WriteByte(0)

	const headerSize = 4 + 4 + 4 + 4 + 1 + 3
	dataOffset := uint32(headerSize + body.Len())

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(body.Len()))
	binary.Write(&out, binary.BigEndian, uint32(0))
	binary.Write(&out, binary.BigEndian, uint32(17))
	binary.Write(&out, binary.BigEndian, dataOffset)
	out.WriteByte(0)
	out.Write(make([]byte, 3))
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, int32(42)) // m_Value payload

	return out.Bytes()
}

func TestOpenSerializedFile(t *testing.T) {
	require := require.New(t)

	data := buildStream(t)

	f, err := OpenSerializedFile(data)
	require.NoError(err)
	require.Equal(uint32(17), f.Version)
	require.True(f.LittleEndian)
	require.Len(f.Objects, 1)
	require.Equal(format.ClassGameObject, format.ClassID(f.Objects[0].ClassID))
}

func TestNewViewerIngestsStandaloneStream(t *testing.T) {
	require := require.New(t)

	v := NewViewer(nil)
	streamID, err := v.AddStream(bytes.NewReader(buildStream(t)), "")
	require.NoError(err)

	obj, err := v.Object(streamID, 1)
	require.NoError(err)
	require.Equal(int32(format.ClassGameObject), obj.ClassID)

	value, err := obj.Int("/Base/m_Value")
	require.NoError(err)
	require.Equal(int64(42), value)
}

func TestNewSchemaProviderNoSourceRegistered(t *testing.T) {
	require := require.New(t)

	sp := NewSchemaProvider()
	_, err := sp.ClassTree("2021.3.5f1", 114)
	require.Error(err)
}
