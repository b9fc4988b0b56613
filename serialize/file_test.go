package serialize

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unitydump/unityfs/format"
)

// buildStream assembles a minimal, valid revision-17 serialized-file byte
// stream: common header, endianness (little), one type with an embedded
// blob type tree (Base { SInt32 m_Value; }), one object, no scripts, no
// externals.
func buildStream(t *testing.T) []byte {
	t.Helper()

	var body bytes.Buffer
	// unity_version
	body.WriteString("2019.4.1f1")
	body.WriteByte(0)
	// target_platform (i32 little)
	binary.Write(&body, binary.LittleEndian, int32(19))
	// enable_type_tree
	body.WriteByte(1)
	// type_count
	binary.Write(&body, binary.LittleEndian, uint32(1))

	// --- type 0 ---
	binary.Write(&body, binary.LittleEndian, int32(1)) // class_id = GameObject
	body.WriteByte(0)                                   // is_stripped_type
	binary.Write(&body, binary.LittleEndian, int16(-1)) // script_type_index
	// old_type_hash (16 bytes)
	body.Write(make([]byte, 16))

	// type tree blob: node count=2, string buffer size
	stringBuf := []byte("Base\x00SInt32\x00m_Value\x00")
	binary.Write(&body, binary.LittleEndian, int32(2))
	binary.Write(&body, binary.LittleEndian, int32(len(stringBuf)))
	// node 0: Base, level 0
	binary.Write(&body, binary.LittleEndian, uint16(1)) // version
	body.WriteByte(0)                                    // level
	body.WriteByte(0)                                    // type_flags
	binary.Write(&body, binary.LittleEndian, uint32(0))  // type_str_offset -> "Base"
	binary.Write(&body, binary.LittleEndian, uint32(0))  // name_str_offset -> "Base"
	binary.Write(&body, binary.LittleEndian, int32(4))   // byte_size
	binary.Write(&body, binary.LittleEndian, int32(0))   // index
	binary.Write(&body, binary.LittleEndian, int32(0))   // meta_flag
	// node 1: SInt32 m_Value, level 1
	binary.Write(&body, binary.LittleEndian, uint16(1))
	body.WriteByte(1)
	body.WriteByte(0)
	binary.Write(&body, binary.LittleEndian, uint32(5))  // "SInt32"
	binary.Write(&body, binary.LittleEndian, uint32(12)) // "m_Value"
	binary.Write(&body, binary.LittleEndian, int32(4))
	binary.Write(&body, binary.LittleEndian, int32(1))
	binary.Write(&body, binary.LittleEndian, int32(0))
	body.Write(stringBuf)

	// object_count
	binary.Write(&body, binary.LittleEndian, int32(1))
	// alignment before path_id (revision >= 14 path id i64, aligned)
	for body.Len()%4 != 0 {
		body.WriteByte(0)
	}
	binary.Write(&body, binary.LittleEndian, int64(1))  // path_id
	binary.Write(&body, binary.LittleEndian, uint32(0)) // byte_start
	binary.Write(&body, binary.LittleEndian, uint32(4)) // byte_size
	binary.Write(&body, binary.LittleEndian, int32(0))  // type_id

	// script_count
	binary.Write(&body, binary.LittleEndian, int32(0))
	// externals_count
	binary.Write(&body, binary.LittleEndian, int32(0))
	// user_information
	body.WriteByte(0)

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(body.Len())) // metadata_size (unused by reader logic here)
	binary.Write(&out, binary.BigEndian, uint32(0))          // file_size (unused, rev >= 10)
	binary.Write(&out, binary.BigEndian, uint32(17))         // version
	binary.Write(&out, binary.BigEndian, uint32(out.Len()))  // data_offset placeholder (not exercised)
	out.WriteByte(0)                                          // endianness: little
	out.Write(make([]byte, 3))                                // reserved
	out.Write(body.Bytes())

	return out.Bytes()
}

func TestOpenRevision17Stream(t *testing.T) {
	require := require.New(t)

	data := buildStream(t)

	f, err := Open(data)
	require.NoError(err)
	require.Equal(uint32(17), f.Version)
	require.True(f.LittleEndian)
	require.Equal("2019.4.1f1", f.UnityVersion)
	require.True(f.EnableTypeTree)
	require.Len(f.Types, 1)
	require.Len(f.Objects, 1)

	tree, ok := f.TypeTreeFor(f.Objects[0].TypeID)
	require.True(ok)
	require.Len(tree.Nodes, 2)
	require.Equal("m_Value", tree.Nodes[1].Name)
	require.Equal(int64(1), f.Objects[0].PathID)
	require.Equal(format.ClassGameObject, format.ClassID(f.Objects[0].ClassID))
}
