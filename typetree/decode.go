package typetree

import (
	"fmt"

	"github.com/unitydump/unityfs/commonstring"
	"github.com/unitydump/unityfs/endian"
	"github.com/unitydump/unityfs/errs"
)

// DecodeBlob parses the blob type-tree encoding used by serialized-file
// revisions >= 11: a flat array of fixed-size node records
// followed by an offset-addressed string pool. hasRefTypeHash selects
// whether each node record carries a trailing u64 ref_type_hash field
// (revision >= 20 per the original format's SerializedType.ref_types
// support).
func DecodeBlob(r *endian.Reader, hasRefTypeHash bool) (Tree, error) {
	nodeCount, ok := r.I32()
	if !ok {
		return Tree{}, fmt.Errorf("%w: type tree node count truncated", errs.ErrParse)
	}
	stringBufferSize, ok := r.I32()
	if !ok {
		return Tree{}, fmt.Errorf("%w: type tree string buffer size truncated", errs.ErrParse)
	}
	if nodeCount < 0 || stringBufferSize < 0 {
		return Tree{}, fmt.Errorf("%w: negative type tree sizes", errs.ErrParse)
	}

	type rawBlob struct {
		version      uint16
		level        uint8
		typeFlags    uint8
		typeOffset   uint32
		nameOffset   uint32
		byteSize     int32
		index        int32
		metaFlag     int32
		refTypeHash  uint64
	}

	raws := make([]rawBlob, 0, nodeCount)
	for i := int32(0); i < nodeCount; i++ {
		var rb rawBlob
		var ok1, ok2, ok3, ok4, ok5, ok6, ok7, ok8 bool
		rb.version, ok1 = r.U16()
		rb.level, ok2 = r.U8()
		rb.typeFlags, ok3 = r.U8()
		rb.typeOffset, ok4 = r.U32()
		rb.nameOffset, ok5 = r.U32()
		rb.byteSize, ok6 = r.I32()
		rb.index, ok7 = r.I32()
		rb.metaFlag, ok8 = r.I32()
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 || !ok8 {
			return Tree{}, fmt.Errorf("%w: type tree node %d truncated", errs.ErrParse, i)
		}
		if hasRefTypeHash {
			hash, ok9 := r.U64()
			if !ok9 {
				return Tree{}, fmt.Errorf("%w: type tree node %d ref type hash truncated", errs.ErrParse, i)
			}
			rb.refTypeHash = hash
		}

		raws = append(raws, rb)
	}

	stringBuf, ok := r.Bytes(int(stringBufferSize))
	if !ok {
		return Tree{}, fmt.Errorf("%w: type tree string buffer truncated", errs.ErrParse)
	}

	nodes := make([]Node, 0, len(raws))
	for _, rb := range raws {
		typeName, err := resolveBlobString(rb.typeOffset, stringBuf)
		if err != nil {
			return Tree{}, err
		}
		name, err := resolveBlobString(rb.nameOffset, stringBuf)
		if err != nil {
			return Tree{}, err
		}

		nodes = append(nodes, Node{
			Version:     rb.version,
			Level:       rb.level,
			TypeFlags:   uint32(rb.typeFlags),
			Name:        name,
			TypeName:    typeName,
			ByteSize:    rb.byteSize,
			Index:       rb.index,
			MetaFlag:    uint32(rb.metaFlag),
			RefTypeHash: rb.refTypeHash,
			HasRefHash:  hasRefTypeHash,
		})
	}

	return Tree{Nodes: nodes}, nil
}

// resolveBlobString resolves one blob node's name/type-name reference: a
// high-bit-set offset indexes the shared commonstring table, otherwise it
// is a NUL-terminated string at that byte offset in the stream's own
// string buffer.
func resolveBlobString(rawOffset uint32, pool []byte) (string, error) {
	if commonstring.IsCommon(rawOffset) {
		name, ok := commonstring.Lookup(rawOffset &^ commonstring.HighBit)
		if !ok {
			return "", fmt.Errorf("%w: common string offset %#x not in table", errs.ErrParse, rawOffset)
		}

		return name, nil
	}

	if int(rawOffset) > len(pool) {
		return "", fmt.Errorf("%w: string pool offset %d out of range (pool size %d)", errs.ErrParse, rawOffset, len(pool))
	}
	end := int(rawOffset)
	for end < len(pool) && pool[end] != 0 {
		end++
	}

	return string(pool[rawOffset:end]), nil
}

// DecodeRecursive parses the pre-revision-11 recursive type-tree encoding
//: each node stores its type name and field name as inline
// NUL-terminated strings, followed by byte_size, index, type_flags,
// version, meta_flag and a children_count driving recursion. The result is
// flattened into the same pre-order Node list DecodeBlob produces, with
// Level assigned during the walk.
func DecodeRecursive(r *endian.Reader) (Tree, error) {
	var nodes []Node
	if err := decodeRecursiveNode(r, 0, &nodes); err != nil {
		return Tree{}, err
	}

	return Tree{Nodes: nodes}, nil
}

func decodeRecursiveNode(r *endian.Reader, level uint8, out *[]Node) error {
	typeName, ok := r.CString()
	if !ok {
		return fmt.Errorf("%w: recursive type tree type name truncated", errs.ErrParse)
	}
	name, ok := r.CString()
	if !ok {
		return fmt.Errorf("%w: recursive type tree field name truncated", errs.ErrParse)
	}
	byteSize, ok1 := r.I32()
	index, ok2 := r.I32()
	typeFlags, ok3 := r.I32()
	version, ok4 := r.I32()
	metaFlag, ok5 := r.I32()
	childCount, ok6 := r.I32()
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return fmt.Errorf("%w: recursive type tree node truncated", errs.ErrParse)
	}
	if childCount < 0 {
		return fmt.Errorf("%w: negative children count", errs.ErrParse)
	}

	*out = append(*out, Node{
		Version:   uint16(version),
		Level:     level,
		TypeFlags: uint32(typeFlags),
		Name:      name,
		TypeName:  typeName,
		ByteSize:  byteSize,
		Index:     index,
		MetaFlag:  uint32(metaFlag),
	})

	for i := int32(0); i < childCount; i++ {
		if err := decodeRecursiveNode(r, level+1, out); err != nil {
			return err
		}
	}

	return nil
}
