package serialize

import (
	"fmt"
	"sort"

	"github.com/unitydump/unityfs/endian"
	"github.com/unitydump/unityfs/errs"
	"github.com/unitydump/unityfs/format"
	"github.com/unitydump/unityfs/typetree"
)

// File is the parsed, uniform view of one serialized-object stream,
// regardless of which on-disk format revision produced it.
type File struct {
	Version        uint32
	DataOffset     int64
	FileSize       int64
	LittleEndian   bool
	UnityVersion   string
	TargetPlatform format.BuildTarget
	EnableTypeTree bool

	Types      []SerializedType
	Objects    []ObjectInfo
	Scripts    []ScriptType
	Externals  []External
	RefTypes   []SerializedType

	objectsByPathID []ObjectInfo
}

// ObjectsByPathID returns every object in this stream ordered by path id
// ascending, regardless of the order they were laid out on disk.
func (f *File) ObjectsByPathID() []ObjectInfo {
	return f.objectsByPathID
}

// Engine returns the byte order this stream's object payloads are encoded
// with.
func (f *File) Engine() endian.EndianEngine {
	if f.LittleEndian {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

// Reader returns an endian.Reader over buf configured with this file's
// body endianness, for use by the typed-object layout builder reading an
// object's raw payload at DataOffset+byte_start.
func (f *File) Reader(buf []byte) *endian.Reader {
	return endian.NewReader(buf, f.Engine())
}

// ObjectPayload slices out one object's raw bytes from buf, the same
// fully materialized stream buffer Open was called with.
func (f *File) ObjectPayload(buf []byte, info ObjectInfo) ([]byte, error) {
	start := f.DataOffset + info.ByteStart
	end := start + int64(info.ByteSize)
	if start < 0 || end > int64(len(buf)) {
		return nil, fmt.Errorf("%w: object at path id %d extends past stream buffer", errs.ErrIO, info.PathID)
	}

	return buf[start:end], nil
}

// TypeTreeFor returns the embedded type tree for an object's TypeID, if
// the stream embeds one.
func (f *File) TypeTreeFor(typeID int32) (typetree.Tree, bool) {
	if int(typeID) < 0 || int(typeID) >= len(f.Types) {
		return typetree.Tree{}, false
	}
	t := f.Types[typeID]
	if !t.HasTree {
		return typetree.Tree{}, false
	}

	return t.Tree, true
}

// Open parses a complete serialized-file byte buffer (the fully
// materialized contents of one CAB stream, as returned by
// archive.Archive.ReadFile).
func Open(buf []byte) (*File, error) {
	r := endian.NewReader(buf, endian.BigEndianEngine)

	hdr, err := ParseCommonHeader(r)
	if err != nil {
		return nil, err
	}

	f := &File{
		Version:    hdr.Version,
		DataOffset: int64(hdr.DataOffset),
		FileSize:   int64(hdr.FileSize),
	}

	feat := featuresFor(hdr.Version)

	if feat.endiannessFixedField {
		endianByte, ok := r.U8()
		if !ok {
			return nil, fmt.Errorf("%w: endianness byte truncated", errs.ErrParse)
		}
		r.Skip(3) // reserved
		f.LittleEndian = endianByte == 0

		if feat.extendedHeader {
			ext, err := ParseExtendedHeader(r)
			if err != nil {
				return nil, err
			}
			f.FileSize = int64(ext.FileSize)
			f.DataOffset = int64(ext.DataOffset)
		}
	} else {
		// Revisions < 10: endianness lives at the computed absolute
		// offset file_size - metadata_size, read without disturbing the
		// forward cursor.
		pos := int64(hdr.FileSize) - int64(hdr.MetadataSize)
		if pos < 0 || pos >= int64(len(buf)) {
			return nil, fmt.Errorf("%w: computed endianness offset %d out of range", errs.ErrParse, pos)
		}
		f.LittleEndian = buf[pos] == 0
	}

	if f.LittleEndian {
		r.SetEndian(endian.GetLittleEndianEngine())
	}

	if err := parseBody(r, f, feat); err != nil {
		return nil, err
	}

	f.objectsByPathID = make([]ObjectInfo, len(f.Objects))
	copy(f.objectsByPathID, f.Objects)
	sort.Slice(f.objectsByPathID, func(i, j int) bool {
		return f.objectsByPathID[i].PathID < f.objectsByPathID[j].PathID
	})

	return f, nil
}

func parseBody(r *endian.Reader, f *File, feat features) error {
	unityVersion, ok := r.CString()
	if !ok {
		return fmt.Errorf("%w: unity version string truncated", errs.ErrParse)
	}
	f.UnityVersion = unityVersion

	targetPlatform, ok := r.I32()
	if !ok {
		return fmt.Errorf("%w: target platform truncated", errs.ErrParse)
	}
	f.TargetPlatform = format.BuildTarget(targetPlatform)

	f.EnableTypeTree = true
	if feat.hasEnableTypeTreeFlag {
		enableTypeTree, ok := r.Bool()
		if !ok {
			return fmt.Errorf("%w: enable type tree flag truncated", errs.ErrParse)
		}
		f.EnableTypeTree = enableTypeTree
	}

	typeCount, ok := r.U32()
	if !ok {
		return fmt.Errorf("%w: type count truncated", errs.ErrParse)
	}
	types, err := parseTypes(r, feat, f.EnableTypeTree, typeCount)
	if err != nil {
		return err
	}
	f.Types = types

	objectCount, ok := r.I32()
	if !ok {
		return fmt.Errorf("%w: object count truncated", errs.ErrParse)
	}
	objects, err := parseObjects(r, feat, f.Types, objectCount)
	if err != nil {
		return err
	}
	f.Objects = objects

	scriptCount, ok := r.I32()
	if !ok {
		return fmt.Errorf("%w: script count truncated", errs.ErrParse)
	}
	scripts := make([]ScriptType, 0, scriptCount)
	for i := int32(0); i < scriptCount; i++ {
		r.AlignTo4()
		localFileIndex, ok1 := r.I32()
		localID, ok2 := r.I64()
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: script type %d truncated", errs.ErrParse, i)
		}
		scripts = append(scripts, ScriptType{LocalSerializedFileIndex: localFileIndex, LocalIdentifierInFile: localID})
	}
	f.Scripts = scripts

	externalsCount, ok := r.I32()
	if !ok {
		return fmt.Errorf("%w: externals count truncated", errs.ErrParse)
	}
	externals, err := parseExternals(r, externalsCount)
	if err != nil {
		return err
	}
	f.Externals = externals

	if feat.hasRefTypes {
		refTypeCount, ok := r.I32()
		if !ok {
			return fmt.Errorf("%w: ref type count truncated", errs.ErrParse)
		}
		refTypes, err := parseTypes(r, feat, f.EnableTypeTree, uint32(refTypeCount))
		if err != nil {
			return err
		}
		f.RefTypes = refTypes
	}

	// user_information (a trailing NUL-terminated string) is read but not
	// retained: nothing in this package consumes it.
	if _, ok := r.CString(); !ok {
		return fmt.Errorf("%w: user information string truncated", errs.ErrParse)
	}

	return nil
}

func parseTypes(r *endian.Reader, feat features, enableTypeTree bool, count uint32) ([]SerializedType, error) {
	types := make([]SerializedType, 0, count)
	for i := uint32(0); i < count; i++ {
		var st SerializedType

		classID, ok := r.I32()
		if !ok {
			return nil, fmt.Errorf("%w: type %d class id truncated", errs.ErrParse, i)
		}
		st.ClassID = classID

		if feat.hasStrippedType {
			stripped, ok := r.Bool()
			if !ok {
				return nil, fmt.Errorf("%w: type %d is_stripped_type truncated", errs.ErrParse, i)
			}
			st.IsStrippedType = stripped
		}

		if feat.scriptTypeIndexInType {
			idx, ok := r.I16()
			if !ok {
				return nil, fmt.Errorf("%w: type %d script type index truncated", errs.ErrParse, i)
			}
			st.ScriptTypeIndex = idx
		}

		if feat.hasScriptIDTrigger && classID == int32(format.ClassMonoBehaviour) {
			id, ok := r.Bytes(16)
			if !ok {
				return nil, fmt.Errorf("%w: type %d script id truncated", errs.ErrParse, i)
			}
			copy(st.ScriptID[:], id)
			st.HasScriptID = true
		}

		if feat.hasOldTypeHash {
			hash, ok := r.Bytes(16)
			if !ok {
				return nil, fmt.Errorf("%w: type %d old type hash truncated", errs.ErrParse, i)
			}
			copy(st.OldTypeHash[:], hash)
		}

		if enableTypeTree {
			var tree typetree.Tree
			var err error
			if feat.blobTypeTree {
				tree, err = typetree.DecodeBlob(r, feat.refTypeHash)
			} else {
				tree, err = typetree.DecodeRecursive(r)
			}
			if err != nil {
				return nil, fmt.Errorf("type %d: %w", i, err)
			}
			st.Tree = tree
			st.HasTree = true
		}

		if feat.hasTypeDependencies {
			depCount, ok := r.I32()
			if !ok {
				return nil, fmt.Errorf("%w: type %d dependency count truncated", errs.ErrParse, i)
			}
			deps := make([]uint32, 0, depCount)
			for j := int32(0); j < depCount; j++ {
				d, ok := r.U32()
				if !ok {
					return nil, fmt.Errorf("%w: type %d dependency %d truncated", errs.ErrParse, i, j)
				}
				deps = append(deps, d)
			}
			st.TypeDependencies = deps
		}

		types = append(types, st)
	}

	return types, nil
}

func parseObjects(r *endian.Reader, feat features, types []SerializedType, count int32) ([]ObjectInfo, error) {
	objects := make([]ObjectInfo, 0, count)
	for i := int32(0); i < count; i++ {
		var o ObjectInfo

		if feat.pathIDMode != pathIDFixed32 {
			r.AlignTo4()
		}

		switch feat.pathIDMode {
		case pathIDFixed32:
			v, ok := r.I32()
			if !ok {
				return nil, fmt.Errorf("%w: object %d path id truncated", errs.ErrParse, i)
			}
			o.PathID = int64(v)
		default:
			v, ok := r.I64()
			if !ok {
				return nil, fmt.Errorf("%w: object %d path id truncated", errs.ErrParse, i)
			}
			o.PathID = v
		}

		if feat.extendedHeader {
			v, ok := r.I64()
			if !ok {
				return nil, fmt.Errorf("%w: object %d byte start truncated", errs.ErrParse, i)
			}
			o.ByteStart = v
		} else {
			v, ok := r.U32()
			if !ok {
				return nil, fmt.Errorf("%w: object %d byte start truncated", errs.ErrParse, i)
			}
			o.ByteStart = int64(v)
		}

		byteSize, ok := r.U32()
		if !ok {
			return nil, fmt.Errorf("%w: object %d byte size truncated", errs.ErrParse, i)
		}
		o.ByteSize = byteSize

		typeID, ok := r.I32()
		if !ok {
			return nil, fmt.Errorf("%w: object %d type id truncated", errs.ErrParse, i)
		}
		o.TypeID = typeID

		if feat.objectCarriesClassID {
			classID, ok1 := r.U16()
			isDestroyed, ok2 := r.U16()
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("%w: object %d class/is_destroyed fields truncated", errs.ErrParse, i)
			}
			o.ClassID = int32(classID)
			o.IsDestroyed = isDestroyed != 0
		} else if int(typeID) >= 0 && int(typeID) < len(types) {
			o.ClassID = types[typeID].ClassID
		}

		objects = append(objects, o)
	}

	return objects, nil
}

func parseExternals(r *endian.Reader, count int32) ([]External, error) {
	externals := make([]External, 0, count)
	for i := int32(0); i < count; i++ {
		if _, ok := r.CString(); !ok { // temp_empty, always blank
			return nil, fmt.Errorf("%w: external %d temp field truncated", errs.ErrParse, i)
		}
		guid, ok1 := r.Bytes(16)
		typ, ok2 := r.I32()
		path, ok3 := r.CString()
		if !ok1 || !ok2 || !ok3 {
			return nil, fmt.Errorf("%w: external %d truncated", errs.ErrParse, i)
		}

		var e External
		copy(e.GUID[:], guid)
		e.Type = typ
		e.Path = path
		externals = append(externals, e)
	}

	return externals, nil
}
