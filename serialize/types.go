package serialize

import "github.com/unitydump/unityfs/typetree"

// SerializedType is one entry of a stream's type registry: a
// class id, optional script id, an old type hash, and — when the stream
// embeds type trees — the type tree itself.
type SerializedType struct {
	ClassID         int32
	IsStrippedType  bool
	ScriptTypeIndex int16
	ScriptID        [16]byte
	HasScriptID     bool
	OldTypeHash     [16]byte
	Tree            typetree.Tree
	HasTree         bool
	TypeDependencies []uint32
}

// ObjectInfo is one entry of a stream's object table.
type ObjectInfo struct {
	PathID      int64
	ByteStart   int64
	ByteSize    uint32
	TypeID      int32 // index into Types (and Types[TypeID].ClassID for revision >= 17)
	ClassID     int32 // resolved class id, regardless of revision's storage shape
	IsDestroyed bool
}

// ScriptType is one entry of the script-type table.
type ScriptType struct {
	LocalSerializedFileIndex int32
	LocalIdentifierInFile    int64
}

// External is one entry of the external reference table: a
// referenced stream identified by GUID and path.
type External struct {
	GUID [16]byte
	Type int32
	Path string
}
