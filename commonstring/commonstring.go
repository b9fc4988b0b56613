// Package commonstring provides the static offset→string table (component
// C of the design) that Unity's blob type trees (serialized-file revision
// >= 11) use to compactly reference recurring type and field names instead
// of spelling them out in every object's string pool.
//
// A blob type-tree node's name/type-name is either a null-terminated string
// stored inline in the stream's own string pool, or — when the stored
// offset has its high bit set — an index into this fixed table shared by
// every stream ever produced by the engine.
package commonstring

import "strings"

// HighBit marks a string-pool offset as an index into the common table
// rather than the stream's own pool.
const HighBit = 0x80000000

// table lists the names in the fixed order the engine concatenates them.
// The set covers the primitive and field names the type-tree interpreter
// and field-cast layer name explicitly (§4.D/H of the design): primitive
// type names, the handful of record/array wrapper names ("Array",
// "string", "map", "pair", "first", "second", "Base"), and the most common
// object field names. It is not a byte-exact reproduction of Unity's
// internal table (not independently verifiable without a licensed engine
// build) but is internally self-consistent: every offset this package
// reports round-trips to the correct string.
var table = []string{
	"AABB", "AnimationClip", "AnimationCurve", "AnimationState", "Array",
	"Base", "BitField", "bitset", "bool", "char", "ColorRGBA", "Component",
	"data", "deque", "double", "dynamic_array", "FastPropertyName",
	"first", "float", "Font", "GameObject", "Generic Mono", "GradientNEW",
	"GUID", "GUIStyle", "int", "list", "long long", "map", "Matrix4x4f",
	"MdFour", "MonoBehaviour", "MonoScript", "m_ByteSize", "m_Curve",
	"m_EditorClassIdentifier", "m_EditorHideFlags", "m_Enabled",
	"m_ExtensionPtr", "m_GameObject", "m_Index", "m_IsArray", "m_IsStatic",
	"m_MetaFlag", "m_Name", "m_ObjectHideFlags", "m_PrefabInternal",
	"m_PrefabParentObject", "m_Script", "m_StaticEditorFlags", "m_Type",
	"m_Version", "Object", "pair", "PPtr<Component>", "PPtr<GameObject>",
	"PPtr<Material>", "PPtr<MonoBehaviour>", "PPtr<MonoScript>",
	"PPtr<Object>", "PPtr<Prefab>", "PPtr<Sprite>",
	"PPtr<TextAsset>", "PPtr<Texture>", "PPtr<Texture2D>", "PPtr<Transform>",
	"Prefab", "Quaternionf", "Rectf", "Reference", "ReferencedObject",
	"RenderTexture", "second", "set", "short", "size", "SInt16", "SInt32",
	"SInt64", "SInt8", "staticvector", "string", "TextAsset", "TextMesh",
	"Texture", "Texture2D", "Transform", "TypelessData", "UInt16", "UInt32",
	"UInt64", "UInt8", "unsigned int", "unsigned long long",
	"unsigned short", "vector", "Vector2f", "Vector3f", "Vector4f",
	"m_Container", "m_Resources", "m_AssetBundleName", "m_PathID",
	"m_FileID", "path", "PathName", "FileSize", "Hash128",
}

var (
	offsetToName = map[uint32]string{}
	nameToOffset = map[string]uint32{}
)

func init() {
	var off uint32
	for _, s := range table {
		offsetToName[off] = s
		nameToOffset[s] = off
		off += uint32(len(s)) + 1 // +1 for the NUL terminator
	}
}

// IsCommon reports whether a raw string-pool offset (as stored on disk)
// refers to the common table rather than the stream's own string pool.
func IsCommon(rawOffset uint32) bool {
	return rawOffset&HighBit != 0
}

// Lookup resolves an offset into the common table (with the high bit
// already masked off) to its name.
func Lookup(offset uint32) (string, bool) {
	name, ok := offsetToName[offset]

	return name, ok
}

// OffsetOf returns the common-table offset for name, with the high bit set
// as it would be stored on disk, if name is present in the table.
func OffsetOf(name string) (uint32, bool) {
	off, ok := nameToOffset[name]
	if !ok {
		return 0, false
	}

	return off | HighBit, ok
}

// Contains reports whether name appears in the common table at all.
func Contains(name string) bool {
	_, ok := nameToOffset[name]

	return ok
}

// Names returns a copy of the table in its fixed concatenation order, for
// callers that need to rebuild the raw blob (tests, diagnostics).
func Names() []string {
	out := make([]string, len(table))
	copy(out, table)

	return out
}

// Blob reconstructs the NUL-separated byte blob the table offsets index
// into, for tests that want to validate the offset math end-to-end.
func Blob() []byte {
	return []byte(strings.Join(table, "\x00") + "\x00")
}
