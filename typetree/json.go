package typetree

import (
	"encoding/json"
	"io"
	"sort"
)

// jsonNode mirrors one node of the external type-tree JSON schema"): a recursive outline with a
// SubNodes list, rather than the flattened/level form Tree uses internally.
type jsonNode struct {
	TypeName string     `json:"TypeName"`
	Name     string     `json:"Name"`
	Level    uint8      `json:"Level"`
	ByteSize int32      `json:"ByteSize"`
	Index    int32      `json:"Index"`
	Version  uint16     `json:"Version"`
	TypeFlags uint8     `json:"TypeFlags"`
	MetaFlag int32      `json:"MetaFlag"`
	SubNodes []jsonNode `json:"SubNodes"`
}

// jsonClass is one entry of an InfoJson document's Classes array — the
// subset of fields the schema provider needs to recover a class's type
// tree; the remaining InfoJson/Class fields (FullName, Base, Derived,
// DescendantCount, IsAbstract, ...) are not consumed by anything in this
// module; the json package ignores keys with no matching struct field, so
// they are simply omitted here.
type jsonClass struct {
	Name            string    `json:"Name"`
	TypeID          int32     `json:"TypeID"`
	ReleaseRootNode *jsonNode `json:"ReleaseRootNode"`
}

// jsonInfo is the root of one InfoJson/<version>.json document.
type jsonInfo struct {
	Version string      `json:"Version"`
	Classes []jsonClass `json:"Classes"`
}

// FromJSON flattens an external InfoJson class's recursive ReleaseRootNode
// outline into a Tree, pre-order, re-sorted by Index to match the on-disk
// blob/recursive node order (the Rust reference implementation performs
// the same sort in get_type_object_args_by_version_class_id).
func FromJSON(root *jsonNode) Tree {
	if root == nil {
		return Tree{}
	}

	var nodes []Node
	var walk func(n *jsonNode)
	walk = func(n *jsonNode) {
		nodes = append(nodes, Node{
			Version:   n.Version,
			Level:     n.Level,
			TypeFlags: uint32(n.TypeFlags),
			Name:      n.Name,
			TypeName:  n.TypeName,
			ByteSize:  n.ByteSize,
			Index:     n.Index,
			MetaFlag:  uint32(n.MetaFlag),
		})
		for i := range n.SubNodes {
			walk(&n.SubNodes[i])
		}
	}
	walk(root)

	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Index < nodes[j].Index })

	return Tree{Nodes: nodes}
}

// ClassTree looks up a class by TypeID within a decoded InfoJson document
// and returns its flattened release type tree, if present.
func (info jsonInfo) ClassTree(classID int32) (Tree, bool) {
	for _, c := range info.Classes {
		if c.TypeID == classID && c.ReleaseRootNode != nil {
			return FromJSON(c.ReleaseRootNode), true
		}
	}

	return Tree{}, false
}

// SchemaDoc is one parsed InfoJson/<version>.json document — the decoded
// form an external type-tree archive reader caches per engine version
//.
type SchemaDoc struct {
	info jsonInfo
}

// Version returns the document's declared engine version string.
func (d SchemaDoc) Version() string { return d.info.Version }

// ClassTree looks up a class by TypeID within the document.
func (d SchemaDoc) ClassTree(classID int32) (Tree, bool) {
	return d.info.ClassTree(classID)
}

// DecodeSchemaDoc parses one InfoJson/<version>.json document from r.
func DecodeSchemaDoc(r io.Reader) (SchemaDoc, error) {
	var info jsonInfo
	if err := json.NewDecoder(r).Decode(&info); err != nil {
		return SchemaDoc{}, err
	}

	return SchemaDoc{info: info}, nil
}
