// Package typetree implements the schema model every serialized object's
// payload is decoded against. A Tree is an
// ordered, flattened list of Nodes — the same shape the blob type-tree
// format (revision >= 11) stores on disk, and the shape the older
// recursive format (revision < 11, nested nodes with a children count) is
// flattened into while parsing.
package typetree

import "fmt"

// MetaFlag bits.
const (
	// MetaFlagAlign marks a node as requiring the cursor to be rounded up
	// to the next 4-byte boundary after it is read (for an array or
	// record, once after the whole node including its children).
	MetaFlagAlign uint32 = 0x4000
)

// TypeFlag bits.
const (
	// TypeFlagArray marks a node as the head of an array: its next two
	// logical children are always a "size" leaf (int32) and an "item"
	// subtree.
	TypeFlagArray uint32 = 0x1
)

// Node is one entry in a flattened type tree.
type Node struct {
	Version      uint16
	Level        uint8
	TypeFlags    uint32
	Name         string
	TypeName     string
	ByteSize     int32
	Index        int32
	MetaFlag     uint32
	RefTypeHash  uint64
	HasRefHash   bool
}

// IsArray reports whether the node is an array head.
func (n Node) IsArray() bool { return n.TypeFlags&TypeFlagArray != 0 }

// IsAligned reports whether the cursor must be realigned to 4 bytes after
// this node (and its children, transitively for arrays/records) is read.
func (n Node) IsAligned() bool { return n.MetaFlag&MetaFlagAlign != 0 }

// Tree is an ordered, pre-order-flattened list of type-tree nodes
// describing one serialized type's binary layout.
type Tree struct {
	Nodes []Node
}

// String renders the tree as an indented outline, for debugging.
func (t Tree) String() string {
	s := ""
	for _, n := range t.Nodes {
		for i := uint8(0); i < n.Level; i++ {
			s += "  "
		}
		s += fmt.Sprintf("%s %s (size=%d, index=%d)\n", n.TypeName, n.Name, n.ByteSize, n.Index)
	}

	return s
}

// Children returns the index range [start, end) of i's immediate and
// transitive children: every following node whose level is strictly
// greater than Nodes[i].Level, stopping at the first node whose level is
// <= Nodes[i].Level or at the end of the tree.
func (t Tree) Children(i int) (start, end int) {
	level := t.Nodes[i].Level
	j := i + 1
	for j < len(t.Nodes) && t.Nodes[j].Level > level {
		j++
	}

	return i + 1, j
}

// DirectChildren returns the indices of i's immediate children (level ==
// Nodes[i].Level+1), skipping over any grandchildren.
func (t Tree) DirectChildren(i int) []int {
	start, end := t.Children(i)
	level := t.Nodes[i].Level

	var out []int
	for j := start; j < end; j++ {
		if t.Nodes[j].Level == level+1 {
			out = append(out, j)
		}
	}

	return out
}

// IsRecord reports whether node i has children at level+1 (and is not
// itself an array — arrays are handled specially by the layout builder).
func (t Tree) IsRecord(i int) bool {
	if t.Nodes[i].IsArray() {
		return false
	}
	start, _ := t.Children(i)

	return start < len(t.Nodes) && t.Nodes[start].Level == t.Nodes[i].Level+1
}
