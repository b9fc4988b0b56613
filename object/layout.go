// Package object implements components G and H of the design: a
// single-pass layout builder that turns a type tree and a raw object
// payload into a tree of byte offsets (without materializing field
// values), and a lazy field-cast layer that reinterprets those offsets on
// demand.
package object

import (
	"fmt"

	"github.com/unitydump/unityfs/endian"
	"github.com/unitydump/unityfs/errs"
	"github.com/unitydump/unityfs/typetree"
)

// Kind identifies which of the three layout shapes a Layout node has.
type Kind int

const (
	KindLeaf Kind = iota
	KindRecord
	KindArray
)

// Layout is one node of the per-object layout tree: it mirrors the shape of the type tree that produced it but owns
// only byte offsets into the object's payload buffer, never values.
type Layout struct {
	NodeIndex int
	Kind      Kind

	// Offset is the absolute payload offset for a KindLeaf node, or the
	// offset relative to the start of one bulk-array item for a leaf
	// inside an ItemTemplate (ArrayItem == true in that case).
	Offset    int64
	ArrayItem bool

	Fields map[string]*Layout // KindRecord

	Array *ArrayLayout // KindArray
}

// ArrayLayout describes one array field's materialized size and its
// "Array descriptor" form, either bulk or per-item.
type ArrayLayout struct {
	Size int32

	// ItemStart/ItemEnd is the node index range [start, end) of the
	// item subtree within the owning Tree.
	ItemStart, ItemEnd int

	Bulk bool

	// Bulk form fields.
	BulkOffset   int64
	ItemByteSize int64
	ItemTemplate *Layout // offsets relative to one item's own start

	// Item form field.
	Items []*Layout
}

// Build walks tree in a single pass over r (positioned at the object's
// payload start), producing the object's layout and the total number of
// payload bytes consumed. Per P2, the caller should verify the returned
// byte count equals the object's declared byte_size.
func Build(tree typetree.Tree, r *endian.Reader) (*Layout, int64, error) {
	if len(tree.Nodes) == 0 {
		return nil, 0, fmt.Errorf("%w: empty type tree", errs.ErrParse)
	}

	b := &builder{tree: tree, r: r}
	idx := 0
	var offset int64
	layout, err := b.read(&idx, &offset, false)
	if err != nil {
		return nil, 0, err
	}

	return layout, offset, nil
}

type builder struct {
	tree typetree.Tree
	r    *endian.Reader
}

// read mirrors the reference implementation's recursive read() in
// type_tree/reader.rs: idx walks the flat node list (advanced by every
// recursive call so siblings resume where children left off), offset
// tracks bytes consumed relative to the object's own payload start, and
// arrayItem marks a node being read as part of a bulk array's
// zero-offset item template (so its leaf offsets are item-relative, not
// absolute).
func (b *builder) read(idx *int, offset *int64, arrayItem bool) (*Layout, error) {
	if *idx >= len(b.tree.Nodes) {
		return nil, fmt.Errorf("%w: type tree node index %d out of range", errs.ErrParse, *idx)
	}
	node := b.tree.Nodes[*idx]

	var layout *Layout
	var err error

	switch {
	case node.IsArray():
		if arrayItem {
			return nil, fmt.Errorf("%w: nested array inside a bulk array item", errs.ErrArrayItemOffset)
		}
		layout, err = b.readArray(idx, offset)
	case b.hasDirectChildAt(*idx):
		layout, err = b.readRecord(idx, offset, arrayItem)
	default:
		layout = b.readLeaf(*idx, offset, arrayItem)
	}
	if err != nil {
		return nil, err
	}

	if node.IsAligned() {
		b.alignBoth(offset)
	}

	return layout, nil
}

func (b *builder) hasDirectChildAt(i int) bool {
	return i+1 < len(b.tree.Nodes) && b.tree.Nodes[i+1].Level == b.tree.Nodes[i].Level+1
}

func (b *builder) readLeaf(i int, offset *int64, arrayItem bool) *Layout {
	node := b.tree.Nodes[i]
	thisOffset := *offset
	*offset += int64(node.ByteSize)
	b.r.Skip(int(node.ByteSize))

	return &Layout{NodeIndex: i, Kind: KindLeaf, Offset: thisOffset, ArrayItem: arrayItem}
}

func (b *builder) readRecord(idx *int, offset *int64, arrayItem bool) (*Layout, error) {
	recordIdx := *idx
	level := b.tree.Nodes[recordIdx].Level

	fields := make(map[string]*Layout)
	for *idx+1 < len(b.tree.Nodes) && b.tree.Nodes[*idx+1].Level == level+1 {
		*idx++
		childName := b.tree.Nodes[*idx].Name
		child, err := b.read(idx, offset, arrayItem)
		if err != nil {
			return nil, err
		}
		fields[childName] = child
	}

	return &Layout{NodeIndex: recordIdx, Kind: KindRecord, Fields: fields}, nil
}

func (b *builder) readArray(idx *int, offset *int64) (*Layout, error) {
	arrayIdx := *idx

	*idx++ // advance onto the "size" leaf
	sizeStartPos := b.r.Pos()
	if _, err := b.read(idx, offset, false); err != nil {
		return nil, err
	}
	b.r.Seek(sizeStartPos)
	size, ok := b.r.I32()
	if !ok {
		return nil, fmt.Errorf("%w: array size field truncated", errs.ErrParse)
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: negative array size", errs.ErrParse)
	}

	*idx++ // advance onto the "item" subtree root
	itemStart := *idx
	itemLevel := b.tree.Nodes[itemStart].Level
	for *idx+1 < len(b.tree.Nodes) && b.tree.Nodes[*idx+1].Level >= itemLevel {
		*idx++
	}
	itemEnd := *idx + 1

	pos := b.r.Pos()
	isPosAligned := pos%4 == 0
	itemByteSize, fixedSize := calcFixedItemSize(b.tree, itemStart)

	singleNonAligning := itemEnd-itemStart == 1 && !b.tree.Nodes[itemStart].IsAligned()
	bulk := fixedSize && ((isPosAligned && itemByteSize%4 == 0) || singleNonAligning)

	al := &ArrayLayout{Size: size, ItemStart: itemStart, ItemEnd: itemEnd}

	if bulk {
		thisOffset := *offset
		itemStartPos := b.r.Pos()

		tmplIdx := itemStart
		var tmplOffset int64
		template, err := b.read(&tmplIdx, &tmplOffset, true)
		if err != nil {
			return nil, err
		}

		*offset += itemByteSize * int64(size)
		b.r.Seek(itemStartPos + int(itemByteSize*int64(size)))

		al.Bulk = true
		al.BulkOffset = thisOffset
		al.ItemByteSize = itemByteSize
		al.ItemTemplate = template
	} else {
		items := make([]*Layout, 0, size)
		for i := int32(0); i < size; i++ {
			itemIdx := itemStart
			item, err := b.read(&itemIdx, offset, false)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		al.Items = items
	}

	return &Layout{NodeIndex: arrayIdx, Kind: KindArray, Array: al}, nil
}

// alignBoth rounds both the reader's cursor and the logical payload
// offset up to the next 4-byte boundary by the same amount, keeping the
// two in lockstep exactly as the reference implementation's read_offset
// bookkeeping does.
func (b *builder) alignBoth(offset *int64) {
	pos := b.r.Pos()
	if rem := pos % 4; rem != 0 {
		pad := 4 - rem
		b.r.Skip(pad)
		*offset += int64(pad)
	}
}

// calcFixedItemSize statically computes the total byte size of the
// subtree rooted at itemStart, or reports false if any node in it is an
// array (whose size is only known at read time). Mirrors
// calc_no_array_field_size in type_tree/reader.rs: a shared running total
// is threaded through the recursion so each node's own alignment flag
// rounds the cumulative total, not just its own contribution.
func calcFixedItemSize(tree typetree.Tree, itemStart int) (int64, bool) {
	var total int64
	ok := accumulateFixedSize(tree, itemStart, &total)

	return total, ok
}

func accumulateFixedSize(tree typetree.Tree, i int, total *int64) bool {
	node := tree.Nodes[i]
	if node.IsArray() {
		return false
	}

	if tree.IsRecord(i) {
		for _, child := range tree.DirectChildren(i) {
			if !accumulateFixedSize(tree, child, total) {
				return false
			}
		}
	} else {
		*total += int64(node.ByteSize)
	}

	if node.IsAligned() {
		if rem := *total % 4; rem != 0 {
			*total += 4 - rem
		}
	}

	return true
}
