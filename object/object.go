package object

import (
	"strconv"
	"strings"

	"github.com/unitydump/unityfs/endian"
	"github.com/unitydump/unityfs/errs"
	"github.com/unitydump/unityfs/typetree"
)

// Object is a typed, lazily-cast view over one serialized object's payload:
// a type tree, the layout already built over it, the raw payload bytes the
// layout's offsets index into, and the byte order those offsets must be
// read with.
type Object struct {
	ClassID int32
	Tree     typetree.Tree
	Layout   *Layout
	Payload  []byte
	Engine   endian.EndianEngine
}

// New builds an Object by running the layout builder over tree and
// payload (read from its first byte with engine's byte order), then
// returning both the Object and the number of bytes the layout consumed —
// callers check the latter against the object's declared byte size (P2).
func New(classID int32, tree typetree.Tree, payload []byte, engine endian.EndianEngine) (*Object, int64, error) {
	r := endian.NewReader(payload, engine)
	layout, consumed, err := Build(tree, r)
	if err != nil {
		return nil, 0, err
	}

	return &Object{ClassID: classID, Tree: tree, Layout: layout, Payload: payload, Engine: engine}, consumed, nil
}

func (o *Object) reader() *endian.Reader {
	return endian.NewReader(o.Payload, o.Engine)
}

func (o *Object) node(l *Layout) typetree.Node {
	return o.Tree.Nodes[l.NodeIndex]
}

// splitPath tokenizes a "/Base/m_Field/Array/0/..." path, dropping empty
// segments produced by a leading or doubled slash.
func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}

	return out
}

// resolve walks path against o.Layout. The path's first segment names the
// object's own root node (conventionally "Base") and is dropped, matching
// the root handle already being that node; remaining segments descend
// through record fields, or through "Array" plus an optional integer index
// for array fields.
func (o *Object) resolve(path string) (*Layout, error) {
	segs := splitPath(path)
	if len(segs) > 0 {
		segs = segs[1:]
	}

	cur := o.Layout
	for i := 0; i < len(segs); i++ {
		seg := segs[i]

		switch cur.Kind {
		case KindRecord:
			next, ok := cur.Fields[seg]
			if !ok {
				return nil, &errs.FieldNotFound{Path: path}
			}
			cur = next
		case KindArray:
			// The "Array" segment is normally consumed above as the
			// enclosing record's field name, leaving the index as seg.
			if seg == "Array" {
				if i+1 >= len(segs) {
					continue
				}
				i++
				seg = segs[i]
			}
			idx, convErr := strconv.Atoi(seg)
			if convErr != nil {
				return nil, &errs.FieldNotFound{Path: path}
			}
			item, err := o.itemAt(cur.Array, idx)
			if err != nil {
				return nil, err
			}
			cur = item
		default:
			return nil, &errs.FieldNotFound{Path: path}
		}
	}

	return cur, nil
}

// itemAt returns the layout of array element idx, materializing it from
// the shared template in bulk form or indexing the precomputed slice in
// item form.
func (o *Object) itemAt(al *ArrayLayout, idx int) (*Layout, error) {
	if idx < 0 || idx >= int(al.Size) {
		return nil, &errs.FieldNotFound{Path: strconv.Itoa(idx)}
	}
	if al.Bulk {
		return translateTemplate(al.ItemTemplate, al.BulkOffset+int64(idx)*al.ItemByteSize), nil
	}

	return al.Items[idx], nil
}

// translateTemplate rebinds a bulk array's zero-offset item template to an
// absolute base offset, producing a usable layout for one materialized
// element. Nested arrays cannot occur inside a bulk item (the layout
// builder rejects them), so only leaf and record shapes need handling.
func translateTemplate(tmpl *Layout, base int64) *Layout {
	switch tmpl.Kind {
	case KindLeaf:
		return &Layout{NodeIndex: tmpl.NodeIndex, Kind: KindLeaf, Offset: base + tmpl.Offset}
	case KindRecord:
		fields := make(map[string]*Layout, len(tmpl.Fields))
		for name, child := range tmpl.Fields {
			fields[name] = translateTemplate(child, base)
		}

		return &Layout{NodeIndex: tmpl.NodeIndex, Kind: KindRecord, Fields: fields}
	default:
		return tmpl
	}
}

// sub returns a nested Object sharing this object's payload and byte
// order, rooted at a record-kind layout — the zero-copy "record" cast
// other accessors build on.
func (o *Object) sub(l *Layout) *Object {
	return &Object{ClassID: 0, Tree: o.Tree, Layout: l, Payload: o.Payload, Engine: o.Engine}
}
