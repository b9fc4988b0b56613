package object

import (
	"fmt"
	"strings"

	"github.com/unitydump/unityfs/endian"
	"github.com/unitydump/unityfs/errs"
)

// kindName returns a human-readable description of a layout's shape, for
// TypeMismatch error messages.
func kindName(o *Object, l *Layout) string {
	switch l.Kind {
	case KindRecord:
		return o.node(l).TypeName + " (record)"
	case KindArray:
		return o.node(l).TypeName + " (array)"
	default:
		return o.node(l).TypeName
	}
}

var (
	int8Names  = map[string]bool{"SInt8": true}
	int16Names = map[string]bool{"SInt16": true, "short": true}
	int32Names = map[string]bool{"SInt32": true, "int": true}
	int64Names = map[string]bool{"SInt64": true, "long long": true}

	uint8Names  = map[string]bool{"UInt8": true, "char": true}
	uint16Names = map[string]bool{"UInt16": true, "unsigned short": true}
	uint32Names = map[string]bool{"UInt32": true, "unsigned int": true}
	uint64Names = map[string]bool{"UInt64": true, "unsigned long long": true, "FileSize": true}
)

// Bool casts a leaf field to bool.
func (o *Object) Bool(path string) (bool, error) {
	l, err := o.resolve(path)
	if err != nil {
		return false, err
	}
	if l.Kind != KindLeaf || o.node(l).TypeName != "bool" {
		return false, &errs.TypeMismatch{Want: "bool", Found: kindName(o, l)}
	}

	r := o.reader()
	r.Seek(int(l.Offset))
	v, ok := r.Bool()
	if !ok {
		return false, fmt.Errorf("%w: bool field at path %q truncated", errs.ErrIO, path)
	}

	return v, nil
}

// Int casts a signed-integer leaf field, widening narrower widths to
// int64.
func (o *Object) Int(path string) (int64, error) {
	l, err := o.resolve(path)
	if err != nil {
		return 0, err
	}
	if l.Kind != KindLeaf {
		return 0, &errs.TypeMismatch{Want: "integer", Found: kindName(o, l)}
	}
	name := o.node(l).TypeName

	r := o.reader()
	r.Seek(int(l.Offset))

	switch {
	case int8Names[name]:
		v, ok := r.I8()
		if !ok {
			return 0, fmt.Errorf("%w: int field at path %q truncated", errs.ErrIO, path)
		}
		return int64(v), nil
	case int16Names[name]:
		v, ok := r.I16()
		if !ok {
			return 0, fmt.Errorf("%w: int field at path %q truncated", errs.ErrIO, path)
		}
		return int64(v), nil
	case int32Names[name]:
		v, ok := r.I32()
		if !ok {
			return 0, fmt.Errorf("%w: int field at path %q truncated", errs.ErrIO, path)
		}
		return int64(v), nil
	case int64Names[name]:
		v, ok := r.I64()
		if !ok {
			return 0, fmt.Errorf("%w: int field at path %q truncated", errs.ErrIO, path)
		}
		return v, nil
	default:
		return 0, &errs.TypeMismatch{Want: "integer", Found: name}
	}
}

// Uint casts an unsigned-integer leaf field, widening narrower widths to
// uint64.
func (o *Object) Uint(path string) (uint64, error) {
	l, err := o.resolve(path)
	if err != nil {
		return 0, err
	}
	if l.Kind != KindLeaf {
		return 0, &errs.TypeMismatch{Want: "unsigned integer", Found: kindName(o, l)}
	}
	name := o.node(l).TypeName

	r := o.reader()
	r.Seek(int(l.Offset))

	switch {
	case uint8Names[name]:
		v, ok := r.U8()
		if !ok {
			return 0, fmt.Errorf("%w: uint field at path %q truncated", errs.ErrIO, path)
		}
		return uint64(v), nil
	case uint16Names[name]:
		v, ok := r.U16()
		if !ok {
			return 0, fmt.Errorf("%w: uint field at path %q truncated", errs.ErrIO, path)
		}
		return uint64(v), nil
	case uint32Names[name]:
		v, ok := r.U32()
		if !ok {
			return 0, fmt.Errorf("%w: uint field at path %q truncated", errs.ErrIO, path)
		}
		return uint64(v), nil
	case uint64Names[name]:
		v, ok := r.U64()
		if !ok {
			return 0, fmt.Errorf("%w: uint field at path %q truncated", errs.ErrIO, path)
		}
		return v, nil
	default:
		return 0, &errs.TypeMismatch{Want: "unsigned integer", Found: name}
	}
}

// Float32 casts a leaf field of type "float".
func (o *Object) Float32(path string) (float32, error) {
	l, err := o.resolve(path)
	if err != nil {
		return 0, err
	}
	if l.Kind != KindLeaf || o.node(l).TypeName != "float" {
		return 0, &errs.TypeMismatch{Want: "float", Found: kindName(o, l)}
	}

	r := o.reader()
	r.Seek(int(l.Offset))
	v, ok := r.F32()
	if !ok {
		return 0, fmt.Errorf("%w: float field at path %q truncated", errs.ErrIO, path)
	}

	return v, nil
}

// Float64 casts a leaf field of type "double".
func (o *Object) Float64(path string) (float64, error) {
	l, err := o.resolve(path)
	if err != nil {
		return 0, err
	}
	if l.Kind != KindLeaf || o.node(l).TypeName != "double" {
		return 0, &errs.TypeMismatch{Want: "double", Found: kindName(o, l)}
	}

	r := o.reader()
	r.Seek(int(l.Offset))
	v, ok := r.F64()
	if !ok {
		return 0, fmt.Errorf("%w: double field at path %q truncated", errs.ErrIO, path)
	}

	return v, nil
}

// Bytes casts a leaf field to its raw bytes, or a byte-shaped array field
// (bulk or per-item) to a flat byte slice.
func (o *Object) Bytes(path string) ([]byte, error) {
	l, err := o.resolve(path)
	if err != nil {
		return nil, err
	}

	switch l.Kind {
	case KindLeaf:
		n := o.node(l)
		start := int(l.Offset)
		end := start + int(n.ByteSize)
		if end > len(o.Payload) {
			return nil, fmt.Errorf("%w: field at path %q extends past payload", errs.ErrIO, path)
		}
		return o.Payload[start:end], nil
	case KindArray:
		return o.arrayBytes(l.Array)
	default:
		return nil, &errs.TypeMismatch{Want: "bytes", Found: kindName(o, l)}
	}
}

// String casts a "string" record field: its sole "Array" child is a
// length-prefixed byte vector, decoded as UTF-8 with invalid sequences
// replaced.
func (o *Object) String(path string) (string, error) {
	l, err := o.resolve(path)
	if err != nil {
		return "", err
	}
	n := o.node(l)
	if l.Kind != KindRecord || n.TypeName != "string" {
		return "", &errs.TypeMismatch{Want: "string", Found: kindName(o, l)}
	}

	arr, ok := l.Fields["Array"]
	if !ok || arr.Kind != KindArray {
		return "", &errs.ArrayFieldNotFound{Path: path}
	}

	data, err := o.arrayBytes(arr.Array)
	if err != nil {
		return "", err
	}

	return strings.ToValidUTF8(string(data), "�"), nil
}

// Object casts a record field to a nested, zero-copy typed-object handle
// sharing this object's payload.
func (o *Object) Object(path string) (*Object, error) {
	l, err := o.resolve(path)
	if err != nil {
		return nil, err
	}
	if l.Kind != KindRecord {
		return nil, &errs.TypeMismatch{Want: "record", Found: kindName(o, l)}
	}

	return o.sub(l), nil
}

// Len returns an array field's decoded element count.
func (o *Object) Len(path string) (int, error) {
	al, err := o.resolveArray(path)
	if err != nil {
		return 0, err
	}

	return int(al.Size), nil
}

// Element returns a zero-copy handle onto array element i, for arrays of
// records (PPtr arrays, map pair entries) rather than primitives.
func (o *Object) Element(path string, i int) (*Object, error) {
	al, err := o.resolveArray(path)
	if err != nil {
		return nil, err
	}
	item, err := o.itemAt(al, i)
	if err != nil {
		return nil, err
	}

	return o.sub(item), nil
}

// Pair casts array element i of a `map` field (an array of records with
// "first"/"second" children) to its key and value handles.
func (o *Object) Pair(path string, i int) (key, value *Object, err error) {
	el, err := o.Element(path, i)
	if err != nil {
		return nil, nil, err
	}
	first, ok := el.Layout.Fields["first"]
	if !ok {
		return nil, nil, &errs.FieldNotFound{Path: path + "/first"}
	}
	second, ok := el.Layout.Fields["second"]
	if !ok {
		return nil, nil, &errs.FieldNotFound{Path: path + "/second"}
	}

	return el.sub(first), el.sub(second), nil
}

// resolveArray resolves path to an array layout, unwrapping the implicit
// "vector<T>" record shape (a record with a single "Array" child) that
// the type tree uses for managed vector fields.
func (o *Object) resolveArray(path string) (*ArrayLayout, error) {
	l, err := o.resolve(path)
	if err != nil {
		return nil, err
	}

	switch l.Kind {
	case KindArray:
		return l.Array, nil
	case KindRecord:
		if child, ok := l.Fields["Array"]; ok && child.Kind == KindArray {
			return child.Array, nil
		}
	}

	return nil, &errs.ArrayFieldNotFound{Path: path}
}

// arrayBytes reads a byte-item array (bulk or per-item) as a flat slice.
func (o *Object) arrayBytes(al *ArrayLayout) ([]byte, error) {
	if al.Bulk {
		start := al.BulkOffset
		end := start + int64(al.Size)*al.ItemByteSize
		if end > int64(len(o.Payload)) {
			return nil, fmt.Errorf("%w: array extends past payload", errs.ErrIO)
		}
		return o.Payload[start:end], nil
	}

	buf := make([]byte, 0, al.Size)
	for _, item := range al.Items {
		if item.Kind != KindLeaf {
			return nil, &errs.TypeMismatch{Want: "byte", Found: "record"}
		}
		if int(item.Offset) >= len(o.Payload) {
			return nil, fmt.Errorf("%w: array item extends past payload", errs.ErrIO)
		}
		buf = append(buf, o.Payload[item.Offset])
	}

	return buf, nil
}

// numericSlice reads every element of a primitive array field (bulk or
// per-item form) via decode, the fast path taking bulk's fixed stride and
// the slow path re-seeking to each item's own offset.
func numericSlice[T any](o *Object, path, wantType string, decode func(*endian.Reader) (T, bool)) ([]T, error) {
	al, err := o.resolveArray(path)
	if err != nil {
		return nil, err
	}

	itemType := o.Tree.Nodes[al.ItemStart].TypeName
	if !typeNameMatches(wantType, itemType) {
		return nil, &errs.TypeMismatch{Want: wantType, Found: itemType}
	}

	out := make([]T, al.Size)
	r := o.reader()

	if al.Bulk {
		for i := int32(0); i < al.Size; i++ {
			r.Seek(int(al.BulkOffset + int64(i)*al.ItemByteSize))
			v, ok := decode(r)
			if !ok {
				return nil, fmt.Errorf("%w: array element %d at path %q truncated", errs.ErrIO, i, path)
			}
			out[i] = v
		}
		return out, nil
	}

	for i, item := range al.Items {
		if item.Kind != KindLeaf {
			return nil, &errs.TypeMismatch{Want: wantType, Found: "record"}
		}
		r.Seek(int(item.Offset))
		v, ok := decode(r)
		if !ok {
			return nil, fmt.Errorf("%w: array element %d at path %q truncated", errs.ErrIO, i, path)
		}
		out[i] = v
	}

	return out, nil
}

func typeNameMatches(want, found string) bool {
	switch want {
	case "SInt8":
		return int8Names[found]
	case "SInt16":
		return int16Names[found]
	case "SInt32":
		return int32Names[found]
	case "SInt64":
		return int64Names[found]
	case "UInt8":
		return uint8Names[found]
	case "UInt16":
		return uint16Names[found]
	case "UInt32":
		return uint32Names[found]
	case "UInt64":
		return uint64Names[found]
	default:
		return want == found
	}
}
