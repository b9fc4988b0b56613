// Package errs collects the sentinel errors surfaced by every layer of the
// decoding pipeline: archive I/O, stream parsing, type-tree casting and
// pointer resolution. Each is a plain errors.New value so callers can match
// with errors.Is; ObjectReadError wraps any of them with the object that was
// being read when the error occurred.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrIO wraps an underlying reader failure.
	ErrIO = errors.New("unityfs: io error")

	// ErrParse signals a malformed header, unknown magic, or bad bit pattern.
	ErrParse = errors.New("unityfs: parse error")

	// ErrUnsupportedRevision signals a serialized-file revision or
	// compression kind without a parser.
	ErrUnsupportedRevision = errors.New("unityfs: unsupported revision")

	// ErrDecompression signals a block codec rejected its input or produced
	// the wrong output size.
	ErrDecompression = errors.New("unityfs: decompression error")

	// ErrArrayItemOffset signals an item-relative offset was used outside
	// an array item context.
	ErrArrayItemOffset = errors.New("unityfs: array item offset used outside item context")

	// ErrSerializedFileNotFound signals a PPtr dereference target stream
	// could not be found in the owning viewer.
	ErrSerializedFileNotFound = errors.New("unityfs: serialized file not found")

	// ErrExternalSerializedFileNotFound signals a PPtr's external table
	// entry names a stream the viewer has not loaded.
	ErrExternalSerializedFileNotFound = errors.New("unityfs: external serialized file not found")

	// ErrObjectNotFound signals a path id absent from a stream's object
	// table.
	ErrObjectNotFound = errors.New("unityfs: object not found")

	// ErrSchemaUnavailable signals a stream declared no embedded type tree
	// and the external provider has no matching (version, class id) entry.
	ErrSchemaUnavailable = errors.New("unityfs: schema unavailable")

	// ErrNotFound signals a named archive node could not be located.
	ErrNotFound = errors.New("unityfs: not found")
)

// TypeMismatch reports a cast to an incompatible primitive or record type.
type TypeMismatch struct {
	Want  string
	Found string
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("unityfs: type mismatch: want %q, found %q", e.Want, e.Found)
}

// FieldNotFound reports a field path absent from an object's layout.
type FieldNotFound struct {
	Path string
}

func (e *FieldNotFound) Error() string {
	return fmt.Sprintf("unityfs: field not found: %q", e.Path)
}

// ArrayFieldNotFound reports a field path that resolved to a node, but the
// node is not an array where an array was required.
type ArrayFieldNotFound struct {
	Path string
}

func (e *ArrayFieldNotFound) Error() string {
	return fmt.Sprintf("unityfs: array field not found: %q", e.Path)
}

// ObjectMeta captures the minimal object-locating context ObjectReadError
// attaches to a lower-level error.
type ObjectMeta struct {
	PathID    int64
	ClassID   int32
	ByteStart int64
	ByteSize  int64
}

// ObjectReadError wraps any error encountered while reading or casting an
// object with the object's location so callers can report which object
// failed without needing to thread that context through every call site.
type ObjectReadError struct {
	Source     error
	DataOffset int64
	ObjectMeta ObjectMeta
}

func (e *ObjectReadError) Error() string {
	return fmt.Sprintf("unityfs: object read error at data_offset=%d object=%+v: %v",
		e.DataOffset, e.ObjectMeta, e.Source)
}

func (e *ObjectReadError) Unwrap() error {
	return e.Source
}

// WrapObjectRead builds an ObjectReadError around source.
func WrapObjectRead(source error, dataOffset int64, meta ObjectMeta) error {
	return &ObjectReadError{Source: source, DataOffset: dataOffset, ObjectMeta: meta}
}
