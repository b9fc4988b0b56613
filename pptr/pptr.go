// Package pptr implements the cross-object pointer value type Unity calls
// PPtr, and its resolution against an asset viewer.
package pptr

import "github.com/unitydump/unityfs/object"

// PPtr is a cross-reference to another object: FileID selects which
// stream holds it (0 meaning "this stream", otherwise a 1-based index
// into the owning stream's external table), PathID selects the object
// within that stream.
type PPtr struct {
	FileID int32
	PathID int64
}

// IsNull reports whether p is Unity's null-reference sentinel.
func (p PPtr) IsNull() bool {
	return p.FileID == 0 && p.PathID == 0
}

// Resolver is the subset of viewer.Viewer that PPtr.Resolve needs: turning
// an owning stream's external-table file id into the stream id it names,
// and looking an object up by (stream id, path id). Kept as a narrow
// interface here so this package does not import viewer.
type Resolver interface {
	ResolveExternal(owningStreamID int, fileID int32) (streamID int, err error)
	Object(streamID int, pathID int64) (*object.Object, error)
}

// Resolve dereferences p against r, starting the lookup from
// owningStreamID (the stream the PPtr value itself was read out of).
// A null pointer (path id 0 within the owning stream) resolves to
// (nil, nil), not an error — only a non-null pointer that fails to
// resolve is an error.
func (p PPtr) Resolve(r Resolver, owningStreamID int) (*object.Object, error) {
	if p.FileID == 0 {
		if p.PathID == 0 {
			return nil, nil
		}

		return r.Object(owningStreamID, p.PathID)
	}

	streamID, err := r.ResolveExternal(owningStreamID, p.FileID)
	if err != nil {
		return nil, err
	}

	return r.Object(streamID, p.PathID)
}
