// Package viewer provides an in-memory index spanning many archives and
// streams, resolving container paths, cross-file pointers, and external
// resource-file companions.
package viewer

import (
	"fmt"
	"io"

	"github.com/unitydump/unityfs/archive"
	"github.com/unitydump/unityfs/errs"
	"github.com/unitydump/unityfs/format"
	"github.com/unitydump/unityfs/object"
	"github.com/unitydump/unityfs/pptr"
	"github.com/unitydump/unityfs/schema"
	"github.com/unitydump/unityfs/serialize"
)

// streamEntry is one registered serialized-object stream: its parsed
// header/object table, the fully materialized bytes object payloads slice
// into, and the bookkeeping OpenResourceFile needs to locate siblings.
type streamEntry struct {
	file       *serialize.File
	buf        []byte
	archiveID  int // -1 if this stream was registered standalone
	cabName    string
	searchPath string
}

// containerEntry is one (stream, pointer) pair a container name resolves
// to — kept as a list per name since duplicate registrations are
// preserved in order rather than deduplicated.
type containerEntry struct {
	StreamID int
	Pointer  pptr.PPtr
}

// Viewer aggregates archives and streams registered over its lifetime.
// It is not internally synchronized; callers share one across goroutines
// at their own risk (or wrap it).
type Viewer struct {
	Schema *schema.Provider

	archives []*archive.Archive
	streams  []streamEntry

	cabToStream     map[string]int
	streamToArchive map[int]int

	containerToPointers map[string][]containerEntry
	pathIDToContainer   map[int]map[int64]string
}

// New returns an empty Viewer. schemaProvider may be nil if every stream
// the caller registers embeds its own type trees.
func New(schemaProvider *schema.Provider) *Viewer {
	return &Viewer{
		Schema:              schemaProvider,
		cabToStream:         make(map[string]int),
		streamToArchive:     make(map[int]int),
		containerToPointers: make(map[string][]containerEntry),
		pathIDToContainer:   make(map[int]map[int64]string),
	}
}

// AddArchive opens r as a UnityFS container, registers every cab file it
// contains as a stream, and returns the new archive's id.
func (v *Viewer) AddArchive(r io.ReadSeeker, searchPath string) (int, error) {
	a, err := archive.Open(r, searchPath)
	if err != nil {
		return 0, err
	}

	archiveID := len(v.archives)
	v.archives = append(v.archives, a)

	for _, node := range a.ListFiles() {
		buf, err := a.ReadFile(node.Name)
		if err != nil {
			return 0, fmt.Errorf("%w: reading cab %q: %v", errs.ErrIO, node.Name, err)
		}

		f, err := serialize.Open(buf)
		if err != nil {
			// Not every node in a bundle is a serialized stream (resource
			// blobs sit alongside them); skip anything that doesn't parse.
			continue
		}

		v.registerStream(f, buf, archiveID, node.Name, searchPath)
	}

	return archiveID, nil
}

// AddStream registers a standalone serialized-object stream (not backed
// by a UnityFS archive) and returns its stream id.
func (v *Viewer) AddStream(r io.Reader, searchPath string) (int, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	f, err := serialize.Open(buf)
	if err != nil {
		return 0, err
	}

	return v.registerStream(f, buf, -1, "", searchPath), nil
}

func (v *Viewer) registerStream(f *serialize.File, buf []byte, archiveID int, cabName, searchPath string) int {
	streamID := len(v.streams)
	v.streams = append(v.streams, streamEntry{
		file:       f,
		buf:        buf,
		archiveID:  archiveID,
		cabName:    cabName,
		searchPath: searchPath,
	})

	if cabName != "" {
		v.cabToStream[cabName] = streamID
	}
	if archiveID >= 0 {
		v.streamToArchive[streamID] = archiveID
	}

	v.scanContainers(streamID, f, buf)

	return streamID
}

// scanContainers extracts m_Container entries from an AssetBundle object
// (conventionally at path id 1) or any ResourceManager object in the
// stream, indexing container_name -> (stream_id, pointer) and its
// per-stream reverse path_id -> name.
func (v *Viewer) scanContainers(streamID int, f *serialize.File, buf []byte) {
	for _, info := range f.Objects {
		if info.ClassID != int32(format.ClassAssetBundle) && info.ClassID != int32(format.ClassResourceManager) {
			continue
		}

		obj, err := v.openObject(f, buf, info)
		if err != nil {
			continue
		}

		n, err := obj.Len("/Base/m_Container")
		if err != nil {
			continue
		}

		reverse, ok := v.pathIDToContainer[streamID]
		if !ok {
			reverse = make(map[int64]string)
			v.pathIDToContainer[streamID] = reverse
		}

		for i := 0; i < n; i++ {
			key, value, err := obj.Pair("/Base/m_Container", i)
			if err != nil {
				continue
			}
			name, err := key.String("/Base")
			if err != nil {
				continue
			}
			p, err := readPPtrValue(value)
			if err != nil {
				continue
			}

			v.containerToPointers[name] = append(v.containerToPointers[name], containerEntry{StreamID: streamID, Pointer: p})
			if p.FileID == 0 {
				reverse[p.PathID] = name
			}
		}
	}
}

// readPPtrValue reads a PPtr-shaped record's m_FileID/m_PathID fields,
// descending through an intermediate "asset" field first if the record
// nests its pointer there (Unity's AssetInfo shape) rather than carrying
// the fields directly.
func readPPtrValue(o *object.Object) (pptr.PPtr, error) {
	fileID, err := o.Int("/Base/m_FileID")
	if err != nil {
		nested, nestedErr := o.Object("/Base/asset")
		if nestedErr != nil {
			return pptr.PPtr{}, err
		}
		o = nested
		fileID, err = o.Int("/Base/m_FileID")
		if err != nil {
			return pptr.PPtr{}, err
		}
	}

	pathID, err := o.Int("/Base/m_PathID")
	if err != nil {
		return pptr.PPtr{}, err
	}

	return pptr.PPtr{FileID: int32(fileID), PathID: pathID}, nil
}

// openObject builds a typed-object handle for one object table entry,
// falling back to the external schema provider when the stream has no
// embedded type tree for it.
func (v *Viewer) openObject(f *serialize.File, buf []byte, info serialize.ObjectInfo) (*object.Object, error) {
	tree, ok := f.TypeTreeFor(info.TypeID)
	if !ok {
		if v.Schema == nil {
			return nil, errs.ErrSchemaUnavailable
		}
		var err error
		tree, err = v.Schema.ClassTree(f.UnityVersion, info.ClassID)
		if err != nil {
			return nil, err
		}
	}

	payload, err := f.ObjectPayload(buf, info)
	if err != nil {
		return nil, err
	}

	obj, _, err := object.New(info.ClassID, tree, payload, f.Engine())
	if err != nil {
		return nil, err
	}

	return obj, nil
}

// StreamByCab returns the stream id registered for a cab file name.
func (v *Viewer) StreamByCab(name string) (int, bool) {
	id, ok := v.cabToStream[name]
	return id, ok
}

// ArchiveByStream returns the archive id a stream was extracted from.
func (v *Viewer) ArchiveByStream(streamID int) (int, bool) {
	id, ok := v.streamToArchive[streamID]
	return id, ok
}

// ContainerNameByPointer looks up the container name registered for an
// object at pathID within streamID, via the stream's reverse index.
func (v *Viewer) ContainerNameByPointer(streamID int, pathID int64) (string, bool) {
	reverse, ok := v.pathIDToContainer[streamID]
	if !ok {
		return "", false
	}
	name, ok := reverse[pathID]

	return name, ok
}

// ObjectByContainerName resolves the first pointer registered under name
// to a typed-object handle.
func (v *Viewer) ObjectByContainerName(name string) (*object.Object, error) {
	entries, ok := v.containerToPointers[name]
	if !ok || len(entries) == 0 {
		return nil, fmt.Errorf("%w: container name %q", errs.ErrNotFound, name)
	}

	return entries[0].Pointer.Resolve(v, entries[0].StreamID)
}

// ObjectsByContainerName resolves every pointer registered under name, in
// registration order.
func (v *Viewer) ObjectsByContainerName(name string) ([]*object.Object, error) {
	entries, ok := v.containerToPointers[name]
	if !ok {
		return nil, fmt.Errorf("%w: container name %q", errs.ErrNotFound, name)
	}

	out := make([]*object.Object, 0, len(entries))
	for _, e := range entries {
		obj, err := e.Pointer.Resolve(v, e.StreamID)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}

	return out, nil
}

// ResolveExternal implements pptr.Resolver: it takes owningStreamID's
// external-table entry fileID-1 and resolves its path to an already
// registered stream id.
func (v *Viewer) ResolveExternal(owningStreamID int, fileID int32) (int, error) {
	if owningStreamID < 0 || owningStreamID >= len(v.streams) {
		return 0, errs.ErrSerializedFileNotFound
	}
	f := v.streams[owningStreamID].file

	idx := int(fileID) - 1
	if idx < 0 || idx >= len(f.Externals) {
		return 0, fmt.Errorf("%w: file id %d", errs.ErrExternalSerializedFileNotFound, fileID)
	}

	name := f.Externals[idx].Path
	if id, ok := v.cabToStream[name]; ok {
		return id, nil
	}

	return 0, fmt.Errorf("%w: external path %q", errs.ErrExternalSerializedFileNotFound, name)
}

// Object implements pptr.Resolver: it looks up pathID within streamID's
// object table and builds a typed-object handle for it.
func (v *Viewer) Object(streamID int, pathID int64) (*object.Object, error) {
	if streamID < 0 || streamID >= len(v.streams) {
		return nil, errs.ErrSerializedFileNotFound
	}
	entry := v.streams[streamID]

	for _, info := range entry.file.Objects {
		if info.PathID == pathID {
			return v.openObject(entry.file, entry.buf, info)
		}
	}

	return nil, fmt.Errorf("%w: path id %d in stream %d", errs.ErrObjectNotFound, pathID, streamID)
}

var _ pptr.Resolver = (*Viewer)(nil)
