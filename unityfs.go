// Package unityfs decodes Unity's UnityFS asset-bundle container format:
// the outer compressed-block archive, the inner serialized-object-stream
// header and object table, and the per-object "type tree" schemas used to
// decode an object's fields positionally.
//
// # Core Features
//
//   - UnityFS archive parsing with transparent LZ4/LZMA block decompression
//   - Serialized-file (CAB) header and object-table parsing across ~22
//     format revisions
//   - Positional field decoding against embedded or externally supplied
//     type trees, with lazy, zero-copy field access
//   - Cross-file object pointer (PPtr) resolution
//   - A multi-archive viewer indexing container paths and asset pointers
//
// # Basic Usage
//
// Opening an archive and reading one of its serialized files:
//
//	import "github.com/unitydump/unityfs"
//
//	f, _ := os.Open("CAB-aaaa.unity3d")
//	a, err := unityfs.OpenArchive(f, filepath.Dir("CAB-aaaa.unity3d"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	buf, err := a.ReadFile("CAB-aaaa")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sf, err := unityfs.OpenSerializedFile(buf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Decoding one object's fields:
//
//	for _, info := range sf.Objects {
//	    tree, ok := sf.TypeTreeFor(info.TypeID)
//	    if !ok {
//	        continue // needs an external schema; see NewSchemaProvider
//	    }
//	    payload, _ := sf.ObjectPayload(buf, info)
//	    obj, _, err := object.New(info.ClassID, tree, payload, sf.Engine())
//	    if err != nil {
//	        continue
//	    }
//	    name, _ := obj.String("/Base/m_Name")
//	    fmt.Println(name)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around archive,
// serialize, typetree, object, pptr, schema, and viewer. For fine-grained
// control — constructing a Layout directly, or swapping in a custom
// schema.Source — use those packages directly.
package unityfs

import (
	"io"

	"github.com/unitydump/unityfs/archive"
	"github.com/unitydump/unityfs/schema"
	"github.com/unitydump/unityfs/serialize"
	"github.com/unitydump/unityfs/viewer"
)

// OpenArchive parses a UnityFS container from r. searchPath, if non-empty,
// is recorded for later OpenResourceFile sibling-file lookups.
//
// Example:
//
//	a, err := unityfs.OpenArchive(f, filepath.Dir(path))
func OpenArchive(r io.ReadSeeker, searchPath string) (*archive.Archive, error) {
	return archive.Open(r, searchPath)
}

// OpenSerializedFile parses one complete serialized-object-stream buffer
// (a UnityFS node's fully materialized bytes, or a standalone CAB/level
// file read directly from disk).
//
// Example:
//
//	buf, _ := a.ReadFile("CAB-aaaa")
//	sf, err := unityfs.OpenSerializedFile(buf)
func OpenSerializedFile(buf []byte) (*serialize.File, error) {
	return serialize.Open(buf)
}

// NewSchemaProvider returns an empty external type-tree provider. Call
// SetSource on the result before resolving any class tree; it is safe to
// share across goroutines.
//
// Example:
//
//	sp := unityfs.NewSchemaProvider()
//	sp.SetSource(schemaArchiveFile)
//	tree, err := sp.ClassTree("2021.3.5f1", 114)
func NewSchemaProvider() *schema.Provider {
	return schema.New()
}

// NewViewer returns an empty Viewer. schemaProvider may be nil if every
// archive or stream the caller registers carries its own embedded type
// trees.
//
// Example:
//
//	v := unityfs.NewViewer(sp)
//	if err := v.IngestBundleDir("./bundles"); err != nil {
//	    log.Fatal(err)
//	}
//	obj, err := v.ObjectByContainerName("sfx/explosion")
func NewViewer(schemaProvider *schema.Provider) *viewer.Viewer {
	return viewer.New(schemaProvider)
}
