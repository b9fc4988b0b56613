// Package schema implements the process-wide external type-tree provider
//: a registry for the zstd-compressed tar archive of
// per-engine-version InfoJson documents that serialized objects without an
// embedded type tree must be decoded against.
//
// The archive is read in full and decompressed once per lookup miss, then
// cached by engine version; building a class's flattened tree from its
// parsed document is itself cached by (version, class id), mirroring
// get_type_object_args_by_version_class_id's two-level cache.
package schema

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/unitydump/unityfs/compress"
	"github.com/unitydump/unityfs/errs"
	"github.com/unitydump/unityfs/internal/hash"
	"github.com/unitydump/unityfs/typetree"
)

// entryPrefix is the archive's fixed directory: one JSON document per
// engine version, named "InfoJson/<version>.json".
const entryPrefix = "InfoJson/"

// Source is the archive bytes a Provider reads from: a complete
// zstd-compressed tar stream, seekable so a miss can re-scan from the
// start without the caller re-opening it.
type Source = io.ReadSeeker

// Provider is a process-wide, mutex-guarded registry for one schema
// archive plus its document and tree caches. The zero value has no
// source registered; lookups against it fail with errs.ErrSchemaUnavailable
// until SetSource is called.
type Provider struct {
	mu     sync.Mutex
	source Source

	docs  map[string]typetree.SchemaDoc // keyed by version string
	trees map[uint64]typetree.Tree      // keyed by hash.ID("version\x00classID")
}

// New returns an empty Provider with no archive registered.
func New() *Provider {
	return &Provider{
		docs:  make(map[string]typetree.SchemaDoc),
		trees: make(map[uint64]typetree.Tree),
	}
}

// SetSource registers the archive Provider reads from, discarding any
// cached documents and trees from a previously registered archive.
func (p *Provider) SetSource(src Source) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.source = src
	p.docs = make(map[string]typetree.SchemaDoc)
	p.trees = make(map[uint64]typetree.Tree)
}

// treeCacheKey hashes (version, classID) into the tree cache's key space,
// repurposing the module's xxhash-backed id helper rather than keying the
// map on a formatted string per lookup.
func treeCacheKey(version string, classID int32) uint64 {
	return hash.ID(fmt.Sprintf("%s\x00%d", version, classID))
}

// ClassTree returns the flattened release type tree for (version, classID)
// from the registered archive, building and caching it on first use.
func (p *Provider) ClassTree(version string, classID int32) (typetree.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := treeCacheKey(version, classID)
	if tree, ok := p.trees[key]; ok {
		return tree, nil
	}

	if p.source == nil {
		return typetree.Tree{}, fmt.Errorf("%w: no external schema archive registered", errs.ErrSchemaUnavailable)
	}

	doc, ok := p.docs[version]
	if !ok {
		var err error
		doc, err = p.readDoc(version)
		if err != nil {
			return typetree.Tree{}, err
		}
		p.docs[version] = doc
	}

	tree, ok := doc.ClassTree(classID)
	if !ok {
		return typetree.Tree{}, fmt.Errorf("%w: version %q has no class id %d", errs.ErrSchemaUnavailable, version, classID)
	}

	p.trees[key] = tree

	return tree, nil
}

// readDoc re-seeks the archive to its start, decompresses it whole, and
// linear-scans the resulting tar stream for the requested version's entry.
func (p *Provider) readDoc(version string) (typetree.SchemaDoc, error) {
	if _, err := p.source.Seek(0, io.SeekStart); err != nil {
		return typetree.SchemaDoc{}, fmt.Errorf("%w: seeking schema archive: %v", errs.ErrIO, err)
	}

	compressed, err := io.ReadAll(p.source)
	if err != nil {
		return typetree.SchemaDoc{}, fmt.Errorf("%w: reading schema archive: %v", errs.ErrIO, err)
	}

	raw, err := compress.NewZstdCompressor().Decompress(compressed)
	if err != nil {
		return typetree.SchemaDoc{}, fmt.Errorf("%w: decompressing schema archive: %v", errs.ErrDecompression, err)
	}

	wantName := entryPrefix + version + ".json"

	tr := tar.NewReader(bytes.NewReader(raw))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return typetree.SchemaDoc{}, fmt.Errorf("%w: reading schema archive tar stream: %v", errs.ErrParse, err)
		}
		if hdr.Name != wantName {
			continue
		}

		doc, err := typetree.DecodeSchemaDoc(tr)
		if err != nil {
			return typetree.SchemaDoc{}, fmt.Errorf("%w: decoding %s: %v", errs.ErrParse, wantName, err)
		}

		return doc, nil
	}

	return typetree.SchemaDoc{}, fmt.Errorf("%w: no entry %s in schema archive", errs.ErrSchemaUnavailable, wantName)
}
