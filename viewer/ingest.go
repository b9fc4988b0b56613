package viewer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/unitydump/unityfs/errs"
)

// IngestBundleDir walks path, treating every regular file it contains as
// a UnityFS archive. Files that fail to open as an archive
// are skipped rather than aborting the whole walk, since bundle
// directories commonly hold non-archive siblings (readme files, catalogs).
func (v *Viewer) IngestBundleDir(path string) error {
	return fs.WalkDir(os.DirFS(path), ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		full := filepath.Join(path, name)
		f, openErr := os.Open(full)
		if openErr != nil {
			return nil
		}
		defer f.Close()

		if _, err := v.AddArchive(f, filepath.Dir(full)); err != nil {
			// Not a UnityFS archive (or malformed); skip, per this
			// operation's file-at-a-time best-effort contract.
			return nil
		}

		return nil
	})
}

// ingestDataDirCandidates lists the conventional top-level file names a
// Unity data directory carries: numbered level and sharedassets streams,
// plus the fixed resources.assets and globalgamemanagers* names.
func ingestDataDirCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		switch {
		case name == "resources.assets":
			names = append(names, name)
		case strings.HasPrefix(name, "globalgamemanagers"):
			names = append(names, name)
		case isNumberedStream(name, "level", ""):
			names = append(names, name)
		case isNumberedStream(name, "sharedassets", ".assets"):
			names = append(names, name)
		}
	}

	return names, nil
}

// isNumberedStream reports whether name is exactly prefix, a decimal
// index, then suffix — e.g. isNumberedStream("sharedassets0.assets",
// "sharedassets", ".assets") or isNumberedStream("level0", "level", "").
func isNumberedStream(name, prefix, suffix string) bool {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return false
	}
	digits := name[len(prefix) : len(name)-len(suffix)]
	if digits == "" {
		return false
	}
	_, err := strconv.Atoi(digits)

	return err == nil
}

// IngestDataDir opens every conventional top-level stream file in dir and
// registers each as a standalone stream.
func (v *Viewer) IngestDataDir(dir string) error {
	names, err := ingestDataDirCandidates(dir)
	if err != nil {
		return err
	}

	for _, name := range names {
		full := filepath.Join(dir, name)
		f, err := os.Open(full)
		if err != nil {
			return fmt.Errorf("%w: opening %q: %v", errs.ErrIO, full, err)
		}

		_, err = v.AddStream(f, dir)
		closeErr := f.Close()
		if err != nil {
			return fmt.Errorf("%w: registering %q: %v", errs.ErrIO, full, err)
		}
		if closeErr != nil {
			return fmt.Errorf("%w: closing %q: %v", errs.ErrIO, full, closeErr)
		}
	}

	return nil
}

// OpenResourceFile locates a sibling binary (textures/audio often reside
// in .resS/.resource files) for a stream, searching in order: the stream's
// owning archive, when path names one of the archive's own nodes (scheme
// "archive:/<node>"); an explicit search path passed by the caller;
// the stream's own registered search path; the owning archive's search
// path; the current directory.
func (v *Viewer) OpenResourceFile(streamID int, path, explicitSearchPath string) (io.ReadSeeker, error) {
	if streamID < 0 || streamID >= len(v.streams) {
		return nil, errs.ErrSerializedFileNotFound
	}
	entry := v.streams[streamID]

	const archiveScheme = "archive:/"
	if strings.HasPrefix(path, archiveScheme) {
		if entry.archiveID < 0 {
			return nil, fmt.Errorf("%w: %q: stream has no owning archive", errs.ErrNotFound, path)
		}
		nodeName := strings.TrimPrefix(path, archiveScheme)

		return v.archives[entry.archiveID].OpenFileReader(nodeName)
	}

	candidates := []string{}
	if explicitSearchPath != "" {
		candidates = append(candidates, filepath.Join(explicitSearchPath, path))
	}
	if entry.searchPath != "" {
		candidates = append(candidates, filepath.Join(entry.searchPath, path))
	}
	if entry.archiveID >= 0 {
		if archiveSearchPath := v.archives[entry.archiveID].SearchPath; archiveSearchPath != "" {
			candidates = append(candidates, filepath.Join(archiveSearchPath, path))
		}
	}
	candidates = append(candidates, path)

	for _, candidate := range candidates {
		if f, err := os.Open(candidate); err == nil {
			return f, nil
		}
	}

	return nil, fmt.Errorf("%w: resource file %q", errs.ErrNotFound, path)
}
