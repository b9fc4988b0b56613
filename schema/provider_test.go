package schema

import (
	"archive/tar"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unitydump/unityfs/compress"
	"github.com/unitydump/unityfs/errs"
)

const testInfoJSON = `{
	"Version": "2021.3.5f1",
	"Classes": [
		{
			"Name": "TestBehaviour",
			"TypeID": 114,
			"ReleaseRootNode": {
				"TypeName": "TestBehaviour",
				"Name": "Base",
				"Level": 0,
				"ByteSize": -1,
				"Index": 0,
				"SubNodes": [
					{
						"TypeName": "SInt32",
						"Name": "m_Value",
						"Level": 1,
						"ByteSize": 4,
						"Index": 1
					}
				]
			}
		}
	]
}`

// buildArchive packs version.json into a tar stream and zstd-compresses
// it whole, matching the archive shape Provider.readDoc expects.
func buildArchive(t *testing.T, version, body string) []byte {
	t.Helper()

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	name := entryPrefix + version + ".json"
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: name,
		Size: int64(len(body)),
		Mode: 0o644,
	}))
	_, err := tw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	compressed, err := compress.NewZstdCompressor().Compress(tarBuf.Bytes())
	require.NoError(t, err)

	return compressed
}

func TestProviderClassTreeCachesAcrossLookups(t *testing.T) {
	require := require.New(t)

	archive := buildArchive(t, "2021.3.5f1", testInfoJSON)
	p := New()
	p.SetSource(bytes.NewReader(archive))

	tree, err := p.ClassTree("2021.3.5f1", 114)
	require.NoError(err)
	require.Len(tree.Nodes, 2)
	require.Equal("m_Value", tree.Nodes[1].Name)

	// Second lookup must hit the tree cache rather than re-read the
	// (now-exhausted, but still seekable) source.
	tree2, err := p.ClassTree("2021.3.5f1", 114)
	require.NoError(err)
	require.Equal(tree, tree2)
}

func TestProviderUnknownClassID(t *testing.T) {
	require := require.New(t)

	archive := buildArchive(t, "2021.3.5f1", testInfoJSON)
	p := New()
	p.SetSource(bytes.NewReader(archive))

	_, err := p.ClassTree("2021.3.5f1", 999)
	require.ErrorIs(err, errs.ErrSchemaUnavailable)
}

func TestProviderNoSourceRegistered(t *testing.T) {
	require := require.New(t)

	p := New()
	_, err := p.ClassTree("2021.3.5f1", 114)
	require.ErrorIs(err, errs.ErrSchemaUnavailable)
}

func TestProviderUnknownVersion(t *testing.T) {
	require := require.New(t)

	archive := buildArchive(t, "2021.3.5f1", testInfoJSON)
	p := New()
	p.SetSource(bytes.NewReader(archive))

	_, err := p.ClassTree("2020.1.0f1", 114)
	require.ErrorIs(err, errs.ErrSchemaUnavailable)
}
