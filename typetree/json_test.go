package typetree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromJSONFlattensAndSorts(t *testing.T) {
	require := require.New(t)

	const doc = `{
		"TypeName": "Base", "Name": "Base", "Level": 0, "ByteSize": 12, "Index": 0,
		"Version": 1, "TypeFlags": 0, "MetaFlag": 0,
		"SubNodes": [
			{"TypeName": "string", "Name": "m_Name", "Level": 1, "ByteSize": -1, "Index": 2,
			 "Version": 1, "TypeFlags": 0, "MetaFlag": 0, "SubNodes": []},
			{"TypeName": "SInt32", "Name": "m_Value", "Level": 1, "ByteSize": 4, "Index": 1,
			 "Version": 1, "TypeFlags": 0, "MetaFlag": 0, "SubNodes": []}
		]
	}`

	var root jsonNode
	require.NoError(json.Unmarshal([]byte(doc), &root))

	tree := FromJSON(&root)
	require.Len(tree.Nodes, 3)
	// re-sorted by Index: Base(0), m_Value(1), m_Name(2)
	require.Equal("Base", tree.Nodes[0].Name)
	require.Equal("m_Value", tree.Nodes[1].Name)
	require.Equal("m_Name", tree.Nodes[2].Name)
}

func TestJSONInfoClassTree(t *testing.T) {
	require := require.New(t)

	const doc = `{
		"Version": "2019.4.1f1",
		"Classes": [
			{"Name": "GameObject", "TypeID": 1, "ReleaseRootNode": {
				"TypeName": "Base", "Name": "Base", "Level": 0, "ByteSize": 4, "Index": 0,
				"Version": 1, "TypeFlags": 0, "MetaFlag": 0, "SubNodes": []
			}},
			{"Name": "Transform", "TypeID": 4, "ReleaseRootNode": null}
		]
	}`

	var info jsonInfo
	require.NoError(json.Unmarshal([]byte(doc), &info))

	tree, ok := info.ClassTree(1)
	require.True(ok)
	require.Len(tree.Nodes, 1)

	_, ok = info.ClassTree(4)
	require.False(ok)

	_, ok = info.ClassTree(999)
	require.False(ok)
}
