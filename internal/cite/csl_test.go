package cite

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grounding/pkg/types"
)

func TestBibliography(t *testing.T) {
	resp := &types.ModelResponse{
		Text: "x",
		GroundingMetadata: &types.GroundingMetadata{
			GroundingChunks: []types.GroundingChunk{
				{Web: &types.ChunkSource{Title: "NASA", URI: "https://nasa.gov", Domain: "nasa.gov"}},
				{},
				retrieved("Eclipse notes", "gs://bucket/notes.pdf"),
			},
		},
	}

	items := Bibliography(resp)
	require.Len(t, items, 2)
	assert.Equal(t, CSLItem{ID: "1", Type: "webpage", Title: "NASA", URL: "https://nasa.gov", Source: "nasa.gov"}, items[0])
	assert.Equal(t, CSLItem{ID: "3", Type: "document", Title: "Eclipse notes", URL: "gs://bucket/notes.pdf"}, items[1])
}

func TestBibliography_NoMetadata(t *testing.T) {
	assert.Nil(t, Bibliography(&types.ModelResponse{Text: "x"}))
	assert.Nil(t, Bibliography(nil))
}

func TestWriteCSL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSL(eclipseResponse(), &buf))

	var items []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0]["id"])
	assert.Equal(t, "webpage", items[0]["type"])
	assert.Equal(t, "NASA", items[0]["title"])
	assert.Equal(t, "https://nasa.gov", items[0]["URL"])
	assert.NotContains(t, items[0], "container-title")
}

func TestWriteCSL_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSL(&types.ModelResponse{Text: "x"}, &buf))
	assert.Equal(t, "[]\n", buf.String())
}
