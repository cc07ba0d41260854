// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/grounding/pkg/types"
)

// --- helpers ---

func web(title, uri string) types.GroundingChunk {
	return types.GroundingChunk{Web: &types.ChunkSource{Title: title, URI: uri}}
}

func retrieved(title, uri string) types.GroundingChunk {
	return types.GroundingChunk{RetrievedContext: &types.ChunkSource{Title: title, URI: uri}}
}

func support(end int, indices ...int) types.GroundingSupport {
	return types.GroundingSupport{
		Segment:               types.Segment{EndIndex: end},
		GroundingChunkIndices: indices,
	}
}

func eclipseResponse() *types.ModelResponse {
	return &types.ModelResponse{
		Text: "Eclipses occur regularly.",
		GroundingMetadata: &types.GroundingMetadata{
			GroundingSupports: []types.GroundingSupport{support(8, 0)},
			GroundingChunks:   []types.GroundingChunk{web("NASA", "https://nasa.gov")},
		},
	}
}

// --- Format ---

func TestFormat_EclipseScenario(t *testing.T) {
	got, err := Format(eclipseResponse())
	require.NoError(t, err)

	want := "Eclipses [1]\n occur regularly." +
		"\n----\n## Grounding Sources\n" +
		"### Grounding Chunks\n" +
		"1. [NASA](https://nasa.gov)\n"
	assert.Equal(t, want, got)
}

func TestFormat_SegmentEndingAfterSpace(t *testing.T) {
	resp := eclipseResponse()
	resp.GroundingMetadata.GroundingSupports[0].Segment.EndIndex = 9

	got, err := Format(resp)
	require.NoError(t, err)
	// The span keeps its own trailing space and the marker adds one more.
	assert.True(t, strings.HasPrefix(got, "Eclipses  [1]\noccur regularly.\n----"), got)
	assert.Contains(t, got, "1. [NASA](https://nasa.gov)\n")
}

func TestFormat_NoGroundingMetadata(t *testing.T) {
	resp := &types.ModelResponse{Text: "The next total eclipse is in 2044."}

	got, err := Format(resp)
	require.NoError(t, err)
	assert.Equal(t, resp.Text, got)
	assert.NotContains(t, got, "Grounding Sources")
	assert.NotContains(t, got, "----")
}

func TestFormat_WebSearchQueries(t *testing.T) {
	tests := []struct {
		name        string
		md          types.GroundingMetadata
		contains    []string
		notContains []string
	}{
		{
			name: "queries without entry point",
			md: types.GroundingMetadata{
				WebSearchQueries: []string{"next solar eclipse US"},
			},
			contains:    []string{"\n**Web Search Queries:** next solar eclipse US\n"},
			notContains: []string{"Search Entry Point", "Retrieval Queries"},
		},
		{
			name: "queries with entry point",
			md: types.GroundingMetadata{
				WebSearchQueries: []string{"eclipse 2044", "eclipse 2045"},
				SearchEntryPoint: &types.SearchEntryPoint{RenderedContent: "<div class=\"chips\"></div>"},
			},
			contains: []string{
				"\n**Web Search Queries:** eclipse 2044, eclipse 2045\n",
				"\n**Search Entry Point:**\n <div class=\"chips\"></div>\n",
			},
		},
		{
			name: "empty entry point omitted",
			md: types.GroundingMetadata{
				WebSearchQueries: []string{"eclipse 2044"},
				SearchEntryPoint: &types.SearchEntryPoint{},
			},
			contains:    []string{"\n**Web Search Queries:** eclipse 2044\n"},
			notContains: []string{"Search Entry Point"},
		},
		{
			name: "entry point ignored without queries",
			md: types.GroundingMetadata{
				SearchEntryPoint: &types.SearchEntryPoint{RenderedContent: "<div></div>"},
			},
			notContains: []string{"Search Entry Point", "Web Search Queries"},
		},
		{
			name: "retrieval queries",
			md: types.GroundingMetadata{
				RetrievalQueries: []string{"eclipse datastore"},
			},
			contains:    []string{"\n**Retrieval Queries:** eclipse datastore\n"},
			notContains: []string{"Web Search Queries"},
		},
		{
			name: "web queries win over retrieval queries",
			md: types.GroundingMetadata{
				WebSearchQueries: []string{"web q"},
				RetrievalQueries: []string{"retrieval q"},
			},
			contains:    []string{"**Web Search Queries:** web q"},
			notContains: []string{"Retrieval Queries"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := tt.md
			got, err := Format(&types.ModelResponse{Text: "Answer.", GroundingMetadata: &md})
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(got, "Answer.\n----\n## Grounding Sources\n"), got)
			assert.True(t, strings.HasSuffix(got, "### Grounding Chunks\n"), got)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestFormat_FootnoteOrderFollowsIndices(t *testing.T) {
	resp := &types.ModelResponse{
		Text: "First. Second.",
		GroundingMetadata: &types.GroundingMetadata{
			GroundingSupports: []types.GroundingSupport{
				support(6, 2, 0),
				support(14, 1),
			},
			GroundingChunks: []types.GroundingChunk{
				web("A", "https://a.example"),
				web("B", "https://b.example"),
				web("C", "https://c.example"),
			},
		},
	}

	got, err := Format(resp)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "First. [3][1]\n Second. [2]\n\n----\n"), got)
	assert.Contains(t, got, "1. [A](https://a.example)\n2. [B](https://b.example)\n3. [C](https://c.example)\n")
}

func TestFormat_EmptyChunkKeepsPositionalNumbering(t *testing.T) {
	resp := &types.ModelResponse{
		Text: "Claim.",
		GroundingMetadata: &types.GroundingMetadata{
			GroundingSupports: []types.GroundingSupport{support(6, 0, 2)},
			GroundingChunks: []types.GroundingChunk{
				web("First", "https://first.example"),
				{},
				retrieved("Third", "gs://bucket/third.pdf"),
			},
		},
	}

	res, err := Render(resp)
	require.NoError(t, err)

	assert.Contains(t, res.Markdown, "1. [First](https://first.example)\n3. [Third](gs://bucket/third.pdf)\n")
	assert.NotContains(t, res.Markdown, "2. ")
	assert.Equal(t, []int{2}, res.Skipped)
}

func TestFormat_BlankVariantFallsThrough(t *testing.T) {
	resp := &types.ModelResponse{
		Text: "Claim.",
		GroundingMetadata: &types.GroundingMetadata{
			GroundingSupports: []types.GroundingSupport{support(6, 0, 1)},
			GroundingChunks: []types.GroundingChunk{
				{Web: &types.ChunkSource{}},
				{Web: &types.ChunkSource{}, RetrievedContext: &types.ChunkSource{Title: "Doc", URI: "gs://b/doc.pdf"}},
			},
		},
	}

	res, err := Render(resp)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(res.Markdown, "### Grounding Chunks\n2. [Doc](gs://b/doc.pdf)\n"), res.Markdown)
	assert.NotContains(t, res.Markdown, "[]()")
	assert.Equal(t, []int{1}, res.Skipped)
}

func TestFormat_SupportEndingAtTextEnd(t *testing.T) {
	resp := &types.ModelResponse{
		Text: "All cited.",
		GroundingMetadata: &types.GroundingMetadata{
			GroundingSupports: []types.GroundingSupport{support(10, 0)},
			GroundingChunks:   []types.GroundingChunk{web("S", "https://s.example")},
		},
	}

	got, err := Format(resp)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "All cited. [1]\n\n----\n"), got)
}

func TestFormat_SupportWithoutIndices(t *testing.T) {
	resp := &types.ModelResponse{
		Text: "Uncited span.",
		GroundingMetadata: &types.GroundingMetadata{
			GroundingSupports: []types.GroundingSupport{support(13)},
		},
	}

	got, err := Format(resp)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "Uncited span. \n\n----\n"), got)
}

func TestFormat_MultiByteText(t *testing.T) {
	// "Café" is 5 bytes, so "Café ok." ends at byte 9 while having 8 runes.
	resp := &types.ModelResponse{
		Text: "Café ok. Naïve énoncé.",
		GroundingMetadata: &types.GroundingMetadata{
			GroundingSupports: []types.GroundingSupport{support(9, 0)},
			GroundingChunks:   []types.GroundingChunk{web("Menu", "https://menu.example")},
		},
	}

	got, err := Format(resp)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "Café ok. [1]\n Naïve énoncé.\n----\n"), got)
}

func TestFormat_Deterministic(t *testing.T) {
	resp := eclipseResponse()
	resp.GroundingMetadata.WebSearchQueries = []string{"a", "b"}

	first, err := Format(resp)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Format(resp)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

// --- errors ---

func TestFormat_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		resp   *types.ModelResponse
		errMsg string
	}{
		{
			name:   "nil response",
			resp:   nil,
			errMsg: "nil response",
		},
		{
			name: "end beyond text",
			resp: &types.ModelResponse{
				Text: "short",
				GroundingMetadata: &types.GroundingMetadata{
					GroundingSupports: []types.GroundingSupport{support(6, 0)},
					GroundingChunks:   []types.GroundingChunk{web("A", "https://a.example")},
				},
			},
			errMsg: "segment end 6 outside [0, 5]",
		},
		{
			name: "negative end",
			resp: &types.ModelResponse{
				Text: "short",
				GroundingMetadata: &types.GroundingMetadata{
					GroundingSupports: []types.GroundingSupport{support(-1)},
				},
			},
			errMsg: "segment end -1",
		},
		{
			name: "end before previous end",
			resp: &types.ModelResponse{
				Text: "one two three",
				GroundingMetadata: &types.GroundingMetadata{
					GroundingSupports: []types.GroundingSupport{support(7), support(3)},
				},
			},
			errMsg: "support 1: segment end 3 outside [7, 13]",
		},
		{
			name: "end splits multi-byte character",
			resp: &types.ModelResponse{
				Text: "Café",
				GroundingMetadata: &types.GroundingMetadata{
					GroundingSupports: []types.GroundingSupport{support(4)},
				},
			},
			errMsg: "splits a multi-byte character",
		},
		{
			name: "chunk index out of range",
			resp: &types.ModelResponse{
				Text: "Claim.",
				GroundingMetadata: &types.GroundingMetadata{
					GroundingSupports: []types.GroundingSupport{support(6, 0, 1)},
					GroundingChunks:   []types.GroundingChunk{web("A", "https://a.example")},
				},
			},
			errMsg: "chunk index 1 outside [0, 1)",
		},
		{
			name: "negative chunk index",
			resp: &types.ModelResponse{
				Text: "Claim.",
				GroundingMetadata: &types.GroundingMetadata{
					GroundingSupports: []types.GroundingSupport{support(6, -1)},
					GroundingChunks:   []types.GroundingChunk{web("A", "https://a.example")},
				},
			},
			errMsg: "chunk index -1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.resp)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Empty(t, got)
		})
	}
}

// --- Segments ---

func TestSegments_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		resp *types.ModelResponse
	}{
		{name: "eclipse", resp: eclipseResponse()},
		{name: "no metadata", resp: &types.ModelResponse{Text: "plain"}},
		{
			name: "multi-byte with trailing text",
			resp: &types.ModelResponse{
				Text: "日本の日食は珍しい。次は2035年。",
				GroundingMetadata: &types.GroundingMetadata{
					GroundingSupports: []types.GroundingSupport{support(30, 0)},
					GroundingChunks:   []types.GroundingChunk{web("国立天文台", "https://www.nao.ac.jp")},
				},
			},
		},
		{
			name: "fully cited",
			resp: &types.ModelResponse{
				Text: "a b c",
				GroundingMetadata: &types.GroundingMetadata{
					GroundingSupports: []types.GroundingSupport{support(1), support(3), support(5)},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := Segments(tt.resp)
			require.NoError(t, err)

			var b strings.Builder
			for _, sp := range spans {
				b.WriteString(sp.Text)
			}
			assert.Equal(t, tt.resp.Text, b.String())
		})
	}
}

func TestSegments_TrailingSpanIsUncited(t *testing.T) {
	spans, err := Segments(eclipseResponse())
	require.NoError(t, err)
	require.Len(t, spans, 2)

	assert.Equal(t, Span{Text: "Eclipses", ChunkIndices: []int{0}, Cited: true}, spans[0])
	assert.Equal(t, Span{Text: " occur regularly."}, spans[1])
}

func TestSegments_EmptyText(t *testing.T) {
	spans, err := Segments(&types.ModelResponse{})
	require.NoError(t, err)
	assert.Empty(t, spans)
}
