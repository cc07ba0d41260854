// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ModelResponse is one answer from a generative model, reduced to the
// fields the citation formatter needs.
type ModelResponse struct {
	// Text is the generated answer. Grounding offsets index its UTF-8 bytes.
	Text string `json:"text" yaml:"text"`

	// GroundingMetadata is present only when grounding was requested and
	// the service attached sources to the answer.
	GroundingMetadata *GroundingMetadata `json:"grounding_metadata,omitempty" yaml:"grounding_metadata,omitempty"`
}

// GroundingMetadata carries the citation data attached to a ModelResponse.
type GroundingMetadata struct {
	// GroundingSupports attributes spans of Text to chunks, ordered by
	// increasing segment end offset.
	GroundingSupports []GroundingSupport `json:"grounding_supports,omitempty" yaml:"grounding_supports,omitempty"`

	// GroundingChunks are the sources, referenced by position.
	GroundingChunks []GroundingChunk `json:"grounding_chunks,omitempty" yaml:"grounding_chunks,omitempty"`

	// WebSearchQueries lists the queries run by the Google Search tool.
	WebSearchQueries []string `json:"web_search_queries,omitempty" yaml:"web_search_queries,omitempty"`

	// SearchEntryPoint holds the pre-rendered search widget, if any.
	SearchEntryPoint *SearchEntryPoint `json:"search_entry_point,omitempty" yaml:"search_entry_point,omitempty"`

	// RetrievalQueries lists the queries run by a retrieval tool.
	RetrievalQueries []string `json:"retrieval_queries,omitempty" yaml:"retrieval_queries,omitempty"`
}

// GroundingSupport attributes one segment of the answer to one or more chunks.
type GroundingSupport struct {
	Segment Segment `json:"segment" yaml:"segment"`

	// GroundingChunkIndices are 0-based positions in GroundingChunks.
	GroundingChunkIndices []int `json:"grounding_chunk_indices" yaml:"grounding_chunk_indices"`

	// ConfidenceScores parallels GroundingChunkIndices when the service provides it.
	ConfidenceScores []float64 `json:"confidence_scores,omitempty" yaml:"confidence_scores,omitempty"`
}

// Segment is a byte range of ModelResponse.Text. Only EndIndex is used for
// slicing; the start of a segment is the end of the previous one.
type Segment struct {
	StartIndex int    `json:"start_index" yaml:"start_index"`
	EndIndex   int    `json:"end_index" yaml:"end_index"`
	Text       string `json:"text,omitempty" yaml:"text,omitempty"`
}

// ChunkKind names which variant of a GroundingChunk is populated.
type ChunkKind string

const (
	ChunkWeb              ChunkKind = "web"
	ChunkRetrievedContext ChunkKind = "retrieved_context"
)

// GroundingChunk is one source. At most one of Web and RetrievedContext is
// expected to be set; a chunk with neither is empty.
type GroundingChunk struct {
	Web              *ChunkSource `json:"web,omitempty" yaml:"web,omitempty"`
	RetrievedContext *ChunkSource `json:"retrieved_context,omitempty" yaml:"retrieved_context,omitempty"`
}

// ChunkSource is the title and location of a web page or retrieved document.
type ChunkSource struct {
	Title  string `json:"title" yaml:"title"`
	URI    string `json:"uri" yaml:"uri"`
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// Source returns the populated variant, preferring Web. A variant with
// neither title nor URI counts as absent. It reports false for an empty chunk.
func (c GroundingChunk) Source() (ChunkSource, ChunkKind, bool) {
	if c.Web.populated() {
		return *c.Web, ChunkWeb, true
	}
	if c.RetrievedContext.populated() {
		return *c.RetrievedContext, ChunkRetrievedContext, true
	}
	return ChunkSource{}, "", false
}

func (s *ChunkSource) populated() bool {
	return s != nil && (s.Title != "" || s.URI != "")
}

// SearchEntryPoint is the search suggestion widget returned with web grounding.
type SearchEntryPoint struct {
	// RenderedContent is HTML/CSS meant to be embedded verbatim.
	RenderedContent string `json:"rendered_content" yaml:"rendered_content"`
}
