package gemini

import (
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/grounding/pkg/types"
)

// ToModelResponse converts the first candidate of resp. Text parts are
// concatenated in order; thought parts are left out. Nil chunks and
// supports in the grounding metadata become zero values so positions are
// preserved.
func ToModelResponse(resp *genai.GenerateContentResponse) (*types.ModelResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, ErrNoCandidates
	}
	cand := resp.Candidates[0]

	out := &types.ModelResponse{Text: candidateText(cand)}
	if cand.GroundingMetadata != nil {
		out.GroundingMetadata = convertMetadata(cand.GroundingMetadata)
	}
	return out, nil
}

func candidateText(cand *genai.Candidate) string {
	if cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

func convertMetadata(gm *genai.GroundingMetadata) *types.GroundingMetadata {
	md := &types.GroundingMetadata{
		WebSearchQueries: gm.WebSearchQueries,
		RetrievalQueries: gm.RetrievalQueries,
	}
	if gm.SearchEntryPoint != nil {
		md.SearchEntryPoint = &types.SearchEntryPoint{
			RenderedContent: gm.SearchEntryPoint.RenderedContent,
		}
	}

	for _, s := range gm.GroundingSupports {
		md.GroundingSupports = append(md.GroundingSupports, convertSupport(s))
	}
	for _, c := range gm.GroundingChunks {
		md.GroundingChunks = append(md.GroundingChunks, convertChunk(c))
	}
	return md
}

func convertSupport(s *genai.GroundingSupport) types.GroundingSupport {
	var sup types.GroundingSupport
	if s == nil {
		return sup
	}
	if s.Segment != nil {
		sup.Segment = types.Segment{
			StartIndex: int(s.Segment.StartIndex),
			EndIndex:   int(s.Segment.EndIndex),
			Text:       s.Segment.Text,
		}
	}
	for _, idx := range s.GroundingChunkIndices {
		sup.GroundingChunkIndices = append(sup.GroundingChunkIndices, int(idx))
	}
	for _, score := range s.ConfidenceScores {
		sup.ConfidenceScores = append(sup.ConfidenceScores, float64(score))
	}
	return sup
}

func convertChunk(c *genai.GroundingChunk) types.GroundingChunk {
	var chunk types.GroundingChunk
	if c == nil {
		return chunk
	}
	if c.Web != nil {
		chunk.Web = &types.ChunkSource{
			Title:  c.Web.Title,
			URI:    c.Web.URI,
			Domain: c.Web.Domain,
		}
	}
	if c.RetrievedContext != nil {
		chunk.RetrievedContext = &types.ChunkSource{
			Title: c.RetrievedContext.Title,
			URI:   c.RetrievedContext.URI,
		}
	}
	return chunk
}
