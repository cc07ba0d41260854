// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite renders a grounded model response as Markdown with inline
// footnote markers and a bibliography of grounding sources.
//
// Grounding offsets are byte offsets into the UTF-8 answer text. Go strings
// are byte sequences, so spans are cut by slicing the string directly.
package cite

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/grounding/pkg/types"
)

// ErrMalformedResponse reports offsets or chunk indices that are
// inconsistent with the response they belong to.
var ErrMalformedResponse = errors.New("malformed response")

const (
	sourcesDivider = "\n----\n## Grounding Sources\n"
	chunksHeading  = "### Grounding Chunks\n"
)

// Span is a piece of the answer text and the chunks it is attributed to.
type Span struct {
	// Text is the decoded byte range.
	Text string

	// ChunkIndices are the 0-based chunk positions, in the order the
	// grounding support lists them.
	ChunkIndices []int

	// Cited is false only for trailing text after the last support.
	Cited bool
}

// Result is the rendered Markdown plus the chunks left out of the bibliography.
type Result struct {
	Markdown string

	// Skipped lists 1-based positions of chunks with no source.
	Skipped []int
}

// Format renders resp as Markdown. See Render.
func Format(resp *types.ModelResponse) (string, error) {
	res, err := Render(resp)
	if err != nil {
		return "", err
	}
	return res.Markdown, nil
}

// Render interleaves the answer text with footnote markers and appends the
// grounding sources section. A response without grounding metadata renders
// as its bare text.
func Render(resp *types.ModelResponse) (Result, error) {
	spans, err := Segments(resp)
	if err != nil {
		return Result{}, err
	}

	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(sp.Text)
		if sp.Cited {
			b.WriteByte(' ')
			b.WriteString(footnotes(sp.ChunkIndices))
			b.WriteByte('\n')
		}
	}

	md := resp.GroundingMetadata
	if md == nil {
		return Result{Markdown: b.String()}, nil
	}

	b.WriteString(sourcesDivider)
	writeQueries(&b, md)
	b.WriteString(chunksHeading)

	var res Result
	for i, chunk := range md.GroundingChunks {
		src, _, ok := chunk.Source()
		if !ok {
			res.Skipped = append(res.Skipped, i+1)
			continue
		}
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, src.Title, src.URI)
	}

	res.Markdown = b.String()
	return res, nil
}

// Segments splits resp.Text at each grounding support's end offset. The
// concatenated span texts always equal resp.Text. Trailing text after the
// last support is returned as an uncited span.
func Segments(resp *types.ModelResponse) ([]Span, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", ErrMalformedResponse)
	}

	text := resp.Text
	md := resp.GroundingMetadata
	if md == nil {
		if text == "" {
			return nil, nil
		}
		return []Span{{Text: text}}, nil
	}

	var spans []Span
	prev := 0
	for i, sup := range md.GroundingSupports {
		end := sup.Segment.EndIndex
		if end < prev || end > len(text) {
			return nil, fmt.Errorf("%w: support %d: segment end %d outside [%d, %d]",
				ErrMalformedResponse, i, end, prev, len(text))
		}
		if end < len(text) && !utf8.RuneStart(text[end]) {
			return nil, fmt.Errorf("%w: support %d: segment end %d splits a multi-byte character",
				ErrMalformedResponse, i, end)
		}
		for _, idx := range sup.GroundingChunkIndices {
			if idx < 0 || idx >= len(md.GroundingChunks) {
				return nil, fmt.Errorf("%w: support %d: chunk index %d outside [0, %d)",
					ErrMalformedResponse, i, idx, len(md.GroundingChunks))
			}
		}

		spans = append(spans, Span{
			Text:         text[prev:end],
			ChunkIndices: sup.GroundingChunkIndices,
			Cited:        true,
		})
		prev = end
	}

	if prev < len(text) {
		spans = append(spans, Span{Text: text[prev:]})
	}
	return spans, nil
}

// footnotes renders 0-based chunk indices as "[1][3]".
func footnotes(indices []int) string {
	var b strings.Builder
	for _, idx := range indices {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(idx + 1))
		b.WriteByte(']')
	}
	return b.String()
}

// writeQueries emits web search queries (and the search widget) or, when
// there are none, retrieval queries.
func writeQueries(b *strings.Builder, md *types.GroundingMetadata) {
	switch {
	case len(md.WebSearchQueries) > 0:
		fmt.Fprintf(b, "\n**Web Search Queries:** %s\n", strings.Join(md.WebSearchQueries, ", "))
		if md.SearchEntryPoint != nil && md.SearchEntryPoint.RenderedContent != "" {
			fmt.Fprintf(b, "\n**Search Entry Point:**\n %s\n", md.SearchEntryPoint.RenderedContent)
		}
	case len(md.RetrievalQueries) > 0:
		fmt.Fprintf(b, "\n**Retrieval Queries:** %s\n", strings.Join(md.RetrievalQueries, ", "))
	}
}
