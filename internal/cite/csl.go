package cite

import (
	"io"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grounding/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form,
// so the grounding sources can be fed to Pandoc or a reference manager.
type CSLItem struct {
	ID     string `yaml:"id"`
	Type   string `yaml:"type"`
	Title  string `yaml:"title"`
	URL    string `yaml:"URL,omitempty"`
	Source string `yaml:"container-title,omitempty"`
}

// Bibliography converts the resolvable chunks of resp to CSL items. IDs are
// the 1-based chunk positions used by the footnote markers, so empty chunks
// leave gaps.
func Bibliography(resp *types.ModelResponse) []CSLItem {
	if resp == nil || resp.GroundingMetadata == nil {
		return nil
	}
	var items []CSLItem
	for i, chunk := range resp.GroundingMetadata.GroundingChunks {
		src, kind, ok := chunk.Source()
		if !ok {
			continue
		}
		items = append(items, toCSLItem(i+1, src, kind))
	}
	return items
}

// WriteCSL writes the bibliography of resp as a CSL-YAML list to w.
func WriteCSL(resp *types.ModelResponse, w io.Writer) error {
	items := Bibliography(resp)
	if items == nil {
		items = []CSLItem{}
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(pos int, src types.ChunkSource, kind types.ChunkKind) CSLItem {
	item := CSLItem{
		ID:     strconv.Itoa(pos),
		Type:   "document",
		Title:  src.Title,
		URL:    src.URI,
		Source: src.Domain,
	}
	if kind == types.ChunkWeb {
		item.Type = "webpage"
	}
	return item
}
