// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcript saves a prompt and its grounded response to disk so the
// answer can be re-rendered later without calling the model again.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grounding/pkg/types"
)

// Transcript is the on-disk record of one grounded question.
type Transcript struct {
	Prompt    string              `json:"prompt" yaml:"prompt"`
	Model     string              `json:"model" yaml:"model"`
	Tool      string              `json:"tool,omitempty" yaml:"tool,omitempty"`
	Response  types.ModelResponse `json:"response" yaml:"response"`
	Timestamp time.Time           `json:"timestamp" yaml:"timestamp"`
}

type format int

const (
	formatYAML format = iota
	formatJSON
)

func formatFor(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".json":
		return formatJSON, nil
	default:
		return 0, fmt.Errorf("unsupported transcript extension %q: use .yaml, .yml, or .json", filepath.Ext(path))
	}
}

// Write saves t to path as YAML or JSON, chosen by the file extension.
func Write(path string, t Transcript) error {
	f, err := formatFor(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatJSON:
		data, err = json.MarshalIndent(&t, "", "  ")
	default:
		data, err = yaml.Marshal(&t)
	}
	if err != nil {
		return fmt.Errorf("marshaling transcript: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Read loads a transcript previously saved with Write.
func Read(path string) (*Transcript, error) {
	f, err := formatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	var t Transcript
	switch f {
	case formatJSON:
		err = json.Unmarshal(data, &t)
	default:
		err = yaml.Unmarshal(data, &t)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing transcript %s: %w", path, err)
	}
	return &t, nil
}
