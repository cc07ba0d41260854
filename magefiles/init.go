//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// projectDirs lists the working directories the CLI reads from.
var projectDirs = []string{
	".secrets",
	"transcripts",
}

const sampleConfig = `ai:
  model: gemini-2.5-flash
  backend: gemini
  # backend: vertex
  # project: my-project
  # location: us-central1
  # datastore: projects/my-project/locations/global/collections/default_collection/dataStores/my-store
log:
  level: info
`

// Init creates .secrets/, transcripts/, and a starter grounding.yaml.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}

	cfg := filepath.Join(".", "grounding.yaml")
	if _, err := os.Stat(cfg); err == nil {
		fmt.Println("grounding.yaml exists, left unchanged.")
		return nil
	}
	if err := os.WriteFile(cfg, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", cfg, err)
	}
	fmt.Println("   grounding.yaml")
	fmt.Println("Put your Gemini API key in .secrets/gemini-api-key.")
	return nil
}
