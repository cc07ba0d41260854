// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: gemini-api-key, google-application-credentials.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Known secret names.
const (
	GeminiAPIKey                 = "gemini-api-key"
	GoogleApplicationCredentials = "google-application-credentials"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logrus.WithError(err).Warnf("could not read secret %s", name)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnv reads KEY=value pairs from each existing file into the process
// environment. Variables already set are left alone. Missing files are
// skipped; it returns the files that were loaded.
func LoadEnv(files ...string) ([]string, error) {
	var loaded []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return loaded, fmt.Errorf("checking env file %s: %w", f, err)
		}
		if err := godotenv.Load(f); err != nil {
			return loaded, fmt.Errorf("loading env file %s: %w", f, err)
		}
		loaded = append(loaded, f)
	}
	return loaded, nil
}

// ExportCredentials points GOOGLE_APPLICATION_CREDENTIALS at the path held
// in the google-application-credentials secret, unless the variable is
// already set. It reports whether the variable was set.
func ExportCredentials(s map[string]string) (bool, error) {
	path, ok := s[GoogleApplicationCredentials]
	if !ok || os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		return false, nil
	}
	if err := os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path); err != nil {
		return false, fmt.Errorf("setting GOOGLE_APPLICATION_CREDENTIALS: %w", err)
	}
	return true, nil
}
