// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API tokens from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: wikimedia-api-token, model-download-token.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Known key file names.
const (
	WikimediaToken     = "wikimedia-api-token"
	ModelDownloadToken = "model-download-token"
)

// Secrets maps key file names to their trimmed contents.
type Secrets map[string]string

// Get returns the secret value for key if it exists, or fallback otherwise.
// A non-empty fallback (typically a flag or config value) wins.
func (s Secrets) Get(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return s[key]
}

// Keys returns the loaded key names in sorted order. Values are never listed.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load reads all files in dir and returns their trimmed contents keyed by filename.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning but do not abort.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
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
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
