// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// FilePack is a golem language pack read from a downloaded lemma
// dictionary: one line per lemma, "base\tform\tform...", optionally gzipped.
type FilePack struct {
	path   string
	locale string
}

// NewFilePack returns a pack for the dictionary at path.
func NewFilePack(path, locale string) *FilePack {
	return &FilePack{path: path, locale: locale}
}

// GetResource returns the uncompressed dictionary bytes.
func (p *FilePack) GetResource() ([]byte, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, err
	}
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening gzip dictionary: %w", err)
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// GetLocale returns the name the pack was registered under.
func (p *FilePack) GetLocale() string {
	return p.locale
}
