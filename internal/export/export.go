// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes a result table to disk as CSV, JSON or YAML.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wiki-nlp/internal/table"
	"github.com/pdiddy/wiki-nlp/pkg/types"
)

const filePrefix = "wiki_nlp_"

// Record is one exported row.
type Record struct {
	Index int    `json:"index" yaml:"index"`
	Token string `json:"token" yaml:"token"`
	Lemma string `json:"lemma" yaml:"lemma"`
	POS   string `json:"pos" yaml:"pos"`
}

// FileName returns the export file name for term, wiki_nlp_<term>.<ext>.
// Path separators in term are replaced so the file always lands in the
// output directory.
func FileName(term string, format types.ExportFormat) string {
	if format == "" {
		format = types.FormatCSV
	}
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(term)
	return filePrefix + safe + "." + string(format)
}

// Write exports t to dir and returns the absolute path of the file. An
// existing file is overwritten.
func Write(dir, term string, format types.ExportFormat, t *table.Table) (string, error) {
	if format == "" {
		format = types.FormatCSV
	}
	if dir == "" {
		dir = "."
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case types.FormatCSV:
		data, err = marshalCSV(t)
	case types.FormatJSON:
		data, err = json.MarshalIndent(records(t), "", "  ")
		data = append(data, '\n')
	case types.FormatYAML:
		data, err = yaml.Marshal(records(t))
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("marshaling %s: %w", format, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path, err := filepath.Abs(filepath.Join(dir, FileName(term, format)))
	if err != nil {
		return "", fmt.Errorf("resolving output path: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func records(t *table.Table) []Record {
	out := make([]Record, t.Len())
	for i, r := range t.Rows() {
		out[i] = Record{Index: i, Token: r.Token, Lemma: r.Lemma, POS: r.POS}
	}
	return out
}

// marshalCSV writes a header with an unnamed index column followed by the
// table columns, then one line per row.
func marshalCSV(t *table.Table) ([]byte, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	header := append([]string{""}, table.Columns...)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i, r := range t.Rows() {
		if err := w.Write([]string{strconv.Itoa(i), r.Token, r.Lemma, r.POS}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
