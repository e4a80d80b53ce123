// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table holds the Token/Lemma/POS result table and renders it as
// aligned text. Rendering never mutates package state; every call carries
// its own RenderOptions.
package table

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/pdiddy/wiki-nlp/pkg/types"
)

// Columns are the table headers in display order.
var Columns = []string{"Token", "Lemma", "POS"}

const (
	// Unbounded disables row truncation.
	Unbounded = -1

	DefaultMaxRows = 60
	DefaultMinRows = 10

	ellipsis = "..."
	colSep   = "  "
)

// Row is one annotated token.
type Row struct {
	Token string `json:"token" yaml:"token"`
	Lemma string `json:"lemma" yaml:"lemma"`
	POS   string `json:"pos" yaml:"pos"`
}

// Table is an ordered, read-only set of rows derived from an annotation.
type Table struct {
	rows []Row
}

// FromAnnotation builds a table with one row per token in document order.
func FromAnnotation(tokens []types.AnnotatedToken) *Table {
	rows := make([]Row, len(tokens))
	for i, tok := range tokens {
		rows[i] = Row{Token: tok.Text, Lemma: tok.Lemma, POS: tok.POS}
	}
	return &Table{rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns row i.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Rows returns a copy of all rows.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// RenderOptions controls how many rows Render prints. A table longer than
// MaxRows is cut to its first and last MinRows/2 rows.
type RenderOptions struct {
	MaxRows int
	MinRows int
}

// DefaultRenderOptions returns the standard truncated view.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{MaxRows: DefaultMaxRows, MinRows: DefaultMinRows}
}

// AllRows returns options that print every row.
func AllRows() RenderOptions {
	return RenderOptions{MaxRows: Unbounded}
}

func (o RenderOptions) normalized() RenderOptions {
	if o.MaxRows == 0 {
		o.MaxRows = DefaultMaxRows
	}
	if o.MinRows <= 0 {
		o.MinRows = DefaultMinRows
	}
	if o.MaxRows != Unbounded && o.MinRows > o.MaxRows {
		o.MinRows = o.MaxRows
	}
	return o
}

// Truncated reports whether Render would elide rows of t.
func (o RenderOptions) Truncated(t *Table) bool {
	o = o.normalized()
	return o.MaxRows != Unbounded && t.Len() > o.MaxRows
}

// Render writes t to w. The first column is the zero-based row index; the
// remaining columns are right-aligned by display width.
func Render(w io.Writer, t *Table, opts RenderOptions) error {
	opts = opts.normalized()

	if t.Len() == 0 {
		_, err := fmt.Fprintf(w, "Empty table\nColumns: [%s]\n", strings.Join(Columns, ", "))
		return err
	}

	lines := visibleLines(t, opts)

	widths := make([]int, len(Columns)+1)
	for i, c := range Columns {
		widths[i+1] = runewidth.StringWidth(c)
	}
	for _, l := range lines {
		for i, cell := range l {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var b strings.Builder
	header := append([]string{""}, Columns...)
	writeLine(&b, header, widths)
	for _, l := range lines {
		writeLine(&b, l, widths)
	}
	if opts.Truncated(t) {
		fmt.Fprintf(&b, "\n[%d rows x %d columns]\n", t.Len(), len(Columns))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// visibleLines returns the cells to print, with an ellipsis line standing in
// for elided rows.
func visibleLines(t *Table, opts RenderOptions) [][]string {
	line := func(i int) []string {
		r := t.rows[i]
		return []string{strconv.Itoa(i), r.Token, r.Lemma, r.POS}
	}

	if !opts.Truncated(t) {
		out := make([][]string, t.Len())
		for i := range t.rows {
			out[i] = line(i)
		}
		return out
	}

	half := opts.MinRows / 2
	if half < 1 {
		half = 1
	}
	out := make([][]string, 0, 2*half+1)
	for i := 0; i < half; i++ {
		out = append(out, line(i))
	}
	out = append(out, []string{ellipsis, ellipsis, ellipsis, ellipsis})
	for i := t.Len() - half; i < t.Len(); i++ {
		out = append(out, line(i))
	}
	return out
}

func writeLine(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i == 0 {
			b.WriteString(runewidth.FillRight(cell, widths[0]))
			continue
		}
		b.WriteString(colSep)
		b.WriteString(runewidth.FillLeft(cell, widths[i]))
	}
	b.WriteByte('\n')
}
