// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wiki-nlp/pkg/types"
)

func generated(n int) *Table {
	toks := make([]types.AnnotatedToken, n)
	for i := range toks {
		toks[i] = types.AnnotatedToken{
			Text:  fmt.Sprintf("tok%d", i),
			Lemma: fmt.Sprintf("lem%d", i),
			POS:   "NOUN",
		}
	}
	return FromAnnotation(toks)
}

func render(t *testing.T, tbl *Table, opts RenderOptions) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, tbl, opts))
	return buf.String()
}

func TestFromAnnotation(t *testing.T) {
	tbl := FromAnnotation([]types.AnnotatedToken{
		{Text: "Cats", Lemma: "cat", POS: "NOUN", Tag: "NNS"},
		{Text: "sleep", Lemma: "sleep", POS: "VERB", Tag: "VBP"},
	})

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, Row{Token: "Cats", Lemma: "cat", POS: "NOUN"}, tbl.Row(0))

	rows := tbl.Rows()
	rows[0].Token = "changed"
	assert.Equal(t, "Cats", tbl.Row(0).Token, "Rows must return a copy")
}

func TestRenderSmall(t *testing.T) {
	tbl := FromAnnotation([]types.AnnotatedToken{
		{Text: "Python", Lemma: "Python", POS: "PROPN"},
		{Text: "is", Lemma: "be", POS: "AUX"},
		{Text: "great", Lemma: "great", POS: "ADJ"},
	})

	want := "" +
		"    Token   Lemma    POS\n" +
		"0  Python  Python  PROPN\n" +
		"1      is      be    AUX\n" +
		"2   great   great    ADJ\n"
	assert.Equal(t, want, render(t, tbl, DefaultRenderOptions()))
}

func TestRenderEmpty(t *testing.T) {
	out := render(t, FromAnnotation(nil), DefaultRenderOptions())
	assert.Equal(t, "Empty table\nColumns: [Token, Lemma, POS]\n", out)
}

func TestRenderTruncates(t *testing.T) {
	tbl := generated(100)
	out := render(t, tbl, DefaultRenderOptions())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// header, 5 head rows, ellipsis, 5 tail rows, blank, footer
	require.Len(t, lines, 14)
	assert.Contains(t, lines[1], "tok0")
	assert.Contains(t, lines[5], "tok4")
	assert.Contains(t, lines[6], "...")
	assert.Contains(t, lines[7], "tok95")
	assert.Contains(t, lines[11], "tok99")
	assert.Equal(t, "[100 rows x 3 columns]", lines[13])
	assert.NotContains(t, out, "tok50")
}

func TestRenderAtLimitNotTruncated(t *testing.T) {
	tbl := generated(DefaultMaxRows)
	opts := DefaultRenderOptions()
	assert.False(t, opts.Truncated(tbl))

	out := render(t, tbl, opts)
	assert.NotContains(t, out, "...")
	assert.Equal(t, DefaultMaxRows+1, strings.Count(out, "\n"))
}

func TestRenderAllRows(t *testing.T) {
	tbl := generated(100)

	all := render(t, tbl, AllRows())
	assert.Equal(t, 101, strings.Count(all, "\n"))
	assert.NotContains(t, all, "rows x")
	assert.Contains(t, all, "tok50")

	// Options are per call: a later default render is truncated again.
	again := render(t, tbl, DefaultRenderOptions())
	assert.Contains(t, again, "[100 rows x 3 columns]")
}

func TestRenderCustomLimits(t *testing.T) {
	tbl := generated(20)
	out := render(t, tbl, RenderOptions{MaxRows: 8, MinRows: 4})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// header, 2 head rows, ellipsis, 2 tail rows, blank, footer
	require.Len(t, lines, 8)
	assert.Contains(t, lines[2], "tok1")
	assert.Contains(t, lines[4], "tok18")
	assert.Equal(t, "[20 rows x 3 columns]", lines[7])
}

func TestRenderOptionsNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   RenderOptions
		want RenderOptions
	}{
		{"zero value uses defaults", RenderOptions{}, DefaultRenderOptions()},
		{"min capped at max", RenderOptions{MaxRows: 4, MinRows: 10}, RenderOptions{MaxRows: 4, MinRows: 4}},
		{"unbounded keeps min", RenderOptions{MaxRows: Unbounded, MinRows: 6}, RenderOptions{MaxRows: Unbounded, MinRows: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.normalized())
		})
	}
}

func TestRenderAlignsWideGlyphs(t *testing.T) {
	tbl := FromAnnotation([]types.AnnotatedToken{
		{Text: "東京", Lemma: "東京", POS: "PROPN"},
		{Text: "に", Lemma: "に", POS: "ADP"},
		{Text: "Tokyo", Lemma: "Tokyo", POS: "PROPN"},
	})
	out := render(t, tbl, DefaultRenderOptions())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	width := runewidth.StringWidth(lines[0])
	for _, l := range lines[1:] {
		assert.Equal(t, width, runewidth.StringWidth(l), l)
	}
}
