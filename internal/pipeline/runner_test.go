// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_annotate "github.com/pdiddy/wiki-nlp/internal/mocks/annotate"
	mock_pipeline "github.com/pdiddy/wiki-nlp/internal/mocks/pipeline"
	"github.com/pdiddy/wiki-nlp/internal/store"
	"github.com/pdiddy/wiki-nlp/pkg/types"
)

func init() {
	color.NoColor = true
}

type mocks struct {
	source    *mock_pipeline.MockArticleSource
	models    *mock_pipeline.MockModelProvider
	factory   *mock_pipeline.MockAnnotatorFactory
	annotator *mock_annotate.MockAnnotator
	recorder  *mock_pipeline.MockRecorder
}

func newMocks(t *testing.T) mocks {
	ctrl := gomock.NewController(t)
	return mocks{
		source:    mock_pipeline.NewMockArticleSource(ctrl),
		models:    mock_pipeline.NewMockModelProvider(ctrl),
		factory:   mock_pipeline.NewMockAnnotatorFactory(ctrl),
		annotator: mock_annotate.NewMockAnnotator(ctrl),
		recorder:  mock_pipeline.NewMockRecorder(ctrl),
	}
}

func tokens(n int) []types.AnnotatedToken {
	out := make([]types.AnnotatedToken, n)
	for i := range out {
		out[i] = types.AnnotatedToken{Text: fmt.Sprintf("w%d", i), Lemma: fmt.Sprintf("w%d", i), POS: "NOUN", Tag: "NN"}
	}
	return out
}

var mercury = types.Article{
	Title:    "Mercury (planet)",
	PageID:   19694,
	URL:      "https://en.wikipedia.org/wiki/Mercury_(planet)",
	Content:  "Mercury is the first planet from the Sun.",
	Language: "en",
}

// expectAnnotation wires the model and annotator mocks to return toks.
func (m mocks) expectAnnotation(content string, toks []types.AnnotatedToken) {
	m.models.EXPECT().Ensure(gomock.Any(), "builtin:en").Return("", nil)
	m.factory.EXPECT().Load("builtin:en", "").Return(m.annotator, nil)
	m.annotator.EXPECT().Name().Return("builtin:en").AnyTimes()
	m.annotator.EXPECT().Annotate(gomock.Any(), content).Return(toks, nil)
}

func TestRunEmptyQuery(t *testing.T) {
	m := newMocks(t)
	var out bytes.Buffer
	r := NewRunner(m.source, m.models, m.factory, &out)

	for _, term := range []string{"", "   ", "\t\n"} {
		_, err := r.Run(context.Background(), term, Options{Model: "builtin:en"})
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
	assert.Empty(t, out.String())
}

func TestRunNoResults(t *testing.T) {
	m := newMocks(t)
	m.source.EXPECT().Search(gomock.Any(), "qwxzv").Return(nil, nil)

	var out bytes.Buffer
	dir := t.TempDir()
	r := NewRunner(m.source, m.models, m.factory, &out, WithRecorder(m.recorder))

	_, err := r.Run(context.Background(), "qwxzv", Options{Model: "builtin:en", Save: true, OutputDir: dir})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `no pages found for "qwxzv"`, err.Error())

	assert.NotContains(t, out.String(), "Processing corpus")
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries, "nothing may be saved when the search finds nothing")
}

func TestRunSearchError(t *testing.T) {
	m := newMocks(t)
	boom := errors.New("connection refused")
	m.source.EXPECT().Search(gomock.Any(), "Mercury").Return(nil, boom)

	r := NewRunner(m.source, m.models, m.factory, &bytes.Buffer{})
	_, err := r.Run(context.Background(), "Mercury", Options{Model: "builtin:en"})
	assert.ErrorIs(t, err, boom)
}

func TestRunSingleMatch(t *testing.T) {
	m := newMocks(t)
	m.source.EXPECT().Search(gomock.Any(), "Mercury").Return([]string{"Mercury (planet)"}, nil)
	m.source.EXPECT().Fetch(gomock.Any(), "Mercury (planet)").Return(mercury, nil)
	m.expectAnnotation(mercury.Content, tokens(3))

	var out bytes.Buffer
	r := NewRunner(m.source, m.models, m.factory, &out)
	res, err := r.Run(context.Background(), "  Mercury ", Options{Model: "builtin:en"})
	require.NoError(t, err)

	assert.Equal(t, "Mercury", res.Term)
	assert.Equal(t, mercury, res.Article)
	assert.Equal(t, 3, res.Table.Len())
	assert.Equal(t, res.Annotation.Len(), res.Table.Len())
	assert.Equal(t, "builtin:en", res.Annotation.Model)
	assert.Empty(t, res.SavedPath)

	s := out.String()
	assert.NotContains(t, s, "Found multiple options")
	assert.Contains(t, s, "Pulling information from https://en.wikipedia.org/wiki/Mercury_(planet)\n")
	assert.Contains(t, s, "Processing corpus\n")
	assert.True(t, strings.Index(s, "Pulling") < strings.Index(s, "Processing"))
}

func TestRunMultipleMatches(t *testing.T) {
	m := newMocks(t)
	m.source.EXPECT().Search(gomock.Any(), "Mercury").
		Return([]string{"Mercury (planet)", "Mercury (element)", "Freddie Mercury"}, nil)
	m.source.EXPECT().Fetch(gomock.Any(), "Mercury (planet)").Return(mercury, nil)
	m.expectAnnotation(mercury.Content, tokens(2))

	var out bytes.Buffer
	r := NewRunner(m.source, m.models, m.factory, &out)
	res, err := r.Run(context.Background(), "Mercury", Options{Model: "builtin:en"})
	require.NoError(t, err)

	assert.Len(t, res.Candidates, 3)
	assert.Contains(t, out.String(),
		`Found multiple options for "Mercury", using "Mercury (planet)". Other options: ['Mercury (element)', 'Freddie Mercury']`)
}

func TestRunFetchError(t *testing.T) {
	m := newMocks(t)
	m.source.EXPECT().Search(gomock.Any(), "Mercury").Return([]string{"Mercury (planet)"}, nil)
	m.source.EXPECT().Fetch(gomock.Any(), "Mercury (planet)").Return(types.Article{}, errors.New("page gone"))

	r := NewRunner(m.source, m.models, m.factory, &bytes.Buffer{})
	_, err := r.Run(context.Background(), "Mercury", Options{Model: "builtin:en"})
	assert.ErrorContains(t, err, "page gone")
}

func TestRunModelError(t *testing.T) {
	m := newMocks(t)
	m.source.EXPECT().Search(gomock.Any(), "Mercury").Return([]string{"Mercury (planet)"}, nil)
	m.source.EXPECT().Fetch(gomock.Any(), "Mercury (planet)").Return(mercury, nil)
	boom := errors.New("download failed")
	m.models.EXPECT().Ensure(gomock.Any(), "custom.tsv").Return("", boom)

	var out bytes.Buffer
	r := NewRunner(m.source, m.models, m.factory, &out)
	_, err := r.Run(context.Background(), "Mercury", Options{Model: "custom.tsv"})
	require.ErrorIs(t, err, boom)
	assert.NotContains(t, out.String(), "Processing corpus")
}

func TestRunTruncatesByDefault(t *testing.T) {
	m := newMocks(t)
	m.source.EXPECT().Search(gomock.Any(), "Mercury").Return([]string{"Mercury (planet)"}, nil)
	m.source.EXPECT().Fetch(gomock.Any(), "Mercury (planet)").Return(mercury, nil)
	m.expectAnnotation(mercury.Content, tokens(200))

	var out bytes.Buffer
	r := NewRunner(m.source, m.models, m.factory, &out)
	_, err := r.Run(context.Background(), "Mercury", Options{Model: "builtin:en", MaxRows: 60, MinRows: 10})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "[200 rows x 3 columns]")
	assert.NotContains(t, out.String(), "w100")
}

func TestRunShowAll(t *testing.T) {
	m := newMocks(t)
	m.source.EXPECT().Search(gomock.Any(), "Mercury").Return([]string{"Mercury (planet)"}, nil).Times(2)
	m.source.EXPECT().Fetch(gomock.Any(), "Mercury (planet)").Return(mercury, nil).Times(2)
	m.models.EXPECT().Ensure(gomock.Any(), "builtin:en").Return("", nil).Times(2)
	m.factory.EXPECT().Load("builtin:en", "").Return(m.annotator, nil).Times(2)
	m.annotator.EXPECT().Name().Return("builtin:en").AnyTimes()
	m.annotator.EXPECT().Annotate(gomock.Any(), mercury.Content).Return(tokens(200), nil).Times(2)

	r := NewRunner(m.source, m.models, m.factory, &bytes.Buffer{})

	var all bytes.Buffer
	r.out = &all
	_, err := r.Run(context.Background(), "Mercury", Options{Model: "builtin:en", ShowAll: true})
	require.NoError(t, err)
	assert.Contains(t, all.String(), "w100")
	assert.Contains(t, all.String(), "w199")
	assert.NotContains(t, all.String(), "rows x")

	// A later default run is truncated again; nothing leaked from ShowAll.
	var again bytes.Buffer
	r.out = &again
	_, err = r.Run(context.Background(), "Mercury", Options{Model: "builtin:en"})
	require.NoError(t, err)
	assert.Contains(t, again.String(), "[200 rows x 3 columns]")
}

func TestRunSave(t *testing.T) {
	m := newMocks(t)
	m.source.EXPECT().Search(gomock.Any(), "Mercury").Return([]string{"Mercury (planet)"}, nil)
	m.source.EXPECT().Fetch(gomock.Any(), "Mercury (planet)").Return(mercury, nil)
	m.expectAnnotation(mercury.Content, tokens(4))

	dir := t.TempDir()
	var out bytes.Buffer
	r := NewRunner(m.source, m.models, m.factory, &out)
	res, err := r.Run(context.Background(), "Mercury", Options{Model: "builtin:en", Save: true, OutputDir: dir})
	require.NoError(t, err)

	want := filepath.Join(dir, "wiki_nlp_Mercury.csv")
	assert.Equal(t, want, res.SavedPath)
	assert.Contains(t, out.String(), "Saved dataframe to "+want+"\n")

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 5, "header plus one line per token")
	assert.Equal(t, ",Token,Lemma,POS", lines[0])
}

func TestRunRecordsHistory(t *testing.T) {
	m := newMocks(t)
	m.source.EXPECT().Search(gomock.Any(), "Mercury").Return([]string{"Mercury (planet)"}, nil)
	m.source.EXPECT().Fetch(gomock.Any(), "Mercury (planet)").Return(mercury, nil)
	toks := tokens(3)
	m.expectAnnotation(mercury.Content, toks)
	m.recorder.EXPECT().Record(gomock.Any(), gomock.Any(), toks).
		DoAndReturn(func(_ context.Context, run store.Run, _ []types.AnnotatedToken) (int64, error) {
			assert.Equal(t, "Mercury", run.Term)
			assert.Equal(t, mercury.Title, run.Title)
			assert.Equal(t, mercury.URL, run.URL)
			assert.Equal(t, "en", run.Language)
			assert.Equal(t, "builtin:en", run.Model)
			return 7, nil
		})

	r := NewRunner(m.source, m.models, m.factory, &bytes.Buffer{}, WithRecorder(m.recorder))
	res, err := r.Run(context.Background(), "Mercury", Options{Model: "builtin:en", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.RunID)
}

func TestRunRecorderFailureIsNotFatal(t *testing.T) {
	m := newMocks(t)
	m.source.EXPECT().Search(gomock.Any(), "Mercury").Return([]string{"Mercury (planet)"}, nil)
	m.source.EXPECT().Fetch(gomock.Any(), "Mercury (planet)").Return(mercury, nil)
	m.expectAnnotation(mercury.Content, tokens(1))
	m.recorder.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New("disk full"))

	r := NewRunner(m.source, m.models, m.factory, &bytes.Buffer{}, WithRecorder(m.recorder))
	res, err := r.Run(context.Background(), "Mercury", Options{Model: "builtin:en"})
	require.NoError(t, err)
	assert.Zero(t, res.RunID)
}

func TestFormatOptions(t *testing.T) {
	assert.Equal(t, "['a']", formatOptions([]string{"a"}))
	assert.Equal(t, "['Mercury (element)', 'Freddie Mercury']",
		formatOptions([]string{"Mercury (element)", "Freddie Mercury"}))
}
