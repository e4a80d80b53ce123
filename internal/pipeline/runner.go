// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one search-fetch-annotate-display-save pass for a
// term. Collaborators sit behind interfaces so each stage can be replaced.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/pdiddy/wiki-nlp/internal/annotate"
	"github.com/pdiddy/wiki-nlp/internal/export"
	"github.com/pdiddy/wiki-nlp/internal/store"
	"github.com/pdiddy/wiki-nlp/internal/table"
	"github.com/pdiddy/wiki-nlp/pkg/types"
)

var (
	// ErrEmptyQuery is returned for a blank search term.
	ErrEmptyQuery = errors.New("search term must not be empty")

	// ErrNotFound is returned when the search has no candidates.
	ErrNotFound = errors.New("no pages found")
)

// Options controls a single run.
type Options struct {
	// ShowAll prints every row instead of the truncated view.
	ShowAll bool

	// Save writes the table to OutputDir.
	Save bool

	// Format is the save format (default csv).
	Format types.ExportFormat

	// OutputDir is where the table is saved (default ".").
	OutputDir string

	// MaxRows and MinRows bound the truncated view.
	MaxRows int
	MinRows int

	// Model names the annotation model.
	Model string

	// Language is recorded with the run.
	Language string
}

func (o Options) renderOptions() table.RenderOptions {
	if o.ShowAll {
		return table.AllRows()
	}
	return table.RenderOptions{MaxRows: o.MaxRows, MinRows: o.MinRows}
}

// Result describes a completed run.
type Result struct {
	Term       string
	Candidates []string
	Article    types.Article
	Annotation types.Annotation
	Table      *table.Table
	SavedPath  string
	RunID      int64
}

// Runner executes pipeline runs.
type Runner struct {
	source   ArticleSource
	models   ModelProvider
	factory  AnnotatorFactory
	recorder Recorder
	out      io.Writer

	notice *color.Color
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRecorder stores every completed run with rec.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// NewRunner returns a Runner printing progress and the table to out.
func NewRunner(source ArticleSource, models ModelProvider, factory AnnotatorFactory, out io.Writer, opts ...RunnerOption) *Runner {
	r := &Runner{
		source:  source,
		models:  models,
		factory: factory,
		out:     out,
		notice:  color.New(color.FgYellow),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run searches for term, annotates the first matching article, prints the
// table and saves it when opts.Save is set.
func (r *Runner) Run(ctx context.Context, term string, opts Options) (*Result, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyQuery
	}

	res := &Result{Term: term}

	article, candidates, err := r.fetchArticle(ctx, term)
	if err != nil {
		return nil, err
	}
	res.Article, res.Candidates = article, candidates

	annotator, err := r.loadAnnotator(ctx, opts.Model)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(r.out, "Processing corpus")
	tokens, err := annotator.Annotate(ctx, article.Content)
	if err != nil {
		return nil, fmt.Errorf("annotating %q: %w", article.Title, err)
	}
	slog.Debug("annotated article", "title", article.Title, "tokens", len(tokens), "model", annotator.Name())

	res.Annotation = types.Annotation{Model: annotator.Name(), Tokens: tokens}
	res.Table = table.FromAnnotation(tokens)

	if err := table.Render(r.out, res.Table, opts.renderOptions()); err != nil {
		return nil, fmt.Errorf("printing table: %w", err)
	}

	if opts.Save {
		path, err := export.Write(opts.OutputDir, term, opts.Format, res.Table)
		if err != nil {
			return nil, fmt.Errorf("saving table: %w", err)
		}
		res.SavedPath = path
		color.New(color.FgGreen).Fprintf(r.out, "Saved dataframe to %s\n", path)
	}

	if r.recorder != nil {
		id, err := r.recorder.Record(ctx, store.Run{
			Term:      term,
			Title:     article.Title,
			URL:       article.URL,
			Language:  opts.Language,
			Model:     annotator.Name(),
			SavedPath: res.SavedPath,
		}, tokens)
		if err != nil {
			slog.Warn("recording run failed", "term", term, "error", err)
		} else {
			res.RunID = id
		}
	}

	return res, nil
}

// fetchArticle selects the first search candidate and fetches it.
func (r *Runner) fetchArticle(ctx context.Context, term string) (types.Article, []string, error) {
	candidates, err := r.source.Search(ctx, term)
	if err != nil {
		return types.Article{}, nil, fmt.Errorf("searching for %q: %w", term, err)
	}
	slog.Debug("search finished", "term", term, "candidates", len(candidates))

	if len(candidates) == 0 {
		return types.Article{}, nil, fmt.Errorf("%w for %q", ErrNotFound, term)
	}
	if len(candidates) > 1 {
		r.notice.Fprintf(r.out, "Found multiple options for %q, using %q. Other options: %s\n",
			term, candidates[0], formatOptions(candidates[1:]))
	}

	article, err := r.source.Fetch(ctx, candidates[0])
	if err != nil {
		return types.Article{}, nil, fmt.Errorf("fetching %q: %w", candidates[0], err)
	}
	fmt.Fprintf(r.out, "Pulling information from %s\n", article.URL)
	return article, candidates, nil
}

func (r *Runner) loadAnnotator(ctx context.Context, name string) (annotate.Annotator, error) {
	path, err := r.models.Ensure(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("preparing model %q: %w", name, err)
	}
	a, err := r.factory.Load(name, path)
	if err != nil {
		return nil, fmt.Errorf("loading model %q: %w", name, err)
	}
	return a, nil
}

// formatOptions renders titles as a bracketed, quoted list.
func formatOptions(titles []string) string {
	quoted := make([]string, len(titles))
	for i, t := range titles {
		quoted[i] = "'" + t + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
