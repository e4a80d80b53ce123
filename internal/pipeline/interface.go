// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"

	"github.com/pdiddy/wiki-nlp/internal/annotate"
	"github.com/pdiddy/wiki-nlp/internal/store"
	"github.com/pdiddy/wiki-nlp/pkg/types"
)

//go:generate mockgen -source=interface.go -destination=../mocks/pipeline/mock_interface.go -package=mock_pipeline

// ArticleSource finds and fetches encyclopedia articles.
type ArticleSource interface {
	// Search returns candidate titles for term in relevance order.
	Search(ctx context.Context, term string) ([]string, error)

	// Fetch returns the plain-text article for title.
	Fetch(ctx context.Context, title string) (types.Article, error)
}

// ModelProvider makes a named model available locally.
type ModelProvider interface {
	Ensure(ctx context.Context, name string) (string, error)
}

// AnnotatorFactory loads an annotator from a model name and local path.
type AnnotatorFactory interface {
	Load(name, path string) (annotate.Annotator, error)
}

// Recorder persists a completed run.
type Recorder interface {
	Record(ctx context.Context, run store.Run, tokens []types.AnnotatedToken) (int64, error)
}
