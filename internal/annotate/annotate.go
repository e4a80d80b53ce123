// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate turns article text into tokens tagged with a lemma and a
// universal part-of-speech. English uses a perceptron tagger with a
// dictionary lemmatizer; Japanese uses a morphological analyzer.
package annotate

import (
	"context"
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"

	"github.com/pdiddy/wiki-nlp/internal/model"
	"github.com/pdiddy/wiki-nlp/pkg/types"
)

//go:generate mockgen -source=annotate.go -destination=../mocks/annotate/mock_annotate.go -package=mock_annotate

// Annotator produces the ordered token annotation for a text.
type Annotator interface {
	// Name returns the model name this annotator was loaded from.
	Name() string

	// Annotate tokenizes text and tags every token with its lemma and POS.
	Annotate(ctx context.Context, text string) ([]types.AnnotatedToken, error)
}

// Factory builds annotators from model names and the local paths returned
// by model.Manager.Ensure.
type Factory struct{}

// Load returns the annotator for name. Built-in names select an embedded
// resource; any other name is a lemma dictionary file at path used with the
// English tagger.
func (Factory) Load(name, path string) (Annotator, error) {
	switch name {
	case model.BuiltinPrefix + "en":
		lem, err := golem.New(en.New())
		if err != nil {
			return nil, fmt.Errorf("loading built-in English lemmatizer: %w", err)
		}
		return NewEnglish(name, lem), nil
	case model.BuiltinPrefix + "ja":
		return NewJapanese(name)
	}

	if model.IsBuiltin(name) {
		return nil, fmt.Errorf("%w: no built-in model %q (available: %s)",
			model.ErrUnknownModel, name, strings.Join(Builtins(), ", "))
	}
	if path == "" {
		return nil, fmt.Errorf("%w: model %q has no local file", model.ErrUnknownModel, name)
	}
	lem, err := golem.New(NewFilePack(path, name))
	if err != nil {
		return nil, fmt.Errorf("loading lemma dictionary %s: %w", path, err)
	}
	return NewEnglish(name, lem), nil
}

// Builtins lists the model names compiled into the binary.
func Builtins() []string {
	return []string{model.BuiltinPrefix + "en", model.BuiltinPrefix + "ja"}
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("annotation cancelled: %w", err)
	}
	return nil
}
