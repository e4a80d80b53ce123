// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/pdiddy/wiki-nlp/pkg/types"
)

// Lemmatizer maps a lowercased word form to its dictionary form, returning
// the input when the form is unknown. *golem.Lemmatizer satisfies it.
type Lemmatizer interface {
	Lemma(word string) string
}

// English tags text with the prose averaged perceptron and looks lemmas up
// in a golem dictionary.
type English struct {
	name string
	lem  Lemmatizer
}

// NewEnglish returns an English annotator using lem for lemmas.
func NewEnglish(name string, lem Lemmatizer) *English {
	return &English{name: name, lem: lem}
}

// Name returns the model name.
func (e *English) Name() string { return e.name }

// Annotate tokenizes and tags text. Proper nouns, numbers, punctuation and
// symbols keep their surface form as lemma; other tokens are lowercased
// before lookup.
func (e *English) Annotate(ctx context.Context, text string) ([]types.AnnotatedToken, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(strings.ToValidUTF8(text, "\uFFFD"),
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tagging text: %w", err)
	}

	toks := doc.Tokens()
	out := make([]types.AnnotatedToken, 0, len(toks))
	for i, tok := range toks {
		if i%4096 == 0 {
			if err := checkContext(ctx); err != nil {
				return nil, err
			}
		}
		if strings.TrimSpace(tok.Text) == "" {
			continue
		}
		out = append(out, e.annotateToken(tok.Text, tok.Tag))
	}
	return out, nil
}

func (e *English) annotateToken(text, tag string) types.AnnotatedToken {
	text = strings.ToValidUTF8(text, "\uFFFD")
	pos := UniversalFromPenn(tag)

	lemma := text
	switch {
	case pos == PROPN, pos == NUM, pos == PUNCT, pos == SYM:
	case tag == "POS":
		// Possessive clitic.
	default:
		lemma = e.lookup(text, pos)
	}

	// Forms of "be" are auxiliaries in the universal scheme.
	if pos == VERB && lemma == "be" {
		pos = AUX
	}

	return types.AnnotatedToken{Text: text, Lemma: lemma, POS: pos, Tag: tag}
}

// lookup returns the dictionary lemma of text. The English pack maps
// ordinals to digits and carries a byte order mark on its first entry, so
// both are rejected in favor of the lowercased surface.
func (e *English) lookup(text, pos string) string {
	lower := strings.ToLower(text)
	lemma := strings.ReplaceAll(e.lem.Lemma(lower), "\ufeff", "")
	if lemma == "" {
		return lower
	}
	if pos != NUM && !strings.ContainsAny(text, "0123456789") && isDigits(lemma) {
		return lower
	}
	return lemma
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
