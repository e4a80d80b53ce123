// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the wiki-nlp pipeline:
// the fetched Article, the per-token annotation, and configuration.
package types

import "time"

// Article is the text content of an encyclopedia page plus its canonical
// locator. It is created once per run from a search result and never mutated.
type Article struct {
	// Title is the page title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// PageID is the source's numeric page identifier.
	PageID int `json:"page_id" yaml:"page_id"`

	// URL is the canonical page URL.
	URL string `json:"url" yaml:"url"`

	// Content is the plain-text body of the page.
	Content string `json:"content" yaml:"content"`

	// Language is the wiki language code (e.g. "en").
	Language string `json:"language" yaml:"language"`

	// LastUpdated is the timestamp of the latest revision, when known.
	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}

// AnnotatedToken is one unit of article text with its derived attributes.
type AnnotatedToken struct {
	// Text is the surface form as it appears in the article.
	Text string `json:"text" yaml:"text"`

	// Lemma is the base or dictionary form.
	Lemma string `json:"lemma" yaml:"lemma"`

	// POS is the coarse universal part-of-speech tag (NOUN, VERB, PUNCT, ...).
	POS string `json:"pos" yaml:"pos"`

	// Tag is the fine-grained tag reported by the underlying tagger.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// Annotation is the ordered sequence of annotated tokens produced for one
// article by one model.
type Annotation struct {
	Model  string           `json:"model" yaml:"model"`
	Tokens []AnnotatedToken `json:"tokens" yaml:"tokens"`
}

// Len returns the number of annotated tokens.
func (a Annotation) Len() int {
	return len(a.Tokens)
}
