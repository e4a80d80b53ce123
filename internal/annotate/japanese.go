// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/pdiddy/wiki-nlp/pkg/types"
)

// Japanese segments text with kagome and the IPA dictionary.
type Japanese struct {
	name string
	tok  *tokenizer.Tokenizer
}

// NewJapanese loads the IPA dictionary and returns a Japanese annotator.
func NewJapanese(name string) (*Japanese, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("loading IPA dictionary: %w", err)
	}
	return &Japanese{name: name, tok: t}, nil
}

// Name returns the model name.
func (j *Japanese) Name() string { return j.name }

// Annotate segments text into morphemes. The lemma is the dictionary base
// form, or the surface when the dictionary has none. Whitespace morphemes
// are dropped.
func (j *Japanese) Annotate(ctx context.Context, text string) ([]types.AnnotatedToken, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	ktoks := j.tok.Tokenize(text)
	out := make([]types.AnnotatedToken, 0, len(ktoks))
	for _, kt := range ktoks {
		if strings.TrimSpace(kt.Surface) == "" {
			continue
		}
		pos := kt.POS()
		lemma, ok := kt.BaseForm()
		if !ok || lemma == "" || lemma == "*" {
			lemma = kt.Surface
		}
		out = append(out, types.AnnotatedToken{
			Text:  kt.Surface,
			Lemma: lemma,
			POS:   UniversalFromIPA(pos),
			Tag:   strings.Join(pos, ","),
		})
	}
	return out, nil
}
