// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import "strings"

// Universal part-of-speech tags.
const (
	ADJ   = "ADJ"
	ADP   = "ADP"
	ADV   = "ADV"
	AUX   = "AUX"
	CCONJ = "CCONJ"
	DET   = "DET"
	INTJ  = "INTJ"
	NOUN  = "NOUN"
	NUM   = "NUM"
	PART  = "PART"
	PRON  = "PRON"
	PROPN = "PROPN"
	PUNCT = "PUNCT"
	SCONJ = "SCONJ"
	SYM   = "SYM"
	VERB  = "VERB"
	X     = "X"
)

// pennToUniversal maps Penn Treebank tags to universal POS.
var pennToUniversal = map[string]string{
	"CC":   CCONJ,
	"CD":   NUM,
	"DT":   DET,
	"EX":   PRON,
	"FW":   X,
	"IN":   ADP,
	"JJ":   ADJ,
	"JJR":  ADJ,
	"JJS":  ADJ,
	"LS":   X,
	"MD":   AUX,
	"NN":   NOUN,
	"NNS":  NOUN,
	"NNP":  PROPN,
	"NNPS": PROPN,
	"PDT":  DET,
	"POS":  PART,
	"PRP":  PRON,
	"PRP$": PRON,
	"RB":   ADV,
	"RBR":  ADV,
	"RBS":  ADV,
	"RP":   ADP,
	"SYM":  SYM,
	"TO":   PART,
	"UH":   INTJ,
	"VB":   VERB,
	"VBD":  VERB,
	"VBG":  VERB,
	"VBN":  VERB,
	"VBP":  VERB,
	"VBZ":  VERB,
	"WDT":  PRON,
	"WP":   PRON,
	"WP$":  PRON,
	"WRB":  ADV,
	"$":    SYM,
	"#":    SYM,
	",":    PUNCT,
	".":    PUNCT,
	":":    PUNCT,
	"(":    PUNCT,
	")":    PUNCT,
	"``":   PUNCT,
	"''":   PUNCT,
}

// UniversalFromPenn converts a Penn Treebank tag. Unknown tags map to X,
// except all-punctuation tags which map to PUNCT.
func UniversalFromPenn(tag string) string {
	if u, ok := pennToUniversal[tag]; ok {
		return u
	}
	if tag != "" && strings.Trim(tag, ".,:;!?()[]{}\"'`-") == "" {
		return PUNCT
	}
	return X
}

// ipaToUniversal maps the top-level IPA dictionary POS to universal POS.
var ipaToUniversal = map[string]string{
	"名詞":   NOUN,
	"動詞":   VERB,
	"形容詞":  ADJ,
	"副詞":   ADV,
	"助詞":   ADP,
	"助動詞":  AUX,
	"連体詞":  DET,
	"接続詞":  CCONJ,
	"感動詞":  INTJ,
	"接頭詞":  X,
	"フィラー": INTJ,
	"その他":  X,
}

// UniversalFromIPA converts an IPA POS chain (top level first) to universal POS.
func UniversalFromIPA(pos []string) string {
	if len(pos) == 0 {
		return X
	}
	sub := ""
	if len(pos) > 1 {
		sub = pos[1]
	}

	switch pos[0] {
	case "名詞":
		switch sub {
		case "固有名詞":
			return PROPN
		case "代名詞":
			return PRON
		case "数":
			return NUM
		}
	case "助詞":
		if sub == "接続助詞" {
			return SCONJ
		}
	case "記号":
		switch sub {
		case "句点", "読点", "括弧開", "括弧閉":
			return PUNCT
		}
		return SYM
	}

	if u, ok := ipaToUniversal[pos[0]]; ok {
		return u
	}
	return X
}
