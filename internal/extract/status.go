package extract

import (
	"strings"

	"github.com/aidlens/aidlens/internal/lexicon"
	"github.com/aidlens/aidlens/internal/model"
)

// StatusClassifier decides whether text reports a completed delivery or
// merely an announcement. Presence of any delivery verb wins over any number
// of announcement phrases; the earliest delivery match becomes the anchor
// other extractors scope their search windows around.
type StatusClassifier struct {
	lex *lexicon.Lexicon
}

// NewStatusClassifier creates a status classifier
func NewStatusClassifier(lex *lexicon.Lexicon) *StatusClassifier {
	return &StatusClassifier{lex: lex}
}

// Classify scans the buffer with the phrase tables for the given language.
// English tables are always scanned too: coverage of foreign donors in
// English-language wires is the common case.
func (c *StatusClassifier) Classify(doc Normalized, lang string) model.StatusSignal {
	if doc.Empty() {
		return model.StatusSignal{Status: model.StatusCommitment}
	}

	delivery := c.phrases(lang, func(s lexicon.LanguageSet) []string { return s.DeliveryVerbs })
	if span, phrase, ok := earliestMatch(doc.Lower, delivery); ok {
		return model.StatusSignal{
			Status:  model.StatusDelivered,
			Anchor:  span,
			Matched: phrase,
		}
	}

	announcement := c.phrases(lang, func(s lexicon.LanguageSet) []string { return s.AnnouncementVerbs })
	if _, phrase, ok := earliestMatch(doc.Lower, announcement); ok {
		return model.StatusSignal{Status: model.StatusCommitment, Matched: phrase}
	}

	return model.StatusSignal{Status: model.StatusCommitment}
}

func (c *StatusClassifier) phrases(lang string, pick func(lexicon.LanguageSet) []string) []string {
	set := pick(c.lex.ForLanguage(lang))
	en := pick(c.lex.ForLanguage("en"))

	seen := make(map[string]bool, len(set)+len(en))
	out := make([]string, 0, len(set)+len(en))
	for _, p := range append(append([]string{}, set...), en...) {
		p = strings.ToLower(p)
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// earliestMatch finds the phrase occurring first in the buffer.
// Word-boundary checks keep "shipped" from matching inside "worshipped".
func earliestMatch(lower string, phrases []string) (model.Span, string, bool) {
	best := model.Span{}
	bestPhrase := ""
	found := false
	for _, p := range phrases {
		from := 0
		for {
			idx := strings.Index(lower[from:], p)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(p)
			if isWordBounded(lower, start, end) {
				if !found || start < best.Start {
					best = model.Span{Start: start, End: end}
					bestPhrase = p
					found = true
				}
				break
			}
			from = start + 1
		}
	}
	return best, bestPhrase, found
}

func isWordBounded(s string, start, end int) bool {
	if start > 0 && isWordByte(s[start-1]) {
		return false
	}
	if end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
