// Package extract implements the signal extractors that turn normalized
// document text into candidate status, month, item, quantity and money
// signals. Extractors scan independently and report positional spans; the
// pipeline assembler reconciles them into one Fact.
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/aidlens/aidlens/internal/model"
)

// Normalized is a canonicalized text buffer with sentence boundaries.
// Offsets in extractor signals refer to this buffer.
type Normalized struct {
	Text      string       // Whitespace-collapsed text
	Lower     string       // Lowercased copy, byte-aligned with Text
	Sentences []model.Span // Sentence boundaries, monotonic
}

// Empty reports whether normalization produced no usable text.
// Downstream extractors treat an empty buffer as "no evidence found".
func (n Normalized) Empty() bool { return n.Text == "" }

// Normalizer canonicalizes raw document text. It never fails: malformed
// input degrades to an empty buffer with a debug-level signal.
type Normalizer struct {
	log *zap.Logger
}

// NewNormalizer creates a normalizer
func NewNormalizer(log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{log: log}
}

// Maximum tolerated share of invalid bytes before the buffer is discarded
const maxInvalidShare = 0.2

// Normalize collapses redundant whitespace and indexes sentence boundaries.
// On decode failure it returns an empty buffer and logs NormalizationFailed;
// the failure is non-fatal by contract.
func (n *Normalizer) Normalize(raw string) Normalized {
	if raw == "" {
		return Normalized{}
	}

	if !utf8.ValidString(raw) {
		invalid := countInvalidBytes(raw)
		if float64(invalid) > maxInvalidShare*float64(len(raw)) {
			n.log.Debug("NormalizationFailed: text is not decodable",
				zap.Int("bytes", len(raw)), zap.Int("invalid", invalid))
			return Normalized{}
		}
		raw = strings.ToValidUTF8(raw, " ")
	}

	var buf strings.Builder
	buf.Grow(len(raw))
	inSpace := false
	for _, r := range raw {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			inSpace = true
			continue
		}
		if inSpace && buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		inSpace = false
		buf.WriteRune(r)
	}

	text := buf.String()
	return Normalized{
		Text:      text,
		Lower:     lowerSameWidth(text),
		Sentences: sentenceSpans(text),
	}
}

// lowerSameWidth lowercases rune by rune, keeping any rune whose lowercase
// form has a different UTF-8 width (Kelvin sign, capital sharp s). Text and
// Lower share byte offsets, so a span computed against either buffer is
// valid in the other.
func lowerSameWidth(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		l := unicode.ToLower(r)
		if utf8.RuneLen(l) != utf8.RuneLen(r) {
			l = r
		}
		b.WriteRune(l)
	}
	return b.String()
}

func countInvalidBytes(s string) int {
	invalid := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		i += size
	}
	return invalid
}

// sentenceSpans indexes sentence boundaries with a simple terminator
// heuristic. Spans are monotonic and cover only plausible sentences.
func sentenceSpans(text string) []model.Span {
	var spans []model.Span
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		// Terminator must be followed by a space to avoid abbreviations
		if i+1 < len(text) && text[i+1] != ' ' {
			continue
		}
		if i+1 > start {
			spans = append(spans, model.Span{Start: start, End: i + 1})
		}
		start = i + 2
		if start > len(text) {
			start = len(text)
		}
	}
	if start < len(text) {
		spans = append(spans, model.Span{Start: start, End: len(text)})
	}
	return spans
}
