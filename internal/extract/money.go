package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/aidlens/aidlens/internal/lexicon"
	"github.com/aidlens/aidlens/internal/model"
)

// MoneyExtractor locates currency-tagged numeric spans. Two independent
// patterns run over the buffer: a currency symbol preceding a number, and a
// number followed by a currency code or word. Both capture an optional scale
// word as a multiplier. All matches are collected; selection happens in
// Select so the policy stays auditable.
type MoneyExtractor struct {
	lex       *lexicon.Lexicon
	before    *regexp.Regexp
	after     *regexp.Regexp
	selection model.MoneySelection
}

// NewMoneyExtractor builds the scan patterns from the lexicon tables
func NewMoneyExtractor(lex *lexicon.Lexicon, selection model.MoneySelection) *MoneyExtractor {
	multAlts := alternates(keysOf(lex.Multipliers))
	symbolAlts := alternates(keysOf(lex.CurrencySymbols))
	wordAlts := alternates(keysOf(lex.CurrencyWords))

	num := `(\d{1,3}(?:[.,\x{00a0} ]\d{3})+|\d+)((?:[.,]\d+)?)`

	before := regexp.MustCompile(
		`(?i)(` + symbolAlts + `)\s*` + num + `(?:\s?(` + multAlts + `))?\b`)
	after := regexp.MustCompile(
		`(?i)\b` + num + `\s?(?:(` + multAlts + `)\s?)?(` + symbolAlts + `|` + wordAlts + `|[A-Za-z]{3})\b`)

	return &MoneyExtractor{lex: lex, before: before, after: after, selection: selection}
}

// Extract collects every money mention in the buffer. Re-running over
// identical text yields identical signals.
func (e *MoneyExtractor) Extract(doc Normalized) []model.MoneySignal {
	if doc.Empty() {
		return nil
	}
	var signals []model.MoneySignal

	for _, m := range e.before.FindAllStringSubmatchIndex(doc.Text, -1) {
		cur := e.lex.Currency(doc.Text[m[2]:m[3]])
		if cur == "" {
			continue
		}
		value := parseDecimal(doc.Text[m[4]:m[5]], group(doc.Text, m, 3))
		mult := e.lex.Multiplier(group(doc.Text, m, 4))
		signals = appendSignal(signals, value, mult, cur, doc.Text, m)
	}

	for _, m := range e.after.FindAllStringSubmatchIndex(doc.Text, -1) {
		tok := group(doc.Text, m, 4)
		cur := e.lex.Currency(tok)
		if cur == "" {
			continue
		}
		// A bare ISO code must appear uppercase in the source text, or
		// ordinary three-letter words would read as currencies
		if e.bareCode(tok) && tok != strings.ToUpper(tok) {
			continue
		}
		value := parseDecimal(doc.Text[m[2]:m[3]], group(doc.Text, m, 2))
		mult := e.lex.Multiplier(group(doc.Text, m, 3))
		signals = appendSignal(signals, value, mult, cur, doc.Text, m)
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Amount.Span.Start < signals[j].Amount.Span.Start
	})
	return signals
}

// Select resolves the dominant mention. Largest resolved value wins under
// the default policy (package totals dominate itemized figures); anchor
// proximity breaks ties, or drives selection outright under "nearest".
func (e *MoneyExtractor) Select(signals []model.MoneySignal, anchor model.Span) (model.MoneySignal, bool) {
	if len(signals) == 0 {
		return model.MoneySignal{}, false
	}

	best := signals[0]
	for _, s := range signals[1:] {
		if e.better(s, best, anchor) {
			best = s
		}
	}
	if best.Amount.Value <= 0 {
		return model.MoneySignal{}, false
	}
	return best, true
}

func (e *MoneyExtractor) bareCode(tok string) bool {
	t := strings.ToLower(tok)
	if _, ok := e.lex.CurrencySymbols[t]; ok {
		return false
	}
	if _, ok := e.lex.CurrencyWords[t]; ok {
		return false
	}
	return true
}

func (e *MoneyExtractor) better(a, b model.MoneySignal, anchor model.Span) bool {
	if e.selection == model.SelectNearest && !anchor.IsZero() {
		da := a.Amount.Span.DistanceTo(anchor)
		db := b.Amount.Span.DistanceTo(anchor)
		if da != db {
			return da < db
		}
		return a.Amount.Value > b.Amount.Value
	}

	if a.Amount.Value != b.Amount.Value {
		return a.Amount.Value > b.Amount.Value
	}
	if !anchor.IsZero() {
		return a.Amount.Span.DistanceTo(anchor) < b.Amount.Span.DistanceTo(anchor)
	}
	return false
}

func appendSignal(signals []model.MoneySignal, value, mult float64, cur, text string, m []int) []model.MoneySignal {
	if value <= 0 {
		return signals
	}
	span := model.Span{Start: m[0], End: m[1]}
	return append(signals, model.MoneySignal{
		Amount: model.MonetaryAmount{
			Value:      value * mult,
			Currency:   cur,
			Multiplier: mult,
			Span:       span,
		},
		Fragment: text[span.Start:span.End],
	})
}

// parseDecimal handles both separator conventions: "1,234.5" and "1.234,5"
func parseDecimal(intPart, fracPart string) float64 {
	s := intPart + fracPart
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// Single trailing comma group of 3 is a thousands separator
		if len(s)-lastComma-1 == 3 && strings.Count(s, ",") >= 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func group(text string, m []int, n int) string {
	if 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return text[m[2*n]:m[2*n+1]]
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// alternates builds a regex alternation, longest first so "us$" beats "$"
func alternates(keys []string) string {
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return strings.Join(quoted, "|")
}
