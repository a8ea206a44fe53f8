package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/aidlens/aidlens/internal/lexicon"
	"github.com/aidlens/aidlens/internal/model"
)

// TemporalExtractor locates the evidence month: the calendar month the text
// asserts as the timing of a delivery or commitment. A bounded window around
// the delivery anchor is searched first; the full body is the fallback.
// Only months inside the configured year range are accepted.
type TemporalExtractor struct {
	lex     *lexicon.Lexicon
	window  int
	yearMin int
	yearMax int

	// Numeric date forms shared across languages
	isoDate   *regexp.Regexp // 2023-03 or 2023-03-15
	slashDate *regexp.Regexp // 15.03.2023, 15/03/2023
	monthYear *regexp.Regexp // 03/2023
	year      *regexp.Regexp
}

// NewTemporalExtractor creates a temporal extractor
func NewTemporalExtractor(lex *lexicon.Lexicon, cfg model.EngineConfig) *TemporalExtractor {
	return &TemporalExtractor{
		lex:       lex,
		window:    cfg.AnchorWindow,
		yearMin:   cfg.YearMin,
		yearMax:   cfg.YearMax,
		isoDate:   regexp.MustCompile(`\b(20\d{2})-(\d{1,2})(?:-\d{1,2})?\b`),
		slashDate: regexp.MustCompile(`\b(\d{1,2})[./](\d{1,2})[./](20\d{2})\b`),
		monthYear: regexp.MustCompile(`\b(\d{1,2})/(20\d{2})\b`),
		year:      regexp.MustCompile(`20\d{2}`),
	}
}

type dateHit struct {
	year  int
	month int
	span  model.Span
}

// Extract returns the best month signal, or a zero signal when no date in
// range is found; the caller then falls back to the Context month hint.
func (t *TemporalExtractor) Extract(doc Normalized, anchor model.Span, lang string) model.MonthSignal {
	if doc.Empty() {
		return model.MonthSignal{}
	}

	if !anchor.IsZero() {
		lo, hi := clampWindow(anchor, t.window, len(doc.Text))
		hits := t.scan(doc, lo, hi, lang)
		if best, ok := closestHit(hits, anchor); ok {
			return model.MonthSignal{
				Month:    formatMonth(best.year, best.month),
				Span:     best.span,
				Strength: model.StrengthNearby,
			}
		}
	}

	hits := t.scan(doc, 0, len(doc.Text), lang)
	if len(hits) == 0 {
		return model.MonthSignal{}
	}
	best := hits[0]
	if !anchor.IsZero() {
		if b, ok := closestHit(hits, anchor); ok {
			best = b
		}
	}
	return model.MonthSignal{
		Month:    formatMonth(best.year, best.month),
		Span:     best.span,
		Strength: model.StrengthWeak,
	}
}

// scan collects all in-range date expressions in [lo, hi)
func (t *TemporalExtractor) scan(doc Normalized, lo, hi int, lang string) []dateHit {
	region := doc.Text[lo:hi]
	lowerRegion := doc.Lower[lo:hi]
	var hits []dateHit

	for _, m := range t.isoDate.FindAllStringSubmatchIndex(region, -1) {
		year := atoi(region[m[2]:m[3]])
		month := atoi(region[m[4]:m[5]])
		hits = t.append(hits, year, month, lo+m[0], lo+m[1])
	}
	for _, m := range t.slashDate.FindAllStringSubmatchIndex(region, -1) {
		month := atoi(region[m[4]:m[5]])
		year := atoi(region[m[6]:m[7]])
		hits = t.append(hits, year, month, lo+m[0], lo+m[1])
	}
	for _, m := range t.monthYear.FindAllStringSubmatchIndex(region, -1) {
		month := atoi(region[m[2]:m[3]])
		year := atoi(region[m[4]:m[5]])
		hits = t.append(hits, year, month, lo+m[0], lo+m[1])
	}

	hits = append(hits, t.scanMonthNames(lowerRegion, lo, lang)...)

	// Document order keeps selection deterministic regardless of table iteration
	sort.Slice(hits, func(i, j int) bool { return hits[i].span.Start < hits[j].span.Start })
	return hits
}

// scanMonthNames matches "<month name> ... <year>" with the month tables for
// the document language plus English.
func (t *TemporalExtractor) scanMonthNames(lowerRegion string, offset int, lang string) []dateHit {
	months := mergedMonths(t.lex, lang)

	var hits []dateHit
	for name, month := range months {
		from := 0
		for {
			idx := indexWord(lowerRegion[from:], name)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(name)

			// A year within a short distance on either side completes the date
			lo := start - 12
			if lo < 0 {
				lo = 0
			}
			hi := end + 12
			if hi > len(lowerRegion) {
				hi = len(lowerRegion)
			}
			if loc := t.year.FindStringIndex(lowerRegion[lo:hi]); loc != nil {
				year := atoi(lowerRegion[lo+loc[0] : lo+loc[1]])
				hits = t.append(hits, year, month, offset+start, offset+end)
			}
			from = end
		}
	}
	return hits
}

func (t *TemporalExtractor) append(hits []dateHit, year, month, start, end int) []dateHit {
	if month < 1 || month > 12 {
		return hits
	}
	if year < t.yearMin || year > t.yearMax {
		return hits
	}
	return append(hits, dateHit{year: year, month: month, span: model.Span{Start: start, End: end}})
}

func mergedMonths(lex *lexicon.Lexicon, lang string) map[string]int {
	out := make(map[string]int)
	for name, m := range lex.ForLanguage("en").Months {
		out[name] = m
	}
	for name, m := range lex.ForLanguage(lang).Months {
		out[name] = m
	}
	return out
}

func closestHit(hits []dateHit, anchor model.Span) (dateHit, bool) {
	if len(hits) == 0 {
		return dateHit{}, false
	}
	best := hits[0]
	bestDist := best.span.DistanceTo(anchor)
	for _, h := range hits[1:] {
		if d := h.span.DistanceTo(anchor); d < bestDist {
			best = h
			bestDist = d
		}
	}
	return best, true
}

func clampWindow(anchor model.Span, window, max int) (int, int) {
	lo := anchor.Start - window
	if lo < 0 {
		lo = 0
	}
	hi := anchor.End + window
	if hi > max {
		hi = max
	}
	return lo, hi
}

func formatMonth(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// indexWord finds a word-bounded occurrence of needle in haystack
func indexWord(haystack, needle string) int {
	from := 0
	for from < len(haystack) {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return -1
		}
		start := from + idx
		if isWordBounded(haystack, start, start+len(needle)) {
			return start
		}
		from = start + 1
	}
	return -1
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
