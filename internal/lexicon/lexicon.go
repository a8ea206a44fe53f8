// Package lexicon holds the curated lexical tables the extractors scan with:
// delivery/announcement verbs, month names, scale words and currency tags,
// keyed by language. Tables are flat YAML, embedded by default and overridable
// from disk, validated once at load.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var embedded []byte

// LanguageSet holds the per-language phrase tables
type LanguageSet struct {
	DeliveryVerbs     []string       `yaml:"delivery_verbs"`
	AnnouncementVerbs []string       `yaml:"announcement_verbs"`
	Months            map[string]int `yaml:"months"`
}

// Lexicon is the full loaded table set. Read-only after Load.
type Lexicon struct {
	Languages       map[string]LanguageSet `yaml:"languages"`
	Multipliers     map[string]float64     `yaml:"multipliers"`
	CurrencySymbols map[string]string      `yaml:"currency_symbols"`
	CurrencyWords   map[string]string      `yaml:"currency_words"`
	UnitNouns       []string               `yaml:"unit_nouns"`

	matcher language.Matcher
	tags    []string
}

// Load reads and validates a lexicon. An empty path loads the embedded tables.
// A malformed lexicon is a configuration error and must stop the run.
func Load(path string) (*Lexicon, error) {
	data := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read lexicon: %w", err)
		}
		data = b
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if err := lex.validate(); err != nil {
		return nil, fmt.Errorf("validate lexicon: %w", err)
	}

	// Build a BCP-47 matcher so "en-GB" or "de-AT" resolve to a table
	var tags []language.Tag
	for code := range lex.Languages {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("validate lexicon: bad language code %q: %w", code, err)
		}
		tags = append(tags, tag)
		lex.tags = append(lex.tags, code)
	}
	lex.matcher = language.NewMatcher(tags)

	return &lex, nil
}

func (l *Lexicon) validate() error {
	if len(l.Languages) == 0 {
		return fmt.Errorf("no languages defined")
	}
	if _, ok := l.Languages["en"]; !ok {
		return fmt.Errorf("language %q is required as the fallback", "en")
	}
	for code, set := range l.Languages {
		if len(set.DeliveryVerbs) == 0 {
			return fmt.Errorf("language %q: no delivery verbs", code)
		}
		for name, m := range set.Months {
			if m < 1 || m > 12 {
				return fmt.Errorf("language %q: month %q maps to %d", code, name, m)
			}
		}
	}
	for word, mult := range l.Multipliers {
		if mult <= 0 {
			return fmt.Errorf("multiplier %q is %v", word, mult)
		}
	}
	for tag, code := range l.CurrencySymbols {
		if len(code) != 3 {
			return fmt.Errorf("currency symbol %q maps to non-ISO code %q", tag, code)
		}
	}
	for word, code := range l.CurrencyWords {
		if len(code) != 3 {
			return fmt.Errorf("currency word %q maps to non-ISO code %q", word, code)
		}
	}
	if len(l.UnitNouns) == 0 {
		return fmt.Errorf("no unit nouns defined")
	}
	return nil
}

// ForLanguage resolves a language code to its phrase tables, falling back
// to English when the code is unknown or empty.
func (l *Lexicon) ForLanguage(code string) LanguageSet {
	if code == "" {
		return l.Languages["en"]
	}
	tag, err := language.Parse(code)
	if err != nil {
		return l.Languages["en"]
	}
	_, idx, conf := l.matcher.Match(tag)
	if conf == language.No {
		return l.Languages["en"]
	}
	return l.Languages[l.tags[idx]]
}

// Currency normalizes a matched currency token to an ISO 4217 code.
// Returns empty when the token is not recognizable.
func (l *Lexicon) Currency(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return ""
	}
	if code, ok := l.CurrencySymbols[t]; ok {
		return code
	}
	if code, ok := l.CurrencyWords[t]; ok {
		return code
	}
	if len(t) == 3 && isAlpha(t) {
		return strings.ToUpper(t)
	}
	return ""
}

// Multiplier resolves a scale word, returning 1 for unknown or absent tokens
func (l *Lexicon) Multiplier(token string) float64 {
	if token == "" {
		return 1
	}
	t := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(token)), ".")
	if m, ok := l.Multipliers[t]; ok {
		return m
	}
	if m, ok := l.Multipliers[t+"."]; ok {
		return m
	}
	return 1
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
