// Package catalog loads the unit-cost catalog: canonical item entries with
// lexical patterns, per-unit costs in the reference currency, and useful-life
// classes for depreciation. The catalog is flat YAML so analysts can maintain
// it without code changes; a malformed catalog is fatal at load because every
// estimated value downstream depends on it.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// ErrCatalogMiss is returned when an item cannot be mapped to any entry
var ErrCatalogMiss = errors.New("item not in unit-cost catalog")

// Entry is one catalog row: an identifiable item class with valuation data
type Entry struct {
	Key       string   `yaml:"key"`
	Label     string   `yaml:"label"`
	Patterns  []string `yaml:"patterns"`
	UnitCost  float64  `yaml:"unit_cost"`
	LifeClass string   `yaml:"life_class"`

	compiled []*regexp.Regexp
}

// Catalog is the process-wide, read-only item catalog
type Catalog struct {
	Reference   string         `yaml:"reference_currency"`
	Entries     []Entry        `yaml:"items"`
	LifeClasses map[string]int `yaml:"life_classes"` // class name -> useful-life years

	byKey map[string]*Entry
}

// Load reads and validates a catalog. An empty path loads the embedded table.
func Load(path string) (*Catalog, error) {
	data := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := cat.compile(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return &cat, nil
}

func (c *Catalog) compile() error {
	if c.Reference == "" {
		return fmt.Errorf("reference_currency missing")
	}
	if len(c.Entries) == 0 {
		return fmt.Errorf("no items defined")
	}
	if len(c.LifeClasses) == 0 {
		return fmt.Errorf("no life classes defined")
	}
	c.byKey = make(map[string]*Entry, len(c.Entries))
	for i := range c.Entries {
		e := &c.Entries[i]
		if e.Key == "" || e.Label == "" {
			return fmt.Errorf("item %d: key and label are required", i)
		}
		if _, dup := c.byKey[e.Key]; dup {
			return fmt.Errorf("duplicate item key %q", e.Key)
		}
		if e.UnitCost < 0 {
			return fmt.Errorf("item %q: negative unit cost", e.Key)
		}
		if _, ok := c.LifeClasses[e.LifeClass]; !ok {
			return fmt.Errorf("item %q: unknown life class %q", e.Key, e.LifeClass)
		}
		if len(e.Patterns) == 0 {
			return fmt.Errorf("item %q: no patterns", e.Key)
		}
		for _, p := range e.Patterns {
			rx, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return fmt.Errorf("item %q: pattern %q: %w", e.Key, p, err)
			}
			e.compiled = append(e.compiled, rx)
		}
		c.byKey[e.Key] = e
	}
	for class, years := range c.LifeClasses {
		if years < 0 {
			return fmt.Errorf("life class %q: negative years", class)
		}
	}
	return nil
}

// Lookup returns the entry for a catalog key
func (c *Catalog) Lookup(key string) (*Entry, error) {
	if e, ok := c.byKey[key]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrCatalogMiss, key)
}

// Resolve maps free item text to the first matching catalog entry.
// Entry order in the YAML is the precedence order: specific systems first,
// generic categories last.
func (c *Catalog) Resolve(text string) (*Entry, error) {
	for i := range c.Entries {
		e := &c.Entries[i]
		for _, rx := range e.compiled {
			if rx.MatchString(text) {
				return e, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrCatalogMiss, text)
}

// Match locates every catalog item mentioned in the text, with positions.
// Used by the item extractor; each entry reports at most its first occurrence.
type Match struct {
	Entry *Entry
	Start int
	End   int
}

// MatchAll scans the text for catalog item mentions
func (c *Catalog) MatchAll(text string) []Match {
	var out []Match
	for i := range c.Entries {
		e := &c.Entries[i]
		for _, rx := range e.compiled {
			if loc := rx.FindStringIndex(text); loc != nil {
				out = append(out, Match{Entry: e, Start: loc[0], End: loc[1]})
				break
			}
		}
	}
	return out
}

// Life returns the useful-life years for an entry's class
func (c *Catalog) Life(e *Entry) int {
	return c.LifeClasses[e.LifeClass]
}
