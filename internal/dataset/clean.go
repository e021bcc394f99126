package dataset

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/medqa/internal/model"
)

var whitespace = regexp.MustCompile(`\s+`)

// Cleaner filters and normalizes scraped records
type Cleaner struct {
	spam   *regexp.Regexp
	min    int
	max    int
	drop   map[model.Category]bool
	seen   map[string]bool
	Counts model.Counter
}

// NewCleaner compiles the spam pattern (case-insensitive) and prepares
// an empty dedup set
func NewCleaner(cfg model.CleanConfig) (*Cleaner, error) {
	c := &Cleaner{
		min:    cfg.MinLength,
		max:    cfg.MaxLength,
		drop:   make(map[model.Category]bool),
		seen:   make(map[string]bool),
		Counts: model.Counter{},
	}
	if cfg.SpamPattern != "" {
		re, err := regexp.Compile("(?i)" + cfg.SpamPattern)
		if err != nil {
			return nil, fmt.Errorf("compile spam pattern: %w", err)
		}
		c.spam = re
	}
	for _, d := range cfg.DropCategory {
		cat, _ := model.ParseCategory(d)
		c.drop[cat] = true
	}
	return c, nil
}

// CleanText strips spam fragments and collapses whitespace
func (c *Cleaner) CleanText(s string) string {
	if c.spam != nil {
		s = c.spam.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Clean decides one record. The returned record carries the cleaned text.
func (c *Cleaner) Clean(r model.Record) (model.Record, model.Outcome) {
	out := c.decide(&r)
	c.Counts.Add(out)
	return r, out
}

func (c *Cleaner) decide(r *model.Record) model.Outcome {
	if r.Text == "" || r.Category == "" {
		return model.Skip(model.SkipMissingField, "noi_dung or muc empty")
	}
	if cat, _ := model.ParseCategory(r.Category); c.drop[cat] {
		return model.Skip(model.SkipIrrelevant, r.Category)
	}

	text := c.CleanText(r.Text)
	n := utf8.RuneCountInString(text)
	if n <= c.min {
		return model.Skip(model.SkipTooShort, fmt.Sprintf("%d runes", n))
	}
	if c.max > 0 && n >= c.max {
		return model.Skip(model.SkipTooLong, fmt.Sprintf("%d runes", n))
	}
	if c.seen[text] {
		return model.Skip(model.SkipDuplicate, "")
	}
	c.seen[text] = true
	r.Text = text
	return model.Outcome{}
}

// CleanFile reads records from in and writes the accepted ones to out
func (c *Cleaner) CleanFile(in, out string) error {
	w, err := OpenWriter(out, true)
	if err != nil {
		return err
	}

	err = ReadLines(in, func(l Line) error {
		var r model.Record
		if json.Unmarshal(l.Raw, &r) != nil {
			c.Counts.Add(model.Skip(model.SkipMalformed, fmt.Sprintf("line %d", l.Number)))
			return nil
		}
		cleaned, outcome := c.Clean(r)
		if !outcome.OK() {
			return nil
		}
		return w.Write(cleaned)
	})
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}
