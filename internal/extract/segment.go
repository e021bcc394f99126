package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ppiankov/medqa/internal/model"
)

// Segmenter splits a content root into ordered category sections
type Segmenter struct {
	table       CategoryTable
	headings    map[string]bool
	blocks      map[string]bool
	boilerplate []string
	joiner      string
	itemPrefix  string
}

// Option configures a Segmenter
type Option func(*Segmenter)

// WithTable replaces the canonical category table
func WithTable(t CategoryTable) Option {
	return func(s *Segmenter) { s.table = t }
}

// WithHeadings sets the element names that open a new section
func WithHeadings(tags ...string) Option {
	return func(s *Segmenter) { s.headings = tagSet(tags) }
}

// WithBlocks sets the element names whose text is accumulated
func WithBlocks(tags ...string) Option {
	return func(s *Segmenter) { s.blocks = tagSet(tags) }
}

// WithBoilerplate sets the substrings that cause a block to be dropped
func WithBoilerplate(markers ...string) Option {
	return func(s *Segmenter) { s.boilerplate = markers }
}

// WithJoiner sets the separator between accumulated blocks
func WithJoiner(sep string) Option {
	return func(s *Segmenter) { s.joiner = sep }
}

// WithListPrefix prefixes list item text, e.g. "• "
func WithListPrefix(prefix string) Option {
	return func(s *Segmenter) { s.itemPrefix = prefix }
}

// NewSegmenter returns a segmenter using the default table, h2/h3 headings
// and p/ul/ol blocks. A whole list is one block.
func NewSegmenter(opts ...Option) *Segmenter {
	s := &Segmenter{
		table:       DefaultTable(),
		headings:    tagSet([]string{"h2", "h3"}),
		blocks:      tagSet([]string{"p", "ul", "ol"}),
		boilerplate: append([]string(nil), model.DefaultBoilerplate...),
		joiner:      " ",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the category table in use
func (s *Segmenter) Table() CategoryTable {
	return s.table
}

// Segment walks root in document order and returns its sections. A nil or
// empty root yields no sections. The root is not modified.
func (s *Segmenter) Segment(root *goquery.Selection) []model.Section {
	if root == nil || root.Length() == 0 {
		return nil
	}

	var (
		sections []model.Section
		current  = model.CategoryOverview
		heading  string
		buf      []string
	)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		sections = append(sections, model.Section{
			Category: current,
			Heading:  heading,
			Text:     strings.Join(buf, s.joiner),
		})
		buf = buf[:0]
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		tag := n.Data
		switch {
		case s.headings[tag]:
			text := nodeText(n)
			if text == "" {
				return
			}
			flush()
			current = s.table.Classify(text)
			heading = text
			return
		case s.blocks[tag]:
			text := nodeText(n)
			if text == "" || s.isBoilerplate(text) {
				return
			}
			if tag == "li" && s.itemPrefix != "" {
				text = s.itemPrefix + text
			}
			buf = append(buf, text)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range root.First().Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	flush()
	return sections
}

// Extract locates the root with strategy, strips noise and segments it.
// ok=false means no content root was found.
func (s *Segmenter) Extract(doc *goquery.Document, strategy RootStrategy) ([]model.Section, bool) {
	root, ok := LocateRoot(doc, strategy)
	if !ok {
		return nil, false
	}
	root = root.Clone()
	StripNoise(root, strategy.Strip...)
	return s.Segment(root), true
}

func (s *Segmenter) isBoilerplate(text string) bool {
	for _, m := range s.boilerplate {
		if m != "" && strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func tagSet(tags []string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[strings.ToLower(t)] = true
	}
	return m
}
