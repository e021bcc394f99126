package adapters

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/medqa/internal/extract"
	"github.com/ppiankov/medqa/internal/model"
)

// Page is what an adapter pulls out of one article
type Page struct {
	Meta     model.PageMeta
	Sections []model.Section
}

// Adapter defines the interface for site-specific extractors
type Adapter interface {
	// Name returns the adapter name, also used as the record source
	Name() string

	// CanHandle checks if this adapter can handle the given URL
	CanHandle(pageURL string) bool

	// Extract parses an article page. A non-OK outcome means the page
	// is skipped; it is never an error.
	Extract(rawHTML, pageURL string) (*Page, model.Outcome)
}

// Indexer is implemented by adapters that can enumerate their articles
type Indexer interface {
	// IndexURLs returns the listing pages to crawl
	IndexURLs() []string

	// ArticleLinks returns article URLs found on one listing page
	ArticleLinks(doc *goquery.Document, pageURL string) []string
}

// Registry manages site adapters
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a registry with the built-in site adapters
func NewRegistry(seg *extract.Segmenter) *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	registry.Register(NewVinmecAdapter(seg))
	registry.Register(NewMedlatecAdapter(seg))
	registry.Register(NewMedlinePlusAdapter())

	// Set generic adapter as fallback
	registry.generic = NewGenericAdapter(seg)

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the adapter for the given URL
func (r *Registry) FindAdapter(pageURL string) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(pageURL) {
			return adapter
		}
	}

	// Fall back to generic adapter
	return r.generic
}

// Lookup returns an adapter by name
func (r *Registry) Lookup(name string) (Adapter, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, adapter := range r.adapters {
		if adapter.Name() == name {
			return adapter, true
		}
	}
	if r.generic != nil && r.generic.Name() == name {
		return r.generic, true
	}
	return nil, false
}

// Names lists registered site adapters in registration order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		names = append(names, adapter.Name())
	}
	return names
}

// BaseAdapter provides common functionality for adapters
type BaseAdapter struct{}

// ParseHTML parses an HTML string into a goquery document
func (b *BaseAdapter) ParseHTML(htmlContent string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
}

// Text returns the whitespace-normalized text of the first match of selector
func (b *BaseAdapter) Text(doc *goquery.Document, selector string) string {
	return extract.NormalizeSpace(doc.Find(selector).First().Text())
}

// HostMatches reports whether pageURL's host is domain or a subdomain of it
func (b *BaseAdapter) HostMatches(pageURL, domain string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// emit builds a page or a no-content skip when nothing was segmented
func emit(meta model.PageMeta, sections []model.Section) (*Page, model.Outcome) {
	if len(sections) == 0 {
		return nil, model.Skip(model.SkipNoContent, "no sections")
	}
	return &Page{Meta: meta, Sections: sections}, model.Outcome{}
}
