package adapters

import (
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/ppiankov/medqa/internal/extract"
	"github.com/ppiankov/medqa/internal/model"
)

// GenericAdapter is the fallback adapter for unknown domains. It narrows
// the page with readability, then segments the article body.
type GenericAdapter struct {
	BaseAdapter
	segmenter *extract.Segmenter
	strategy  extract.RootStrategy
}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter(seg *extract.Segmenter) *GenericAdapter {
	if seg == nil {
		seg = extract.NewSegmenter()
	}
	strategy := extract.DefaultStrategy()
	strategy.Selector = "body"
	return &GenericAdapter{
		segmenter: seg,
		strategy:  strategy,
	}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(pageURL string) bool {
	return true
}

// Extract runs readability and segments what it keeps
func (a *GenericAdapter) Extract(rawHTML, pageURL string) (*Page, model.Outcome) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, model.Skip(model.SkipMalformed, err.Error())
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		return nil, model.Skip(model.SkipNoContent, err.Error())
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, model.Skip(model.SkipNoContent, "readability found no article")
	}

	doc, err := a.ParseHTML(article.Content)
	if err != nil {
		return nil, model.Skip(model.SkipMalformed, err.Error())
	}

	sections, ok := a.segmenter.Extract(doc, a.strategy)
	if !ok {
		return nil, model.Skip(model.SkipNoContent, "content root not found")
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = "Unknown"
	}
	meta := model.PageMeta{URL: pageURL, Title: title, Source: a.Name()}
	return emit(meta, sections)
}
