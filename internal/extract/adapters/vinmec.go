package adapters

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/medqa/internal/extract"
	"github.com/ppiankov/medqa/internal/model"
)

const vinmecIndexPrefix = "https://www.vinmec.com/vie/tra-cuu-benh/"

var titleSplitPattern = regexp.MustCompile(`[:|\-]`)

// VinmecAdapter extracts disease articles from vinmec.com
type VinmecAdapter struct {
	BaseAdapter
	segmenter *extract.Segmenter
	strategy  extract.RootStrategy
}

// NewVinmecAdapter creates a vinmec adapter. Pages carry no structural
// marker so the root is found by heading keywords.
func NewVinmecAdapter(seg *extract.Segmenter) *VinmecAdapter {
	if seg == nil {
		seg = extract.NewSegmenter()
	}
	return &VinmecAdapter{
		segmenter: seg,
		strategy:  extract.DefaultStrategy(),
	}
}

// Name returns the adapter name
func (a *VinmecAdapter) Name() string {
	return "vinmec"
}

// CanHandle checks for vinmec.com URLs
func (a *VinmecAdapter) CanHandle(pageURL string) bool {
	return a.HostMatches(pageURL, "vinmec.com")
}

// Extract parses a disease article
func (a *VinmecAdapter) Extract(rawHTML, pageURL string) (*Page, model.Outcome) {
	doc, err := a.ParseHTML(rawHTML)
	if err != nil {
		return nil, model.Skip(model.SkipMalformed, err.Error())
	}

	sections, ok := a.segmenter.Extract(doc, a.strategy)
	if !ok {
		return nil, model.Skip(model.SkipNoContent, "content root not found")
	}

	meta := model.PageMeta{URL: pageURL, Title: a.title(doc), Source: a.Name()}
	return emit(meta, sections)
}

// title prefers the h1, falling back to the <title> text before the
// first ':', '|' or '-'
func (a *VinmecAdapter) title(doc *goquery.Document) string {
	if h1 := a.Text(doc, "h1"); utf8.RuneCountInString(h1) > 2 {
		return h1
	}
	raw := a.Text(doc, "title")
	if raw == "" {
		return "Unknown"
	}
	if name := strings.TrimSpace(titleSplitPattern.Split(raw, 2)[0]); name != "" {
		return name
	}
	return "Unknown"
}

// IndexURLs returns the a-z listing pages
func (a *VinmecAdapter) IndexURLs() []string {
	urls := make([]string, 0, 26)
	for c := 'a'; c <= 'z'; c++ {
		urls = append(urls, vinmecIndexPrefix+string(c))
	}
	return urls
}

// ArticleLinks keeps /benh/ links, excluding the listing pages themselves
func (a *VinmecAdapter) ArticleLinks(doc *goquery.Document, pageURL string) []string {
	var out []string
	for _, link := range extract.Links(doc, pageURL, "a[href]") {
		if strings.Contains(link, "/benh/") && !strings.Contains(link, "/tra-cuu-benh/") {
			out = append(out, link)
		}
	}
	return out
}
