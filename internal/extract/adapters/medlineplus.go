package adapters

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/medqa/internal/extract"
	"github.com/ppiankov/medqa/internal/model"
)

const medlinePlusBase = "https://medlineplus.gov"

// MedlinePlusAdapter extracts English encyclopedia articles from medlineplus.gov
type MedlinePlusAdapter struct {
	BaseAdapter
	segmenter *extract.Segmenter
}

// NewMedlinePlusAdapter creates a medlineplus adapter. Vietnamese
// promotional filters do not apply to this source.
func NewMedlinePlusAdapter() *MedlinePlusAdapter {
	return &MedlinePlusAdapter{
		segmenter: extract.NewSegmenter(
			extract.WithHeadings("h2"),
			extract.WithBlocks("p", "li"),
			extract.WithBoilerplate(),
			extract.WithJoiner("\n"),
			extract.WithListPrefix("• "),
		),
	}
}

// Name returns the adapter name
func (a *MedlinePlusAdapter) Name() string {
	return "medlineplus"
}

// CanHandle checks for medlineplus.gov URLs
func (a *MedlinePlusAdapter) CanHandle(pageURL string) bool {
	return a.HostMatches(pageURL, "medlineplus.gov")
}

// Extract reads the summary as overview and each div.section as its own
// heading-classified section
func (a *MedlinePlusAdapter) Extract(rawHTML, pageURL string) (*Page, model.Outcome) {
	doc, err := a.ParseHTML(rawHTML)
	if err != nil {
		return nil, model.Skip(model.SkipMalformed, err.Error())
	}

	summary := doc.Find("#ency_summary").First()
	blocks := doc.Find("div.section")
	if summary.Length() == 0 && blocks.Length() == 0 {
		return nil, model.Skip(model.SkipNoContent, "no summary or sections")
	}

	var sections []model.Section
	sections = append(sections, a.segmenter.Segment(summary)...)
	blocks.Each(func(_ int, div *goquery.Selection) {
		if div.Find("div.section-title h2").Length() == 0 {
			return
		}
		sections = append(sections, a.segmenter.Segment(div)...)
	})

	title := a.Text(doc, "div.page-title h1")
	if title == "" {
		title = a.Text(doc, "h1")
	}
	meta := model.PageMeta{URL: pageURL, Title: title, Source: a.Name()}
	return emit(meta, sections)
}

// IndexURLs returns the A-Z encyclopedia listings
func (a *MedlinePlusAdapter) IndexURLs() []string {
	urls := make([]string, 0, 26)
	for c := 'A'; c <= 'Z'; c++ {
		urls = append(urls, medlinePlusBase+"/ency/encyclopedia_"+string(c)+".htm")
	}
	return urls
}

// ArticleLinks returns entries of ul#index
func (a *MedlinePlusAdapter) ArticleLinks(doc *goquery.Document, pageURL string) []string {
	return extract.Links(doc, pageURL, "ul#index a")
}
