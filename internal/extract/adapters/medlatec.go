package adapters

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/medqa/internal/extract"
	"github.com/ppiankov/medqa/internal/model"
)

const medlatecBase = "https://medlatec.vn"

// MedlatecAdapter extracts entries from the medlatec.vn disease dictionary
type MedlatecAdapter struct {
	BaseAdapter
	segmenter *extract.Segmenter
	strategy  extract.RootStrategy
}

// NewMedlatecAdapter creates a medlatec adapter. Only h2 opens a section;
// h3 sub-headings are kept as text. seg supplies the category table.
func NewMedlatecAdapter(seg *extract.Segmenter) *MedlatecAdapter {
	table := extract.DefaultTable()
	if seg != nil {
		table = seg.Table()
	}
	return &MedlatecAdapter{
		segmenter: extract.NewSegmenter(
			extract.WithTable(table),
			extract.WithHeadings("h2"),
			extract.WithBlocks("p", "li", "h3"),
			extract.WithJoiner("\n"),
		),
		strategy: extract.RootStrategy{
			Selector: "div.description",
			Strip:    []string{"div." + referenceClass},
		},
	}
}

// Name returns the adapter name
func (a *MedlatecAdapter) Name() string {
	return "medlatec"
}

// CanHandle checks for medlatec.vn URLs
func (a *MedlatecAdapter) CanHandle(pageURL string) bool {
	return a.HostMatches(pageURL, "medlatec.vn")
}

// Extract parses a dictionary entry
func (a *MedlatecAdapter) Extract(rawHTML, pageURL string) (*Page, model.Outcome) {
	doc, err := a.ParseHTML(rawHTML)
	if err != nil {
		return nil, model.Skip(model.SkipMalformed, err.Error())
	}
	stripReferences(doc)

	sections, ok := a.segmenter.Extract(doc, a.strategy)
	if !ok {
		return nil, model.Skip(model.SkipNoContent, "div.description not found")
	}

	meta := model.PageMeta{URL: pageURL, Title: a.title(doc), Source: a.Name()}
	return emit(meta, sections)
}

// title is the h1.page-title text before " :"
func (a *MedlatecAdapter) title(doc *goquery.Document) string {
	t := a.Text(doc, "h1.page-title")
	if i := strings.Index(t, " :"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

// referenceClass tags the bibliography box so the root strategy strips it
const referenceClass = "medqa-references"

// stripReferences marks the grey "tài liệu tham khảo" box for removal.
// Other grey boxes are content and must survive.
func stripReferences(doc *goquery.Document) {
	doc.Find(`div[style*="background:#eee"]`).Each(func(_ int, div *goquery.Selection) {
		strong := strings.ToLower(strings.TrimSpace(div.Find("strong").First().Text()))
		if strings.Contains(strong, "tài liệu tham khảo") {
			div.AddClass(referenceClass)
		}
	})
}

// IndexURLs returns the dictionary listing page
func (a *MedlatecAdapter) IndexURLs() []string {
	return []string{medlatecBase + "/tu-dien-benh-ly"}
}

// ArticleLinks returns entries of the disease lists
func (a *MedlatecAdapter) ArticleLinks(doc *goquery.Document, pageURL string) []string {
	return extract.Links(doc, pageURL, "ul.disease-list a")
}
