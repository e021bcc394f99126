package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RootStrategy describes how to find the article body of a page
type RootStrategy struct {
	// Selector is a structural marker ("div.description"). Tried first.
	Selector string

	// HeadingKeywords locate the root through the first h2/h3 whose text
	// contains one of them. The heading's parent is the candidate.
	HeadingKeywords []string

	// FallbackClasses are div classes tried when the keyword candidate is
	// missing or too small
	FallbackClasses []string

	// MinText is the minimum non-whitespace rune count of a usable root
	MinText int

	// Strip selectors are removed from the root before segmentation
	Strip []string
}

// DefaultStrategy is the keyword/class strategy used for unstructured pages
func DefaultStrategy() RootStrategy {
	return RootStrategy{
		HeadingKeywords: []string{"Nguyên nhân", "Triệu chứng", "Điều trị", "Tổng quan"},
		FallbackClasses: []string{"collapsible-content", "main-content", "post-content", "body-content"},
		MinText:         200,
	}
}

// alwaysStrip are never part of article text
var alwaysStrip = []string{
	"script", "style", "noscript", "iframe", "img", "figure", "figcaption",
	`[style*="text-align: center"]`, `[style*="text-align:center"]`,
}

// LocateRoot finds the content root of doc. ok=false means the page has
// no recognizable article body, which callers treat as a skip.
func LocateRoot(doc *goquery.Document, s RootStrategy) (*goquery.Selection, bool) {
	if s.Selector != "" {
		if sel := doc.Find(s.Selector).First(); sel.Length() > 0 {
			return sel, true
		}
	}

	candidate := headingCandidate(doc, s)
	if candidate != nil && denseLen(candidate.Text()) >= s.MinText {
		return candidate, true
	}

	for _, cls := range s.FallbackClasses {
		var found *goquery.Selection
		doc.Find("div." + cls).EachWithBreak(func(_ int, div *goquery.Selection) bool {
			if denseLen(div.Text()) > s.MinText {
				found = div
				return false
			}
			return true
		})
		if found != nil {
			return found, true
		}
	}

	// A small keyword candidate still beats nothing
	if candidate != nil && denseLen(candidate.Text()) > 0 {
		return candidate, true
	}
	return nil, false
}

// headingCandidate returns the parent of the first h2/h3 (document order)
// containing a root keyword, climbing one level when the parent is small.
func headingCandidate(doc *goquery.Document, s RootStrategy) *goquery.Selection {
	if len(s.HeadingKeywords) == 0 {
		return nil
	}

	var heading *goquery.Selection
	doc.Find("h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := h.Text()
		for _, kw := range s.HeadingKeywords {
			if strings.Contains(text, kw) {
				heading = h
				return false
			}
		}
		return true
	})
	if heading == nil {
		return nil
	}

	parent := heading.Parent()
	if parent.Length() == 0 {
		return nil
	}
	if denseLen(parent.Text()) < s.MinText {
		if grand := parent.Parent(); grand.Length() > 0 && !grand.Is("html") {
			parent = grand
		}
	}
	return parent
}

// StripNoise removes non-article elements from root in place
func StripNoise(root *goquery.Selection, extra ...string) {
	for _, sel := range alwaysStrip {
		root.Find(sel).Remove()
	}
	for _, sel := range extra {
		if sel != "" {
			root.Find(sel).Remove()
		}
	}
}
