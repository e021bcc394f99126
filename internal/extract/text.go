package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// nodeText returns the visible text of n with whitespace collapsed.
// Script-like elements are skipped.
func nodeText(n *html.Node) string {
	var parts []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return NormalizeSpace(strings.Join(parts, " "))
}

// NormalizeSpace collapses runs of whitespace into single spaces and trims
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// denseLen is the rune length of s with all whitespace removed
func denseLen(s string) int {
	return utf8.RuneCountInString(strings.Join(strings.Fields(s), ""))
}
