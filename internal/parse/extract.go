// Package parse turns raw ranking and detail markup into structured records.
//
// Extraction is declarative: each output field is a (name, selector, multi)
// rule, so adding a section to the detail pages is a data change, not a code
// change. Extraction is also total — a selector with zero matches yields an
// empty string, never a missing key and never an error. Absence is data.
package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// FieldRule maps one output field to a CSS selector. Multi rules collect
// every match and join them with " | "; single rules take the first match.
type FieldRule struct {
	Name     string
	Selector string
	Multi    bool
}

// ExtractFields applies every rule under root and returns one entry per rule.
// Rules are independent: a miss on one never blocks the others.
func ExtractFields(root *goquery.Selection, rules []FieldRule) map[string]string {
	out := make(map[string]string, len(rules))
	for _, rule := range rules {
		out[rule.Name] = extractField(root, rule)
	}
	return out
}

func extractField(root *goquery.Selection, rule FieldRule) string {
	if root == nil {
		return ""
	}
	matches := root.Find(rule.Selector)
	if matches.Length() == 0 {
		return ""
	}
	if !rule.Multi {
		return nodeText(matches.First())
	}
	parts := make([]string, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		if text := nodeText(s); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " | ")
}

// nodeText returns the selection's text content with each text node stripped
// and the pieces joined by single spaces.
func nodeText(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		if trimmed := strings.Join(strings.Fields(n.Data), " "); trimmed != "" {
			*parts = append(*parts, trimmed)
		}
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
