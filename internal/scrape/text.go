package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// excludeAttr marks annotation widgets nested inside lyrics containers.
const excludeAttr = "data-exclude-from-selection"

// textParts returns the whitespace-trimmed, non-empty text nodes under n in
// document order. Script and style bodies, comments, and excluded subtrees
// are skipped.
func textParts(n *html.Node) []string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" || hasAttr(n, excludeAttr) {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return parts
}

// joinedText joins the text parts of every node in sel with sep.
func joinedText(sel *goquery.Selection, sep string) string {
	var parts []string
	for _, n := range sel.Nodes {
		parts = append(parts, textParts(n)...)
	}
	return strings.Join(parts, sep)
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// isUnclassed reports an element with no class attribute or an empty one.
func isUnclassed(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			return strings.TrimSpace(a.Val) == ""
		}
	}
	return true
}

func isElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}
