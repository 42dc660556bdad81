package segment

import (
	"strings"

	"github.com/gaurav-prasanna/pressblocks/core/markup"
	"golang.org/x/net/html"
)

// promote hoists promotable elements that sit directly inside a wrapper
// child of body up to body level. The wrapper is split around the element:
// earlier siblings stay in the wrapper, later ones move to a copy of it
// placed after the element. Wrappers left empty are removed.
func (s *Segmenter) promote(body *html.Node) {
	var targets []*html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if !s.isWrapper(c) {
			continue
		}
		for g := c.FirstChild; g != nil; g = g.NextSibling {
			if g.Type == html.ElementNode && s.promotable[g.Data] {
				targets = append(targets, g)
			}
		}
	}

	for _, n := range targets {
		hoist(n)
	}

	for _, c := range children(body) {
		if s.isWrapper(c) && s.isEmpty(c) {
			body.RemoveChild(c)
		}
	}
}

func hoist(n *html.Node) {
	wrapper := n.Parent
	body := wrapper.Parent

	after := markup.NewElement(wrapper.Data, append([]html.Attribute(nil), wrapper.Attr...)...)
	for c := n.NextSibling; c != nil; {
		next := c.NextSibling
		wrapper.RemoveChild(c)
		after.AppendChild(c)
		c = next
	}

	wrapper.RemoveChild(n)
	body.InsertBefore(n, wrapper.NextSibling)
	body.InsertBefore(after, n.NextSibling)
}

func (s *Segmenter) isWrapper(n *html.Node) bool {
	return n.Type == html.ElementNode && s.wrappers[n.Data]
}

// isEmpty reports whether n holds nothing but whitespace, line breaks and
// other empty wrappers.
func (s *Segmenter) isEmpty(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return false
			}
		case html.ElementNode:
			if c.Data == "br" {
				continue
			}
			if !s.isWrapper(c) || !s.isEmpty(c) {
				return false
			}
		}
	}
	return true
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}
