// Package markup holds the HTML fragment helpers shared by the tree-based
// pipeline stages.
package markup

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses an HTML fragment in body context and returns a detached
// <body> element holding the parsed nodes.
func Parse(fragment string) (*html.Node, error) {
	context := NewElement("body")
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML fragment: %w", err)
	}

	body := NewElement("body")
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return body, nil
}

// Render returns the inner HTML of n.
func Render(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("rendering HTML: %w", err)
		}
	}
	return b.String(), nil
}

// Outer returns the outer HTML of n.
func Outer(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}
	return b.String(), nil
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// Rename changes the tag of an element in place.
func Rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// MoveChildren moves every child of from to the end of to.
func MoveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		from.RemoveChild(c)
		to.AppendChild(c)
		c = next
	}
}

// RemoveAttr deletes every attribute named key.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// SetAttr sets key to val, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
