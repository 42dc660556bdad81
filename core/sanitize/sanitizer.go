// Package sanitize is the final whitelist pass over page HTML.
// Elements outside the allow-list are unwrapped (their content kept),
// except script-like elements which are dropped with their content.
// Attributes and CSS properties outside the allow-list are removed.
package sanitize

import (
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/gaurav-prasanna/pressblocks/core/config"
	"github.com/gaurav-prasanna/pressblocks/core/markup"
	"github.com/gaurav-prasanna/pressblocks/core/normalize"
	"golang.org/x/net/html"
)

// dropWithContent lists elements removed together with their subtree.
var dropWithContent = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"object": true, "embed": true, "applet": true, "param": true,
	"head": true, "title": true, "meta": true, "link": true, "base": true,
}

// urlAttrs hold URLs and are checked for unsafe schemes.
var urlAttrs = map[string]bool{"href": true, "src": true, "action": true, "cite": true}

// Filter removes everything not on its allow-list.
type Filter struct {
	tags   map[string]bool
	attrs  map[string]map[string]bool
	styles map[string]bool
}

// New creates a Filter from the allow-list. extraTags are allowed with any
// attribute; they are the custom elements produced by shortcode rewriting.
func New(cfg config.SanitizeConfig, extraTags ...string) *Filter {
	f := &Filter{
		tags:   map[string]bool{},
		attrs:  map[string]map[string]bool{},
		styles: map[string]bool{},
	}
	for _, t := range cfg.AllowedTags {
		f.tags[strings.ToLower(t)] = true
	}
	for tag, names := range cfg.AllowedAttributes {
		set := map[string]bool{}
		for _, n := range names {
			set[strings.ToLower(n)] = true
		}
		f.attrs[strings.ToLower(tag)] = set
	}
	for _, s := range cfg.AllowedStyles {
		f.styles[strings.ToLower(s)] = true
	}
	for _, t := range extraTags {
		f.tags[t] = true
		f.attrs[t] = map[string]bool{"*": true}
	}
	return f
}

// Rewrite sanitizes an HTML fragment.
func (f *Filter) Rewrite(fragment string) (string, error) {
	body, err := markup.Parse(fragment)
	if err != nil {
		return "", err
	}
	f.cleanChildren(body)
	return markup.Render(body)
}

func (f *Filter) cleanChildren(parent *html.Node) {
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		f.clean(c)
		c = next
	}
}

func (f *Filter) clean(n *html.Node) {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		dom.RemoveNode(n)
	case html.ElementNode:
		if dropWithContent[n.Data] {
			dom.RemoveNode(n)
			return
		}
		f.cleanChildren(n)
		if !f.tags[n.Data] {
			dom.UnwrapNode(n)
			return
		}
		n.Attr = f.filterAttrs(n)
	}
}

func (f *Filter) filterAttrs(n *html.Node) []html.Attribute {
	var kept []html.Attribute
	for _, a := range n.Attr {
		if a.Namespace != "" || !f.attrAllowed(n.Data, a.Key) {
			continue
		}
		if urlAttrs[a.Key] && unsafeURL(a.Val) {
			continue
		}
		if a.Key == "style" {
			a.Val = f.filterStyle(a.Val)
			if a.Val == "" {
				continue
			}
		}
		kept = append(kept, a)
	}
	return kept
}

func (f *Filter) attrAllowed(tag, key string) bool {
	if f.attrs["*"][key] {
		return true
	}
	set := f.attrs[tag]
	return set["*"] || set[key]
}

// filterStyle keeps only allowed CSS properties, in canonical form.
func (f *Filter) filterStyle(style string) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		prop, _, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if f.styles[strings.ToLower(strings.TrimSpace(prop))] {
			kept = append(kept, decl)
		}
	}
	return normalize.NormalizeStyle(strings.Join(kept, ";"))
}

func unsafeURL(v string) bool {
	v = strings.ToLower(strings.Join(strings.Fields(v), ""))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") ||
		(strings.HasPrefix(v, "data:") && !strings.HasPrefix(v, "data:image/"))
}
