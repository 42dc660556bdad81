// Package restyle rewrites inline styling into structural markup.
// A rule table maps normalized style signatures to rewrites: wrapping in
// <b>/<i>, unwrapping styling-only spans, and adding alignment classes.
package restyle

import (
	"slices"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/pressblocks/core/config"
	"github.com/gaurav-prasanna/pressblocks/core/markup"
	"github.com/gaurav-prasanna/pressblocks/core/normalize"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// voidElements have no children to wrap or promote.
var voidElements = map[string]bool{
	"img": true, "br": true, "hr": true, "input": true, "embed": true,
	"source": true, "track": true, "wbr": true, "area": true, "col": true,
}

// Rewriter applies the style rule table to HTML fragments.
type Rewriter struct {
	rules []rule
	log   zerolog.Logger
}

// New compiles the rule table. Rules that fail to compile are logged and
// left out.
func New(rules []config.StyleRule, log zerolog.Logger) *Rewriter {
	log = log.With().Str("stage", "restyle").Logger()
	return &Rewriter{
		rules: compileRules(rules, log),
		log:   log,
	}
}

// Rewrite applies the element rules (center, em, strong) and then the style
// rules in category order.
func (r *Rewriter) Rewrite(fragment string) (string, error) {
	body, err := markup.Parse(fragment)
	if err != nil {
		return "", err
	}
	doc := goquery.NewDocumentFromNode(body)

	r.rewriteElements(doc)

	// Targets are collected per rule before any mutation; nodes removed by an
	// earlier rule are ignored afterwards.
	claimed := map[*html.Node]map[string]bool{}
	removed := map[*html.Node]bool{}
	var touched []*html.Node

	for _, rl := range r.rules {
		targets := r.match(doc, rl, claimed, removed)
		for _, n := range targets {
			if !r.apply(rl, n, removed) {
				continue
			}
			if rl.category != CategoryAlign {
				if claimed[n] == nil {
					claimed[n] = map[string]bool{}
				}
				claimed[n][rl.category] = true
			}
			touched = append(touched, n)
		}
	}

	for _, n := range touched {
		if !removed[n] {
			markup.RemoveAttr(n, "style")
		}
	}

	return markup.Render(body)
}

// rewriteElements unwraps <center> and renames <em>/<strong> to <i>/<b>.
func (r *Rewriter) rewriteElements(doc *goquery.Document) {
	for _, n := range doc.Find("em, strong").Nodes {
		if n.Data == "em" {
			markup.Rename(n, "i")
		} else {
			markup.Rename(n, "b")
		}
	}
	for _, n := range doc.Find("center").Nodes {
		dom.UnwrapNode(n)
	}
}

func (r *Rewriter) match(doc *goquery.Document, rl rule, claimed map[*html.Node]map[string]bool, removed map[*html.Node]bool) []*html.Node {
	var targets []*html.Node
	for _, n := range doc.FindMatcher(rl.selector).Nodes {
		if removed[n] || claimed[n][rl.category] {
			continue
		}
		style, ok := dom.GetAttribute(n, "style")
		if !ok {
			continue
		}
		if rl.pattern.MatchString(normalize.NormalizeStyle(style)) {
			targets = append(targets, n)
		}
	}
	return targets
}

// apply runs the rule transform on n and reports whether it was applied.
func (r *Rewriter) apply(rl rule, n *html.Node, removed map[*html.Node]bool) bool {
	if n.Parent == nil {
		return false
	}

	if rl.kind == transformClass {
		addClass(n, rl.class)
		return true
	}

	if voidElements[n.Data] {
		r.log.Warn().
			Str("rule", rl.name).
			Str("element", n.Data).
			Msg("Style rule does not apply to element; skipped")
		return false
	}

	switch rl.kind {
	case transformUnwrap:
		markup.RemoveAttr(n, "style")
		dom.UnwrapNode(n)
		removed[n] = true
	case transformBold, transformItalic, transformBoldItalic:
		outer, inner := emphasis(rl.kind)
		if !dom.NameIsInlineNode(n.Data) {
			// Non-inline elements keep their tag and get their content wrapped.
			markup.MoveChildren(n, inner)
			n.AppendChild(outer)
			return true
		}
		markup.MoveChildren(n, inner)
		dom.ReplaceNode(n, outer)
		removed[n] = true
	}
	return true
}

// emphasis builds the replacement element and returns it with the node
// that receives the content.
func emphasis(kind transformKind) (outer, inner *html.Node) {
	switch kind {
	case transformBold:
		b := markup.NewElement("b")
		return b, b
	case transformItalic:
		i := markup.NewElement("i")
		return i, i
	default:
		b := markup.NewElement("b")
		i := markup.NewElement("i")
		b.AppendChild(i)
		return b, i
	}
}

func addClass(n *html.Node, class string) {
	classes := dom.GetClasses(n)
	if slices.Contains(classes, class) {
		return
	}
	classes = append(classes, class)
	markup.SetAttr(n, "class", strings.Join(classes, " "))
}
