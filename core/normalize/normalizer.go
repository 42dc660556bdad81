// Package normalize canonicalizes inline style attributes so that rule
// matching downstream does not depend on declaration order, spacing or case.
package normalize

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// StyleNormalizer rewrites every style attribute of an HTML fragment into
// its canonical form. Everything else passes through byte for byte.
type StyleNormalizer struct{}

// New creates a StyleNormalizer.
func New() *StyleNormalizer {
	return &StyleNormalizer{}
}

// Rewrite normalizes the style attributes of an HTML fragment.
// A style attribute left with no declarations is removed.
func (n *StyleNormalizer) Rewrite(fragment string) (string, error) {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	b.Grow(len(fragment))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("tokenizing HTML: %w", err)
			}
			return b.String(), nil
		}

		raw := string(z.Raw())
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			b.WriteString(raw)
			continue
		}

		tok := z.Token()
		if !hasStyle(tok) {
			b.WriteString(raw)
			continue
		}
		writeTag(&b, tok)
	}
}

// NormalizeStyle returns the canonical form of a style value: declarations
// lowercased with all whitespace removed, each terminated by ";", sorted
// and joined without separator. Empty declarations are dropped.
func NormalizeStyle(style string) string {
	var decls []string
	for _, part := range strings.Split(style, ";") {
		d := strings.Join(strings.Fields(strings.ToLower(part)), "")
		if d == "" {
			continue
		}
		decls = append(decls, d+";")
	}
	sort.Strings(decls)
	return strings.Join(decls, "")
}

func hasStyle(tok html.Token) bool {
	for _, a := range tok.Attr {
		if a.Namespace == "" && a.Key == "style" {
			return true
		}
	}
	return false
}

func writeTag(b *strings.Builder, tok html.Token) {
	b.WriteByte('<')
	b.WriteString(tok.Data)
	for _, a := range tok.Attr {
		val := a.Val
		if a.Namespace == "" && a.Key == "style" {
			val = NormalizeStyle(val)
			if val == "" {
				continue
			}
		}
		b.WriteByte(' ')
		if a.Namespace != "" {
			b.WriteString(a.Namespace + ":")
		}
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(val))
		b.WriteByte('"')
	}
	if tok.Type == html.SelfClosingTagToken {
		b.WriteString(" /")
	}
	b.WriteByte('>')
}
