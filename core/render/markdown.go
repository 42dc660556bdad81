// Package render provides preview renderers for assembled units.
// This file implements the Markdown renderer: front matter followed by one
// Markdown section per block.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/JohannesKaufmann/dom"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gaurav-prasanna/pressblocks/core"
	"github.com/gaurav-prasanna/pressblocks/core/markup"
	"golang.org/x/net/html"
)

const dateLayout = "2006-01-02 15:04:05"

var frontMatter = template.Must(template.New("front").Parse(`---
title: "{{.Title}}"
slug: "{{.Slug}}"
date: "{{.Date}}"
modified: "{{.Modified}}"
post_id: {{.PostID}}
post_type: {{.PostType}}
status: {{.Status}}
original: {{.Link}}
---

`))

// MarkdownRenderer renders units as Markdown with a front matter header.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render converts the unit into Markdown.
func (r *MarkdownRenderer) Render(unit *core.ImportableUnit) ([]byte, error) {
	var buf bytes.Buffer
	err := frontMatter.Execute(&buf, struct {
		Title, Slug, Date, Modified string
		PostID                      int
		PostType, Status, Link      string
	}{
		Title:    escapeQuotes(unit.Title),
		Slug:     unit.Slug,
		Date:     unit.FirstPublishedAt.Format(dateLayout),
		Modified: unit.LastPublishedAt.Format(dateLayout),
		PostID:   unit.PostID,
		PostType: unit.PostType,
		Status:   unit.Status,
		Link:     unit.Link,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering front matter: %w", err)
	}

	sections := make([]string, 0, len(unit.Body))
	for i, b := range unit.Body {
		md, err := blockMarkdown(b)
		if err != nil {
			return nil, fmt.Errorf("rendering block %d of post %d: %w", i, unit.PostID, err)
		}
		if md != "" {
			sections = append(sections, md)
		}
	}
	buf.WriteString(strings.Join(sections, "\n\n"))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

func blockMarkdown(b core.Block) (string, error) {
	switch v := b.Value.(type) {
	case core.HeadingValue:
		level := 2
		if len(v.Importance) == 2 && v.Importance[1] >= '1' && v.Importance[1] <= '6' {
			level = int(v.Importance[1] - '0')
		}
		return strings.Repeat("#", level) + " " + v.Text, nil
	case core.ImageValue:
		img := fmt.Sprintf("![%s](asset:%d)", v.Caption, v.Image)
		if v.Link != "" {
			img = fmt.Sprintf("[%s](%s)", img, v.Link)
		}
		return img, nil
	case core.QuoteValue:
		quote := "> " + strings.ReplaceAll(v.Quote, "\n", "\n> ")
		if v.Attribution != "" {
			quote += "\n>\n> \u2014 " + v.Attribution
		}
		return quote, nil
	case string:
		if b.Type == core.BlockRawHTML {
			return "```html\n" + v + "\n```", nil
		}
		return richTextMarkdown(v)
	default:
		return "", fmt.Errorf("unsupported block value %T", b.Value)
	}
}

// richTextMarkdown converts rich text to Markdown, turning image embeds
// into asset references first.
func richTextMarkdown(fragment string) (string, error) {
	body, err := markup.Parse(fragment)
	if err != nil {
		return "", err
	}
	embeds := dom.FindAllNodes(body, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "embed" && dom.GetAttributeOr(n, "embedtype", "") == "image"
	})
	for _, n := range embeds {
		img := markup.NewElement("img",
			html.Attribute{Key: "src", Val: "asset:" + dom.GetAttributeOr(n, "id", "")},
			html.Attribute{Key: "alt", Val: dom.GetAttributeOr(n, "alt", "")},
		)
		dom.ReplaceNode(n, img)
	}

	rendered, err := markup.Render(body)
	if err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(rendered)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
