package shortcode

import (
	"context"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/gaurav-prasanna/pressblocks/core"
	"github.com/gaurav-prasanna/pressblocks/core/markup"
	"golang.org/x/net/html"
)

// Caption turns [caption] shortcodes into image blocks.
type Caption struct{}

func (Caption) Name() string   { return "caption" }
func (Caption) TopLevel() bool { return true }

// Block resolves the inner image and builds an image block. A caption
// without a resolvable image becomes a raw_html block explaining why.
func (Caption) Block(ctx context.Context, n *html.Node, env Env) core.Block {
	img := dom.FindFirstNode(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && c.Data == "img"
	})
	if img == nil {
		return fallback("caption has no image")
	}

	src := dom.GetAttributeOr(img, "src", "")
	if env.Images == nil {
		return fallback("no image resolver configured for " + src)
	}
	asset := env.Images.Resolve(ctx, src, env.Ref, env.Skips)
	if asset == nil {
		return fallback("image could not be imported: " + src)
	}

	var link string
	anchor := dom.FindFirstNode(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && c.Data == "a"
	})
	if anchor != nil {
		link = dom.GetAttributeOr(anchor, "href", "")
	}

	caption := cleanCaption(dom.CollectText(n))
	if caption == "" {
		caption = cleanCaption(dom.GetAttributeOr(n, "caption", ""))
	}

	return core.Image(core.ImageValue{
		Image:     asset.ID,
		Caption:   caption,
		Alignment: captionAlignment(dom.GetAttributeOr(n, "align", "")),
		Link:      link,
	})
}

func captionAlignment(align string) string {
	switch strings.TrimSpace(align) {
	case "alignright":
		return "right"
	case "aligncenter":
		return "center"
	default:
		return "left"
	}
}

// cleanCaption strips the text and joins its lines with single spaces.
func cleanCaption(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func fallback(reason string) core.Block {
	return core.RawHTML(`<p class="import-warning">Caption not imported: ` + html.EscapeString(reason) + `</p>`)
}

// Generic turns any other registered shortcode into a raw_html block of its
// inner content.
type Generic struct {
	ShortcodeName string
	Hoist         bool
}

func (g Generic) Name() string   { return g.ShortcodeName }
func (g Generic) TopLevel() bool { return g.Hoist }

// Block renders the element content as raw HTML.
func (g Generic) Block(_ context.Context, n *html.Node, _ Env) core.Block {
	inner, err := markup.Render(n)
	if err != nil {
		return core.RawHTML("")
	}
	return core.RawHTML(inner)
}
