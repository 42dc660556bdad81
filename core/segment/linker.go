package segment

import (
	"context"
	"strconv"

	"github.com/JohannesKaufmann/dom"
	"github.com/gaurav-prasanna/pressblocks/core/markup"
	"github.com/gaurav-prasanna/pressblocks/core/shortcode"
	"golang.org/x/net/html"
)

// linkImages replaces every <img> in n (n included) with an embed
// placeholder for the resolved asset. Images that cannot be resolved are
// removed. It returns the node that now stands in for n, or nil if n
// itself was removed.
func linkImages(ctx context.Context, n *html.Node, env shortcode.Env) *html.Node {
	var imgs []*html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && c.Data == "img" {
			imgs = append(imgs, c)
			return
		}
		for g := c.FirstChild; g != nil; g = g.NextSibling {
			walk(g)
		}
	}
	walk(n)

	root := n
	for _, img := range imgs {
		embed := imageEmbed(ctx, img, env)
		switch {
		case embed == nil:
			dom.RemoveNode(img)
			if img == root {
				root = nil
			}
		default:
			dom.ReplaceNode(img, embed)
			if img == root {
				root = embed
			}
		}
	}
	return root
}

func imageEmbed(ctx context.Context, img *html.Node, env shortcode.Env) *html.Node {
	if env.Images == nil {
		return nil
	}
	asset := env.Images.Resolve(ctx, dom.GetAttributeOr(img, "src", ""), env.Ref, env.Skips)
	if asset == nil {
		return nil
	}
	return markup.NewElement("embed",
		html.Attribute{Key: "embedtype", Val: "image"},
		html.Attribute{Key: "id", Val: strconv.FormatInt(asset.ID, 10)},
		html.Attribute{Key: "alt", Val: dom.GetAttributeOr(img, "alt", "")},
		html.Attribute{Key: "format", Val: embedFormat(img)},
	)
}

// embedFormat maps alignment classes to the embed format.
func embedFormat(img *html.Node) string {
	for _, class := range dom.GetClasses(img) {
		switch class {
		case "align-left", "float-left", "alignleft":
			return "left"
		case "align-right", "float-right", "alignright":
			return "right"
		}
	}
	return "fullwidth"
}
