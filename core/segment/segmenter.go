// Package segment partitions sanitized page HTML into typed content blocks.
//
// Block-worthy children of body (tables, iframes, forms, headings, images,
// quotes and shortcode elements) become blocks of their own. Runs of
// everything else are gathered into rich_text blocks.
package segment

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/gaurav-prasanna/pressblocks/core"
	"github.com/gaurav-prasanna/pressblocks/core/config"
	"github.com/gaurav-prasanna/pressblocks/core/markup"
	"github.com/gaurav-prasanna/pressblocks/core/shortcode"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// Segmenter turns a page body into blocks.
type Segmenter struct {
	blockTags  map[string]string
	promotable map[string]bool
	wrappers   map[string]bool
	registry   *shortcode.Registry
	log        zerolog.Logger
}

// New creates a Segmenter from the block dispatch table and the shortcode
// registry. Top-level shortcode tags are promoted along with the
// configured promote tags.
func New(cfg *config.Config, registry *shortcode.Registry, log zerolog.Logger) *Segmenter {
	s := &Segmenter{
		blockTags:  make(map[string]string, len(cfg.BlockTags)),
		promotable: map[string]bool{},
		wrappers:   map[string]bool{},
		registry:   registry,
		log:        log.With().Str("component", "segment").Logger(),
	}
	for tag, kind := range cfg.BlockTags {
		s.blockTags[strings.ToLower(tag)] = kind
	}
	for _, tag := range cfg.PromoteTags {
		s.promotable[strings.ToLower(tag)] = true
	}
	for _, tag := range registry.TopLevelTags() {
		s.promotable[tag] = true
	}
	for _, tag := range cfg.PromoteWrappers {
		s.wrappers[strings.ToLower(tag)] = true
	}
	return s
}

// Segment parses fragment and returns its blocks in document order.
// Image failures are recorded in env.Skips and never abort the page.
func (s *Segmenter) Segment(ctx context.Context, fragment string, env shortcode.Env) ([]core.Block, error) {
	body, err := markup.Parse(fragment)
	if err != nil {
		return nil, err
	}
	s.promote(body)

	var (
		blocks []core.Block
		buf    strings.Builder
	)
	flush := func() {
		if text := strings.TrimSpace(buf.String()); text != "" {
			blocks = append(blocks, core.RichText(text))
		}
		buf.Reset()
	}

	for _, c := range children(body) {
		if c.Type == html.ElementNode {
			if block, ok := s.block(ctx, c, env); ok {
				flush()
				if !isEmptyBlock(block) {
					blocks = append(blocks, block)
				}
				continue
			}
		}

		n := linkImages(ctx, c, env)
		if n == nil {
			continue
		}
		outer, err := markup.Outer(n)
		if err != nil {
			return nil, err
		}
		buf.WriteString(outer)
	}
	flush()

	return blocks, nil
}

// block builds the block for a block-worthy element. ok is false for
// elements that belong in rich text.
func (s *Segmenter) block(ctx context.Context, n *html.Node, env shortcode.Env) (core.Block, bool) {
	if h, found := s.registry.Lookup(n.Data); found {
		return h.Block(ctx, n, env), true
	}

	kind, found := s.blockTags[n.Data]
	if !found {
		return core.Block{}, false
	}

	switch kind {
	case core.BlockRawHTML:
		return rawHTML(n), true
	case core.BlockHeading:
		return core.Heading(n.Data, cleanText(dom.CollectText(n))), true
	case core.BlockQuote:
		return core.Quote(cleanText(dom.CollectText(n)), strings.TrimSpace(dom.GetAttributeOr(n, "cite", ""))), true
	default:
		s.log.Warn().Str("tag", n.Data).Str("block_type", kind).Msg("Unknown block type; element kept as rich text")
		return core.Block{}, false
	}
}

func rawHTML(n *html.Node) core.Block {
	outer, err := markup.Outer(n)
	if err != nil {
		return core.RawHTML("")
	}
	if n.Data == "iframe" {
		outer = fmt.Sprintf(`<div class="responsive-object">%s</div>`, outer)
	}
	return core.RawHTML(outer)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isEmptyBlock(b core.Block) bool {
	switch v := b.Value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case core.HeadingValue:
		return v.Text == ""
	case core.QuoteValue:
		return v.Quote == ""
	}
	return false
}
