// Package shortcode rewrites WordPress bracket shortcodes into custom HTML
// elements so later stages can treat them like ordinary tags.
//
//	ham[foo]eggs[/foo]spam → ham<wagtail_block_foo>eggs</wagtail_block_foo>spam
//
// Each element is later turned into a block by the handler registered under
// the shortcode name.
package shortcode

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/pressblocks/core"
	"github.com/gaurav-prasanna/pressblocks/core/config"
	"golang.org/x/net/html"
)

// TagPrefix prefixes the element name produced for a shortcode.
const TagPrefix = "wagtail_block_"

var validName = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Env carries what a handler needs to build a block for one record.
type Env struct {
	Images core.ImageResolver
	Ref    core.SourceRef
	Skips  *core.SkipLog
}

// Handler builds a block from a rewritten shortcode element.
type Handler interface {
	// Name is the shortcode name: letters and digits only.
	Name() string
	// TopLevel reports whether the element is hoisted out of wrapper
	// elements so it can become a block of its own.
	TopLevel() bool
	Block(ctx context.Context, n *html.Node, env Env) core.Block
}

type entry struct {
	handler Handler
	tag     string
	pattern *regexp.Regexp
	repl    string
}

// Registry holds shortcode handlers in registration order.
type Registry struct {
	entries []entry
	byTag   map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byTag: map[string]Handler{}}
}

// NewDefaultRegistry creates a registry with the built-in caption handler.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	if err := r.Register(Caption{}); err != nil {
		panic(err)
	}
	return r
}

// NewConfiguredRegistry creates the default registry plus a Generic
// handler for every configured shortcode, in configuration order.
func NewConfiguredRegistry(shortcodes []config.ShortcodeConfig) (*Registry, error) {
	r := NewDefaultRegistry()
	for _, sc := range shortcodes {
		if err := r.Register(Generic{ShortcodeName: sc.Name, Hoist: sc.Hoist}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a handler. Names must be unique and alphanumeric.
func (r *Registry) Register(h Handler) error {
	name := h.Name()
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid shortcode name %q", name)
	}
	tag := TagName(name)
	if _, exists := r.byTag[tag]; exists {
		return fmt.Errorf("shortcode %q already registered", name)
	}

	quoted := regexp.QuoteMeta(name)
	pattern := regexp.MustCompile(`(?s)\[` + quoted + `((?:\s[^\]]*)?)\](.*?)\[/` + quoted + `\]`)

	r.entries = append(r.entries, entry{
		handler: h,
		tag:     tag,
		pattern: pattern,
		repl:    "<" + tag + "${1}>${2}</" + tag + ">",
	})
	r.byTag[tag] = h
	return nil
}

// Rewrite replaces every closed shortcode with its element, handler by
// handler in registration order. Unclosed shortcodes are left as text.
func (r *Registry) Rewrite(s string) (string, error) {
	for _, e := range r.entries {
		s = e.pattern.ReplaceAllString(s, e.repl)
	}
	return s, nil
}

// Lookup returns the handler for an element tag.
func (r *Registry) Lookup(tag string) (Handler, bool) {
	h, ok := r.byTag[tag]
	return h, ok
}

// Tags returns the element tags of all handlers in registration order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		tags = append(tags, e.tag)
	}
	return tags
}

// TopLevelTags returns the element tags of handlers marked top-level.
func (r *Registry) TopLevelTags() []string {
	var tags []string
	for _, e := range r.entries {
		if e.handler.TopLevel() {
			tags = append(tags, e.tag)
		}
	}
	return tags
}

// TagName returns the element name used for a shortcode.
func TagName(name string) string {
	return TagPrefix + strings.ToLower(name)
}
