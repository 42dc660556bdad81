// Package channel summarizes the channel header of a WXR export.
package channel

import (
	"fmt"
	"io"
	"sort"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// Summary describes an export file without assembling its items.
type Summary struct {
	Title       string
	Link        string
	Description string
	Language    string
	BaseSiteURL string
	BaseBlogURL string
	WXRVersion  string
	Authors     int
	Categories  int
	Tags        int
	Items       int
	PostTypes   map[string]int
	Statuses    map[string]int
}

// Inspector parses WXR channel metadata with gofeed.
type Inspector struct {
	parser *gofeed.Parser
}

// New creates an Inspector.
func New() *Inspector {
	return &Inspector{parser: gofeed.NewParser()}
}

// Inspect reads the whole export and returns its summary.
func (i *Inspector) Inspect(r io.Reader) (*Summary, error) {
	feed, err := i.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}

	s := &Summary{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
		BaseSiteURL: value(feed.Extensions, "base_site_url"),
		BaseBlogURL: value(feed.Extensions, "base_blog_url"),
		WXRVersion:  value(feed.Extensions, "wxr_version"),
		Authors:     count(feed.Extensions, "author"),
		Categories:  count(feed.Extensions, "category"),
		Tags:        count(feed.Extensions, "tag"),
		Items:       len(feed.Items),
		PostTypes:   map[string]int{},
		Statuses:    map[string]int{},
	}

	for _, item := range feed.Items {
		s.PostTypes[orUnknown(value(item.Extensions, "post_type"))]++
		s.Statuses[orUnknown(value(item.Extensions, "status"))]++
	}
	return s, nil
}

// Keys returns the keys of a count map, most frequent first.
func Keys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if counts[keys[a]] != counts[keys[b]] {
			return counts[keys[a]] > counts[keys[b]]
		}
		return keys[a] < keys[b]
	})
	return keys
}

func value(exts ext.Extensions, name string) string {
	values := exts["wp"][name]
	if len(values) == 0 {
		return ""
	}
	return values[0].Value
}

func count(exts ext.Extensions, name string) int {
	return len(exts["wp"][name])
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
