package channel

import (
	"strings"
	"testing"
)

const sampleExport = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:dc="http://purl.org/dc/elements/1.1/"
	xmlns:wp="http://wordpress.org/export/1.2/">
<channel>
	<title>Example Blog</title>
	<link>https://example.com</link>
	<description>Just another blog</description>
	<language>en-US</language>
	<wp:wxr_version>1.2</wp:wxr_version>
	<wp:base_site_url>https://example.com</wp:base_site_url>
	<wp:base_blog_url>https://example.com/blog</wp:base_blog_url>
	<wp:author><wp:author_id>1</wp:author_id><wp:author_login><![CDATA[admin]]></wp:author_login></wp:author>
	<wp:category><wp:term_id>2</wp:term_id><wp:category_nicename>news</wp:category_nicename></wp:category>
	<wp:tag><wp:term_id>3</wp:term_id><wp:tag_slug>go</wp:tag_slug></wp:tag>
	<wp:tag><wp:term_id>4</wp:term_id><wp:tag_slug>xml</wp:tag_slug></wp:tag>
	<item>
		<title>First</title>
		<content:encoded><![CDATA[<p>one</p>]]></content:encoded>
		<wp:post_id>1</wp:post_id>
		<wp:status><![CDATA[publish]]></wp:status>
		<wp:post_type><![CDATA[post]]></wp:post_type>
	</item>
	<item>
		<title>Second</title>
		<wp:post_id>2</wp:post_id>
		<wp:status><![CDATA[draft]]></wp:status>
		<wp:post_type><![CDATA[post]]></wp:post_type>
	</item>
	<item>
		<title>About</title>
		<wp:post_id>3</wp:post_id>
		<wp:status><![CDATA[publish]]></wp:status>
		<wp:post_type><![CDATA[page]]></wp:post_type>
	</item>
	<item>
		<title>Orphan</title>
		<wp:post_id>4</wp:post_id>
	</item>
</channel>
</rss>`

func TestInspect(t *testing.T) {
	s, err := New().Inspect(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	if s.Title != "Example Blog" || s.Link != "https://example.com" {
		t.Errorf("unexpected title/link %q %q", s.Title, s.Link)
	}
	if s.BaseSiteURL != "https://example.com" || s.BaseBlogURL != "https://example.com/blog" {
		t.Errorf("unexpected base urls %q %q", s.BaseSiteURL, s.BaseBlogURL)
	}
	if s.WXRVersion != "1.2" {
		t.Errorf("expected wxr version 1.2, got %q", s.WXRVersion)
	}
	if s.Authors != 1 || s.Categories != 1 || s.Tags != 2 {
		t.Errorf("unexpected side counts authors=%d categories=%d tags=%d", s.Authors, s.Categories, s.Tags)
	}
	if s.Items != 4 {
		t.Errorf("expected 4 items, got %d", s.Items)
	}
	if s.PostTypes["post"] != 2 || s.PostTypes["page"] != 1 || s.PostTypes["unknown"] != 1 {
		t.Errorf("unexpected post types %v", s.PostTypes)
	}
	if s.Statuses["publish"] != 2 || s.Statuses["draft"] != 1 {
		t.Errorf("unexpected statuses %v", s.Statuses)
	}
}

func TestInspectInvalid(t *testing.T) {
	if _, err := New().Inspect(strings.NewReader("not a feed")); err == nil {
		t.Error("expected error for non-feed input")
	}
}

func TestKeys(t *testing.T) {
	got := Keys(map[string]int{"page": 1, "post": 5, "attachment": 1})
	want := []string{"post", "attachment", "page"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}
