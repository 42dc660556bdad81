package assemble

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gaurav-prasanna/pressblocks/core"
	"github.com/gaurav-prasanna/pressblocks/core/config"
	"github.com/gaurav-prasanna/pressblocks/core/shortcode"
	"github.com/rs/zerolog"
)

type stubImages struct{}

func (stubImages) Resolve(_ context.Context, src string, ref core.SourceRef, log *core.SkipLog) *core.Asset {
	if src == "" {
		log.Add(ref, "no src provided")
		return nil
	}
	return &core.Asset{ID: 7, Title: src}
}

func newAssembler() *Assembler {
	return New(config.Default(), shortcode.NewDefaultRegistry(), stubImages{}, zerolog.Nop())
}

func record(content string) core.Record {
	return core.Record{
		"title":                "Hello &amp; World",
		"link":                 "https://example.com/hello-world",
		"content_encoded":      content,
		"wp_post_id":           42,
		"wp_post_name":         "hello-world",
		"wp_post_type":         "post",
		"wp_status":            "publish",
		"wp_post_date_gmt":     "2012-03-04 05:06:07",
		"wp_post_modified_gmt": "2013-01-02 03:04:05",
	}
}

func TestAssemblePipeline(t *testing.T) {
	content := `[caption id="attachment_1" align="alignright"]<img src="cat.jpg" style="float: right" /> A cat[/caption]

First para <span style="font-weight: bold">bold</span>
second line

<h2>Section</h2>
<blockquote>Wise words</blockquote>`

	unit, err := newAssembler().Assemble(context.Background(), record(content))
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	var types []string
	for _, b := range unit.Body {
		types = append(types, b.Type)
	}
	want := "image,rich_text,heading,block_quote"
	if got := strings.Join(types, ","); got != want {
		t.Fatalf("Expected block types %s, got %s", want, got)
	}

	img := unit.Body[0].Value.(core.ImageValue)
	if img.Image != 7 || img.Alignment != "right" || img.Caption != "A cat" {
		t.Errorf("Unexpected image block %+v", img)
	}

	text := unit.Body[1].Value.(string)
	if !strings.Contains(text, "<b>bold</b>") || !strings.Contains(text, "<br/>") {
		t.Errorf("Expected restyled paragraph with line break, got %q", text)
	}
	if strings.Contains(text, "style=") {
		t.Errorf("Expected style attributes removed, got %q", text)
	}

	if h := unit.Body[2].Value.(core.HeadingValue); h.Importance != "h2" || h.Text != "Section" {
		t.Errorf("Unexpected heading %+v", h)
	}
	if q := unit.Body[3].Value.(core.QuoteValue); q.Quote != "Wise words" {
		t.Errorf("Unexpected quote %+v", q)
	}
	if len(unit.Skips) != 0 {
		t.Errorf("Expected no skips, got %+v", unit.Skips)
	}
}

func TestAssembleFields(t *testing.T) {
	unit, err := newAssembler().Assemble(context.Background(), record("<p>x</p>"))
	if err != nil {
		t.Fatal(err)
	}

	if unit.Title != "Hello & World" {
		t.Errorf("Expected unescaped title, got %q", unit.Title)
	}
	if unit.Slug != "hello-world" || unit.Flags.SlugChanged {
		t.Errorf("Expected unchanged slug, got %q (changed=%v)", unit.Slug, unit.Flags.SlugChanged)
	}
	if want := time.Date(2012, 3, 4, 5, 6, 7, 0, time.UTC); !unit.FirstPublishedAt.Equal(want) {
		t.Errorf("Expected first published %v, got %v", want, unit.FirstPublishedAt)
	}
	if want := time.Date(2013, 1, 2, 3, 4, 5, 0, time.UTC); !unit.LatestRevisionCreatedAt.Equal(want) {
		t.Errorf("Expected latest revision %v, got %v", want, unit.LatestRevisionCreatedAt)
	}
	if unit.Flags.DateChanged() {
		t.Error("Expected no date flags")
	}
	if unit.PostID != 42 || unit.PostType != "post" || unit.Status != "publish" {
		t.Errorf("Unexpected identifiers %d %s %s", unit.PostID, unit.PostType, unit.Status)
	}
}

func TestAssembleZeroDate(t *testing.T) {
	rec := record("<p>x</p>")
	rec["wp_post_date_gmt"] = ZeroDate

	unit, err := newAssembler().Assemble(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	if !unit.FirstPublishedAt.Equal(PlaceholderDate) {
		t.Errorf("Expected placeholder date, got %v", unit.FirstPublishedAt)
	}
	if !unit.Flags.FirstPublishedChanged || !unit.Flags.DateChanged() {
		t.Error("Expected date changed flag")
	}
	if unit.Flags.LastPublishedChanged {
		t.Error("Expected last published date untouched")
	}
}

func TestAssembleSlugFallback(t *testing.T) {
	tests := []struct {
		name     string
		postName string
		title    string
		want     string
		changed  bool
	}{
		{"kept", "hello-world", "Hello", "hello-world", false},
		{"repaired", "Hello World!", "Hello", "hello-world", true},
		{"percent encoded", "caf%c3%a9-au-lait", "Cafe", "cafe-au-lait", true},
		{"from title", "", "Ça va? Oui.", "ca-va-oui", true},
		{"from id", "", "日本語", "post-42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record("<p>x</p>")
			rec["wp_post_name"] = tt.postName
			rec["title"] = tt.title

			unit, err := newAssembler().Assemble(context.Background(), rec)
			if err != nil {
				t.Fatal(err)
			}
			if unit.Slug != tt.want || unit.Flags.SlugChanged != tt.changed {
				t.Errorf("Expected slug %q (changed=%v), got %q (changed=%v)",
					tt.want, tt.changed, unit.Slug, unit.Flags.SlugChanged)
			}
		})
	}
}

func TestAssembleImageSkips(t *testing.T) {
	unit, err := newAssembler().Assemble(context.Background(), record(`<p>a <img alt="x" /> b</p>`))
	if err != nil {
		t.Fatal(err)
	}
	if len(unit.Skips) != 1 || unit.Skips[0].Reason != "no src provided" {
		t.Fatalf("Expected one no-src skip, got %+v", unit.Skips)
	}
	if s := unit.Skips[0]; s.PostID != 42 || s.Link != "https://example.com/hello-world" {
		t.Errorf("Expected skip tied to the record, got %+v", s)
	}
}

func TestAssemblePostMeta(t *testing.T) {
	rec := record("<p>x</p>")
	rec["wp_postmeta"] = []any{
		core.Record{"wp_meta_key": "_edit_lock", "wp_meta_value": "123"},
		core.Record{"wp_meta_key": "subtitle", "wp_meta_value": "More"},
	}

	unit, err := newAssembler().Assemble(context.Background(), rec)
	if err != nil {
		t.Fatal(err)
	}
	if len(unit.Meta) != 1 || unit.Meta["subtitle"] != "More" {
		t.Errorf("Expected only public meta, got %v", unit.Meta)
	}
}

func TestAssembleKeepStages(t *testing.T) {
	a := newAssembler()
	a.KeepStages = true

	unit, err := a.Assemble(context.Background(), record("text"))
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, s := range unit.Stages {
		names = append(names, s.Name)
	}
	want := "extracted,normalized,shortcoded,styled,autop'd,sanitized"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("Expected stages %s, got %s", want, got)
	}
	if last := unit.Stages[len(unit.Stages)-1].HTML; last != "<p>text</p>\n" {
		t.Errorf("Expected sanitized paragraph, got %q", last)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"Héllo Wörld!", "hello-world"},
		{"  --a_b--  ", "a_b"},
		{"one -- two", "one-two"},
		{"日本語", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAssembleExistingBreaks(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		breaks     int
		paragraphs int
	}{
		{"xhtml break before newline", "line one<br />\nline two", 1, 1},
		{"html break before newline", "line one<br>\nline two", 1, 1},
		{"double break splits paragraphs", "para one<br /><br />para two", 0, 2},
		{"double break across lines", "para one<br/>\n<br/>\npara two", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := newAssembler().Assemble(context.Background(), record(tt.content))
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if len(unit.Body) != 1 || unit.Body[0].Type != core.BlockRichText {
				t.Fatalf("Expected a single rich_text block, got %+v", unit.Body)
			}
			text := unit.Body[0].Value.(string)
			if got := strings.Count(text, "<br"); got != tt.breaks {
				t.Errorf("Expected %d breaks, got %d in %q", tt.breaks, got, text)
			}
			if got := strings.Count(text, "<p>"); got != tt.paragraphs {
				t.Errorf("Expected %d paragraphs, got %d in %q", tt.paragraphs, got, text)
			}
		})
	}
}
