package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/pressblocks/core"
	"github.com/gaurav-prasanna/pressblocks/core/assemble"
	"github.com/gaurav-prasanna/pressblocks/core/config"
	"github.com/gaurav-prasanna/pressblocks/core/extract"
	"github.com/gaurav-prasanna/pressblocks/core/report"
	"github.com/gaurav-prasanna/pressblocks/core/shortcode"
	"github.com/rs/zerolog"
)

const sampleWXR = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:wp="http://wordpress.org/export/1.2/">
<channel>
	<wp:author><wp:author_login>admin</wp:author_login></wp:author>
	<wp:category><wp:category_nicename>news</wp:category_nicename></wp:category>
	<item>
		<title>First</title>
		<link>https://example.com/first</link>
		<content:encoded><![CDATA[Hello <img src="" /> world]]></content:encoded>
		<wp:post_id>1</wp:post_id>
		<wp:post_name>first</wp:post_name>
		<wp:post_type>post</wp:post_type>
		<wp:status>publish</wp:status>
		<wp:post_date_gmt>2012-01-01 10:00:00</wp:post_date_gmt>
		<wp:post_modified_gmt>2012-01-02 10:00:00</wp:post_modified_gmt>
	</item>
	<item>
		<title>About</title>
		<content:encoded><![CDATA[<h2>About us</h2>]]></content:encoded>
		<wp:post_id>2</wp:post_id>
		<wp:post_name>about</wp:post_name>
		<wp:post_type>page</wp:post_type>
		<wp:status>draft</wp:status>
		<wp:post_date_gmt>0000-00-00 00:00:00</wp:post_date_gmt>
		<wp:post_modified_gmt>2012-01-02 10:00:00</wp:post_modified_gmt>
	</item>
	<item>
		<title>cat.jpg</title>
		<wp:post_id>3</wp:post_id>
		<wp:post_type>attachment</wp:post_type>
		<wp:status>inherit</wp:status>
	</item>
	<item>
		<title>Broken</title>
		<content:encoded><![CDATA[text]]></content:encoded>
		<wp:post_id>4</wp:post_id>
		<wp:post_name>broken</wp:post_name>
		<wp:post_type>post</wp:post_type>
		<wp:status>publish</wp:status>
		<wp:post_date_gmt>2012-01-01 10:00:00</wp:post_date_gmt>
		<wp:post_modified_gmt>2012-01-02 10:00:00</wp:post_modified_gmt>
	</item>
</channel>
</rss>`

type memSink struct {
	saved map[int]*core.ImportableUnit
	fail  int
}

func (m *memSink) Save(_ context.Context, unit *core.ImportableUnit) (core.SaveStatus, error) {
	if unit.PostID == m.fail {
		return "", errors.New("disk full")
	}
	if m.saved == nil {
		m.saved = map[int]*core.ImportableUnit{}
	}
	_, exists := m.saved[unit.PostID]
	m.saved[unit.PostID] = unit
	if exists {
		return core.StatusUpdated, nil
	}
	return core.StatusCreated, nil
}

type memSide struct {
	saved map[string]int
}

func (m *memSide) Save(_ context.Context, tag string, recs []core.Record) (int, error) {
	if m.saved == nil {
		m.saved = map[string]int{}
	}
	m.saved[tag] += len(recs)
	return len(recs), nil
}

type memReport struct {
	rows []report.Row
}

func (m *memReport) Write(r report.Row) error {
	m.rows = append(m.rows, r)
	return nil
}

func (m *memReport) find(postID int, status string) *report.Row {
	for i, r := range m.rows {
		if r.PostID == postID && r.Status == status {
			return &m.rows[i]
		}
	}
	return nil
}

type noImages struct{}

func (noImages) Resolve(_ context.Context, src string, ref core.SourceRef, log *core.SkipLog) *core.Asset {
	if src == "" {
		log.Add(ref, "no src provided")
		return nil
	}
	log.Add(ref, "status code 404")
	return nil
}

func newSource() *extract.Extractor {
	cfg := config.Default()
	return extract.New(strings.NewReader(sampleWXR), extract.Options{
		ItemTag:   cfg.ItemTag,
		CacheTags: cfg.CacheTags,
		SkipTags:  cfg.SkipTags,
	})
}

func newImporter(sink core.Sink, side SideStore, rep Reporter, opts Options) *Importer {
	cfg := config.Default()
	opts.PostTypes = cfg.PostTypes
	opts.Statuses = cfg.Statuses
	a := assemble.New(cfg, shortcode.NewDefaultRegistry(), noImages{}, zerolog.Nop())
	return New(a, sink, side, rep, opts, zerolog.Nop())
}

func TestRun(t *testing.T) {
	sink := &memSink{fail: 4}
	side := &memSide{}
	rep := &memReport{}
	imp := newImporter(sink, side, rep, Options{})

	stats, err := imp.Run(context.Background(), newSource())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := core.Stats{Processed: 4, Imported: 2, Created: 2, Skipped: 2, ImageSkips: 1}
	if stats != want {
		t.Errorf("Expected stats %+v, got %+v", want, stats)
	}

	if r := rep.find(3, report.StatusSkipped); r == nil || r.Reason != "filtered: post_type=attachment status=inherit" {
		t.Errorf("Expected filtered row for attachment, got %+v", r)
	}
	if r := rep.find(4, report.StatusSkipped); r == nil || !strings.Contains(r.Reason, "disk full") {
		t.Errorf("Expected sink failure row, got %+v", r)
	}
	if r := rep.find(1, report.StatusImageSkipped); r == nil || r.Reason != "no src provided" {
		t.Errorf("Expected image skip row, got %+v", r)
	}
	if r := rep.find(2, report.StatusFlagged); r == nil || r.Reason != "date changed: first_published_at" {
		t.Errorf("Expected date flag row, got %+v", r)
	}
	for _, r := range rep.rows {
		if r.RunID != imp.RunID() {
			t.Errorf("Expected run id %s on every row, got %+v", imp.RunID(), r)
		}
	}

	if got := sink.saved[2]; got == nil || got.RunID != imp.RunID() {
		t.Errorf("Expected page 2 saved with the run id, got %+v", got)
	}
	if side.saved["wp:author"] != 1 || side.saved["wp:category"] != 1 {
		t.Errorf("Expected side records saved, got %v", side.saved)
	}
}

func TestRunSecondPassUpdates(t *testing.T) {
	sink := &memSink{}
	if _, err := newImporter(sink, nil, nil, Options{}).Run(context.Background(), newSource()); err != nil {
		t.Fatal(err)
	}
	stats, err := newImporter(sink, nil, nil, Options{}).Run(context.Background(), newSource())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 3 || stats.Created != 0 {
		t.Errorf("Expected 3 updates, got %+v", stats)
	}
}

func TestRunDryRun(t *testing.T) {
	sink := &memSink{}
	side := &memSide{}
	rep := &memReport{}

	stats, err := newImporter(sink, side, rep, Options{DryRun: true}).Run(context.Background(), newSource())
	if err != nil {
		t.Fatal(err)
	}
	if len(sink.saved) != 0 || len(side.saved) != 0 {
		t.Errorf("Expected nothing saved on dry run, got %d pages %d side tags", len(sink.saved), len(side.saved))
	}
	if stats.Imported != 3 {
		t.Errorf("Expected 3 imported, got %d", stats.Imported)
	}
	if rep.find(1, report.StatusDryRun) == nil {
		t.Error("Expected dry run row")
	}
}

func TestRunLimit(t *testing.T) {
	stats, err := newImporter(&memSink{}, nil, nil, Options{Limit: 2}).Run(context.Background(), newSource())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Processed != 2 {
		t.Errorf("Expected 2 processed, got %d", stats.Processed)
	}
}

func TestRunLimitStopsBeforeNextRecord(t *testing.T) {
	doc := `<rss><channel>
<item><title>one</title><wp_post_id>1</wp_post_id></item>
<item><title>two</title><wp_post_id>2</wp_post_id></item>
<item><title>broken</item>
</channel></rss>`
	src := extract.New(strings.NewReader(doc), extract.Options{ItemTag: "item"})

	stats, err := newImporter(&memSink{}, nil, nil, Options{Limit: 2}).Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Expected the malformed record past the limit to be left unread, got %v", err)
	}
	if stats.Processed != 2 {
		t.Errorf("Expected 2 processed, got %d", stats.Processed)
	}
}

func TestRunMalformedXML(t *testing.T) {
	src := extract.New(strings.NewReader(`<rss><channel><item><title>x</item></channel></rss>`), extract.Options{ItemTag: "item"})
	if _, err := newImporter(&memSink{}, nil, nil, Options{}).Run(context.Background(), src); err == nil {
		t.Error("Expected extraction error")
	}
}
