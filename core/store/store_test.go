package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gaurav-prasanna/pressblocks/core"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleUnit() *core.ImportableUnit {
	return &core.ImportableUnit{
		Title:                   "Hello",
		Slug:                    "hello",
		FirstPublishedAt:        time.Date(2012, 3, 4, 5, 6, 7, 0, time.UTC),
		LastPublishedAt:         time.Date(2013, 3, 4, 5, 6, 7, 0, time.UTC),
		LatestRevisionCreatedAt: time.Date(2013, 3, 4, 5, 6, 7, 0, time.UTC),
		PostID:                  42,
		PostType:                "post",
		Status:                  "publish",
		Link:                    "https://example.com/hello",
		Body:                    []core.Block{core.RichText("<p>Hi</p>"), core.Heading("h2", "Part")},
		Meta:                    map[string]string{"subtitle": "More"},
		RunID:                   "run-1",
	}
}

func TestPagesSaveCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	unit := sampleUnit()

	status, err := s.Pages.Save(ctx, unit)
	if err != nil {
		t.Fatal(err)
	}
	if status != core.StatusCreated {
		t.Errorf("Expected created, got %s", status)
	}

	unit.Title = "Hello again"
	unit.RunID = "run-2"
	status, err = s.Pages.Save(ctx, unit)
	if err != nil {
		t.Fatal(err)
	}
	if status != core.StatusUpdated {
		t.Errorf("Expected updated, got %s", status)
	}

	n, err := s.Pages.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Expected 1 page, got %d", n)
	}

	page, err := s.Pages.Get(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if page.Title != "Hello again" || page.RunID != "run-2" {
		t.Errorf("Expected updated row, got %+v", page)
	}
	wantBody := `[{"type":"rich_text","value":"<p>Hi</p>"},{"type":"heading","value":{"importance":"h2","text":"Part"}}]`
	if page.Body != wantBody {
		t.Errorf("Expected body %s, got %s", wantBody, page.Body)
	}
	if !page.FirstPublishedAt.Equal(unit.FirstPublishedAt) {
		t.Errorf("Expected first published %v, got %v", unit.FirstPublishedAt, page.FirstPublishedAt)
	}
	if page.Meta["subtitle"] != "More" {
		t.Errorf("Expected meta round trip, got %v", page.Meta)
	}
}

func TestPagesGetMissing(t *testing.T) {
	page, err := openTest(t).Pages.Get(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if page != nil {
		t.Errorf("Expected nil page, got %+v", page)
	}
}

func TestPagesGetCorruptTimestamp(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	if _, err := s.Pages.Save(ctx, sampleUnit()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE pages SET last_published_at = 'not a time' WHERE wp_post_id = 42`); err != nil {
		t.Fatal(err)
	}

	page, err := s.Pages.Get(ctx, 42)
	if err == nil || !strings.Contains(err.Error(), "last_published_at") {
		t.Fatalf("Expected timestamp decode error, got page=%+v err=%v", page, err)
	}
}

func TestAssets(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	missing, err := s.Assets.FindByTitle(ctx, "cat.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("Expected no asset, got %+v", missing)
	}

	created, err := s.Assets.Create(ctx, []byte("\x89PNG"), "cat.jpg", "https://example.com/cat.jpg", "image/png")
	if err != nil {
		t.Fatal(err)
	}

	found, err := s.Assets.FindByTitle(ctx, "cat.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if found == nil || found.ID != created.ID || found.SourceURL != "https://example.com/cat.jpg" {
		t.Errorf("Expected asset %d, got %+v", created.ID, found)
	}

	data, err := s.Assets.Data(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "\x89PNG" {
		t.Errorf("Expected stored bytes, got %q", data)
	}
}

func TestSideRecordsDeduplicate(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	authors := []core.Record{
		{"wp_author_login": "admin", "wp_author_id": 1},
		{"wp_author_login": "editor", "wp_author_id": 2},
	}

	n, err := s.SideRecords.Save(ctx, "wp:author", authors)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Expected 2 new records, got %d", n)
	}

	n, err = s.SideRecords.Save(ctx, "wp:author", authors[:1])
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Expected duplicate to be ignored, got %d new", n)
	}

	list, err := s.SideRecords.List(ctx, "wp:author")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[1].String("wp_author_login") != "editor" {
		t.Errorf("Unexpected records %v", list)
	}
}

func TestOpenFileReappliesMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pages.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Pages.Save(ctx, sampleUnit()); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("Reopening: %v", err)
	}
	defer s.Close()
	if n, _ := s.Pages.Count(ctx); n != 1 {
		t.Errorf("Expected page to survive reopen, got %d", n)
	}
}
