package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gaurav-prasanna/pressblocks/core"
)

const timeLayout = time.RFC3339

// Pages is the page sink.
type Pages struct {
	db *sql.DB
}

// Page is a stored page row.
type Page struct {
	ID                      int64
	PostID                  int
	PostType                string
	Status                  string
	Link                    string
	Title                   string
	Slug                    string
	FirstPublishedAt        time.Time
	LastPublishedAt         time.Time
	LatestRevisionCreatedAt time.Time
	Body                    string
	Meta                    map[string]string
	RunID                   string
}

// Save inserts the unit, or updates the page with the same source post id.
func (p *Pages) Save(ctx context.Context, unit *core.ImportableUnit) (core.SaveStatus, error) {
	body, err := unit.BodyJSON()
	if err != nil {
		return "", fmt.Errorf("encoding body of post %d: %w", unit.PostID, err)
	}
	meta := unit.Meta
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encoding meta of post %d: %w", unit.PostID, err)
	}

	existing, err := p.Get(ctx, unit.PostID)
	if err != nil {
		return "", err
	}

	args := []any{
		unit.PostType, unit.Status, unit.Link, unit.Title, unit.Slug,
		formatTime(unit.FirstPublishedAt), formatTime(unit.LastPublishedAt), formatTime(unit.LatestRevisionCreatedAt),
		string(body), string(metaJSON), unit.RunID, unit.PostID,
	}

	if existing != nil {
		_, err = p.db.ExecContext(ctx, `
			UPDATE pages
			SET wp_post_type = ?, wp_status = ?, wp_link = ?, title = ?, slug = ?,
				first_published_at = ?, last_published_at = ?, latest_revision_created_at = ?,
				body = ?, meta = ?, run_id = ?, updated_at = CURRENT_TIMESTAMP
			WHERE wp_post_id = ?
		`, args...)
		if err != nil {
			return "", fmt.Errorf("updating post %d: %w", unit.PostID, err)
		}
		return core.StatusUpdated, nil
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO pages (wp_post_type, wp_status, wp_link, title, slug,
			first_published_at, last_published_at, latest_revision_created_at,
			body, meta, run_id, wp_post_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return "", fmt.Errorf("inserting post %d: %w", unit.PostID, err)
	}
	return core.StatusCreated, nil
}

// Get returns the page for a source post id, or nil if there is none.
func (p *Pages) Get(ctx context.Context, postID int) (*Page, error) {
	var (
		page                  Page
		first, last, revision string
		metaJSON              string
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT id, wp_post_id, wp_post_type, wp_status, wp_link, title, slug,
			first_published_at, last_published_at, latest_revision_created_at,
			body, meta, run_id
		FROM pages
		WHERE wp_post_id = ?
	`, postID).Scan(
		&page.ID, &page.PostID, &page.PostType, &page.Status, &page.Link, &page.Title, &page.Slug,
		&first, &last, &revision, &page.Body, &metaJSON, &page.RunID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading post %d: %w", postID, err)
	}

	if page.FirstPublishedAt, err = parseTime(first); err != nil {
		return nil, fmt.Errorf("decoding first_published_at of post %d: %w", postID, err)
	}
	if page.LastPublishedAt, err = parseTime(last); err != nil {
		return nil, fmt.Errorf("decoding last_published_at of post %d: %w", postID, err)
	}
	if page.LatestRevisionCreatedAt, err = parseTime(revision); err != nil {
		return nil, fmt.Errorf("decoding latest_revision_created_at of post %d: %w", postID, err)
	}
	if err := json.Unmarshal([]byte(metaJSON), &page.Meta); err != nil {
		return nil, fmt.Errorf("decoding meta of post %d: %w", postID, err)
	}
	return &page, nil
}

// Count returns the number of stored pages.
func (p *Pages) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
