// Package core defines the shared types and stage interfaces for pressblocks.
// Each stage of the HTML-to-blocks pipeline is a small, testable interface.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// Asset is an image stored in the target asset store.
type Asset struct {
	ID          int64
	Title       string
	SourceURL   string
	ContentType string
}

// SaveStatus reports what the persistence sink did with a unit.
type SaveStatus string

const (
	StatusCreated SaveStatus = "created"
	StatusUpdated SaveStatus = "updated"
)

// SourceRef identifies the source record a skip or flag belongs to.
type SourceRef struct {
	PostID int
	Title  string
	Link   string
}

// Stage is the name of a pipeline stage output kept for debugging.
type Stage struct {
	Name string `json:"name"`
	HTML string `json:"html"`
}

// ImportableUnit is the assembled result for one record.
type ImportableUnit struct {
	Title                   string            `json:"title"`
	Slug                    string            `json:"slug"`
	FirstPublishedAt        time.Time         `json:"first_published_at"`
	LastPublishedAt         time.Time         `json:"last_published_at"`
	LatestRevisionCreatedAt time.Time         `json:"latest_revision_created_at"`
	PostID                  int               `json:"wp_post_id"`
	PostType                string            `json:"wp_post_type"`
	Status                  string            `json:"wp_status"`
	Link                    string            `json:"wp_link"`
	Body                    []Block           `json:"body"`
	Meta                    map[string]string `json:"meta,omitempty"`
	Stages                  []Stage           `json:"stages,omitempty"`
	Flags                   Flags             `json:"flags"`
	Skips                   []Skip            `json:"skips,omitempty"`
	RunID                   string            `json:"run_id,omitempty"`
}

// Flags records validation fallbacks applied during assembly.
type Flags struct {
	SlugChanged                  bool `json:"slug_changed"`
	FirstPublishedChanged        bool `json:"first_published_at_changed"`
	LastPublishedChanged         bool `json:"last_published_at_changed"`
	LatestRevisionCreatedChanged bool `json:"latest_revision_created_at_changed"`
}

// DateChanged reports whether any timestamp was replaced by the placeholder.
func (f Flags) DateChanged() bool {
	return f.FirstPublishedChanged || f.LastPublishedChanged || f.LatestRevisionCreatedChanged
}

// Ref returns the source reference of the unit.
func (u *ImportableUnit) Ref() SourceRef {
	return SourceRef{PostID: u.PostID, Title: u.Title, Link: u.Link}
}

// BodyJSON serializes the block sequence. HTML in block values is not
// escaped.
func (u *ImportableUnit) BodyJSON() ([]byte, error) {
	if u.Body == nil {
		return []byte("[]"), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(u.Body); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Rewriter is one string-to-string HTML stage of the pipeline.
type Rewriter interface {
	Rewrite(html string) (string, error)
}

// AssetStore finds and creates image assets.
type AssetStore interface {
	FindByTitle(ctx context.Context, title string) (*Asset, error)
	Create(ctx context.Context, data []byte, title, sourceURL, contentType string) (*Asset, error)
}

// ImageResolver turns an image reference into a stored asset.
// A nil asset means the image could not be resolved; the reason is in log.
type ImageResolver interface {
	Resolve(ctx context.Context, src string, ref SourceRef, log *SkipLog) *Asset
}

// Sink persists finished units.
type Sink interface {
	Save(ctx context.Context, unit *ImportableUnit) (SaveStatus, error)
}

// Renderer converts a unit into a preview output format.
type Renderer interface {
	Render(unit *ImportableUnit) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
