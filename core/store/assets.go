package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gaurav-prasanna/pressblocks/core"
)

// Assets is the image asset store.
type Assets struct {
	db *sql.DB
}

// FindByTitle returns the oldest asset with the given title, or nil.
func (a *Assets) FindByTitle(ctx context.Context, title string) (*core.Asset, error) {
	var asset core.Asset
	err := a.db.QueryRowContext(ctx, `
		SELECT id, title, source_url, content_type
		FROM assets
		WHERE title = ?
		ORDER BY id
		LIMIT 1
	`, title).Scan(&asset.ID, &asset.Title, &asset.SourceURL, &asset.ContentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding asset %q: %w", title, err)
	}
	return &asset, nil
}

// Create stores image bytes as a new asset.
func (a *Assets) Create(ctx context.Context, data []byte, title, sourceURL, contentType string) (*core.Asset, error) {
	res, err := a.db.ExecContext(ctx, `
		INSERT INTO assets (title, source_url, content_type, data)
		VALUES (?, ?, ?, ?)
	`, title, sourceURL, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("creating asset %q: %w", title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating asset %q: %w", title, err)
	}
	return &core.Asset{ID: id, Title: title, SourceURL: sourceURL, ContentType: contentType}, nil
}

// Data returns the stored bytes of an asset.
func (a *Assets) Data(ctx context.Context, id int64) ([]byte, error) {
	var data []byte
	err := a.db.QueryRowContext(ctx, `SELECT data FROM assets WHERE id = ?`, id).Scan(&data)
	if err != nil {
		return nil, fmt.Errorf("loading asset %d: %w", id, err)
	}
	return data, nil
}
