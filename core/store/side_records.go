package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/pressblocks/core"
)

// SideRecords stores side-channel records (authors, categories, tags)
// collected by the extractor's tag cache.
type SideRecords struct {
	db *sql.DB
}

// Save stores recs under tag and returns how many were new. Records already
// stored under the same tag are ignored.
func (s *SideRecords) Save(ctx context.Context, tag string, recs []core.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var added int
	for _, rec := range recs {
		payload, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("encoding %s record: %w", tag, err)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO side_records (tag, payload) VALUES (?, ?)
		`, tag, string(payload))
		if err != nil {
			return 0, fmt.Errorf("saving %s record: %w", tag, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("saving %s record: %w", tag, err)
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s records: %w", tag, err)
	}
	return added, nil
}

// List returns the records stored under tag in insertion order.
func (s *SideRecords) List(ctx context.Context, tag string) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM side_records WHERE tag = ? ORDER BY id`, tag)
	if err != nil {
		return nil, fmt.Errorf("listing %s records: %w", tag, err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning %s record: %w", tag, err)
		}
		var rec core.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decoding %s record: %w", tag, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
