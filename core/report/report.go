// Package report writes the per-item import report as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Row statuses.
const (
	StatusCreated      = "created"
	StatusUpdated      = "updated"
	StatusDryRun       = "dry_run"
	StatusSkipped      = "skipped"
	StatusImageSkipped = "image_skipped"
	StatusFlagged      = "flagged"
)

var header = []string{"run_id", "post_id", "title", "link", "status", "reason"}

// Row is one line of the report.
type Row struct {
	RunID  string
	PostID int
	Title  string
	Link   string
	Status string
	Reason string
}

// Writer writes rows as CSV, header first.
type Writer struct {
	w           *csv.Writer
	wroteHeader bool
	rows        int
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// Write appends one row.
func (w *Writer) Write(r Row) error {
	if !w.wroteHeader {
		if err := w.w.Write(header); err != nil {
			return fmt.Errorf("writing report header: %w", err)
		}
		w.wroteHeader = true
	}
	err := w.w.Write([]string{r.RunID, strconv.Itoa(r.PostID), r.Title, r.Link, r.Status, r.Reason})
	if err != nil {
		return fmt.Errorf("writing report row: %w", err)
	}
	w.rows++
	return nil
}

// Rows returns the number of rows written, header excluded.
func (w *Writer) Rows() int {
	return w.rows
}

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	if !w.wroteHeader {
		if err := w.w.Write(header); err != nil {
			return fmt.Errorf("writing report header: %w", err)
		}
		w.wroteHeader = true
	}
	w.w.Flush()
	return w.w.Error()
}
