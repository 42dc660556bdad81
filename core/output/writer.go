// Package output handles file naming and writing for preview outputs.
// Files are laid out as <output_dir>/<post_type>/<slug><ext>.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write stores data for one unit and returns the written path.
// Example: ("page", "about-us", ".md") → <dir>/page/about-us.md
func (w *Writer) Write(postType, slug string, data []byte, ext string) (string, error) {
	dir := filepath.Join(w.OutputDir, sanitize(postType, "unknown"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, sanitize(slug, "untitled")+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// sanitize replaces characters outside [A-Za-z0-9_-] with underscores.
func sanitize(s, fallback string) string {
	if strings.Trim(s, ".") == "" {
		return fallback
	}
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
