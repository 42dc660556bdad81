// Package render: JSON renderer.
// Emits the assembled unit with its block list in the target schema, plus a
// structure summary (heading outline, block counts, referenced assets).
package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/pressblocks/core"
)

// JSONRenderer produces structured JSON output for a unit.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

type pageJSON struct {
	*core.ImportableUnit
	Structure pageStructure `json:"structure"`
}

type pageStructure struct {
	Headings    []core.HeadingValue `json:"headings"`
	BlockCounts map[string]int      `json:"block_counts"`
	Assets      []int64             `json:"assets"`
}

// Render converts the unit into indented JSON. HTML in block values is
// written unescaped.
func (r *JSONRenderer) Render(unit *core.ImportableUnit) ([]byte, error) {
	page := pageJSON{
		ImportableUnit: unit,
		Structure:      buildStructure(unit.Body),
	}
	if page.Body == nil {
		clone := *unit
		clone.Body = []core.Block{}
		page.ImportableUnit = &clone
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(page); err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

func buildStructure(body []core.Block) pageStructure {
	s := pageStructure{
		Headings:    []core.HeadingValue{},
		BlockCounts: map[string]int{},
		Assets:      []int64{},
	}
	for _, b := range body {
		s.BlockCounts[b.Type]++
		switch v := b.Value.(type) {
		case core.HeadingValue:
			s.Headings = append(s.Headings, v)
		case core.ImageValue:
			s.Assets = append(s.Assets, v.Image)
		}
	}
	return s
}
