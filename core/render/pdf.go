// Package render: PDF renderer.
// Renders the Markdown preview of a unit into a styled PDF using gofpdf.
// Handles headings (variable font sizes), paragraphs, quotes, raw HTML
// blocks and lists. Images are shown as their asset reference.
package render

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/pressblocks/core"
	"github.com/jung-kurt/gofpdf"
)

var (
	numberedItem = regexp.MustCompile(`^\d+\.\s`)
	italicRun    = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	imageSyntax  = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	linkSyntax   = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
)

// PDFRenderer renders a unit as a PDF document.
type PDFRenderer struct {
	markdown *MarkdownRenderer
}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{markdown: NewMarkdownRenderer()}
}

// Render converts the unit into PDF bytes.
func (r *PDFRenderer) Render(unit *core.ImportableUnit) ([]byte, error) {
	md, err := r.markdown.Render(unit)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if unit.Title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, tr(unit.Title), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, tr("Source: "+unit.Link), "", "L", false)
	pdf.MultiCell(0, 5, tr("Published: "+unit.FirstPublishedAt.Format(dateLayout)), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	inCodeBlock := false
	for _, line := range bodyLines(string(md)) {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCodeBlock = !inCodeBlock
			pdf.Ln(2)
			continue
		}

		if inCodeBlock {
			pdf.SetFont("Courier", "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4.5, tr(line), "", "L", true)
			continue
		}

		if strings.TrimSpace(line) == "" {
			pdf.Ln(3)
			continue
		}

		if strings.HasPrefix(line, "#") {
			level := len(line) - len(strings.TrimLeft(line, "#"))
			renderHeading(pdf, tr(strings.TrimSpace(strings.TrimLeft(line, "# "))), level)
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, ">"):
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetX(pdf.GetX() + 6)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(strings.TrimPrefix(trimmed, ">"))), "", "L", false)
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr("• "+cleanInlineMarkdown(trimmed[2:])), "", "L", false)
		case numberedItem.MatchString(trimmed):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(trimmed)), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(line)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// bodyLines drops the front matter of a Markdown preview.
func bodyLines(md string) []string {
	lines := strings.Split(md, "\n")
	if len(lines) == 0 || lines[0] != "---" {
		return lines
	}
	for i := 1; i < len(lines); i++ {
		if lines[i] == "---" {
			return lines[i+1:]
		}
	}
	return lines
}

// renderHeading sets the font size based on heading level and writes text.
func renderHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, cleanInlineMarkdown(text), "", "L", false)
	pdf.Ln(2)
}

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
// Images become "[image: caption (asset:N)]".
func cleanInlineMarkdown(text string) string {
	text = imageSyntax.ReplaceAllString(text, "[image: $1 ($2)]")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = italicRun.ReplaceAllString(text, " $1 ")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = linkSyntax.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
