// Package cmd: preview command.
// Runs extraction and assembly and writes one rendered file per unit
// instead of saving pages.
package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/gaurav-prasanna/pressblocks/core"
	"github.com/gaurav-prasanna/pressblocks/core/assemble"
	"github.com/gaurav-prasanna/pressblocks/core/output"
	"github.com/gaurav-prasanna/pressblocks/core/render"
	"github.com/gaurav-prasanna/pressblocks/core/store"
	"github.com/spf13/cobra"
)

var (
	flagPDF       bool
	flagMarkdown  bool
	flagJSON      bool
	flagPostID    int
	flagOutputDir string
	flagOffline   bool
	flagStages    bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <export.xml>",
	Short: "Render assembled units to Markdown, JSON or PDF files",
	Long: `Preview assembles the items of a WordPress export and writes each unit to
<output_dir>/<post_type>/<slug>.<ext> in the chosen format.

Examples:
  pressblocks preview export.xml --markdown
  pressblocks preview export.xml --json --post-id 42 --stages
  pressblocks preview export.xml --pdf --offline --output_dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	// Output format flags (mutually exclusive).
	previewCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	previewCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown")
	previewCmd.Flags().BoolVar(&flagJSON, "json", false, "Output structured JSON")

	previewCmd.Flags().IntVar(&flagPostID, "post-id", 0, "Only preview the item with this WordPress post id")
	previewCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
	previewCmd.Flags().BoolVar(&flagOffline, "offline", false, "Use an in-memory asset store and never fetch images")
	previewCmd.Flags().BoolVar(&flagStages, "stages", false, "Keep intermediate HTML of every pipeline stage (JSON output)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	renderer, err := selectRenderer()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	dbPath := cfg.Database
	if flagOffline {
		dbPath = ":memory:"
	}
	st, err := store.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	assembler, err := newAssembler(st, flagOffline)
	if err != nil {
		return err
	}
	assembler.KeepStages = flagStages

	written, failed := 0, 0
	for rec, err := range newExtractor(f).All() {
		if err != nil {
			return fmt.Errorf("extracting records: %w", err)
		}
		if !wanted(rec) {
			continue
		}

		path, err := previewRecord(ctx, assembler, renderer, writer, rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ Failed: post %d: %v\n", rec.Int("wp_post_id"), err)
			failed++
		} else {
			fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)
			written++
		}

		if flagPostID != 0 {
			break
		}
	}

	if flagPostID != 0 && written+failed == 0 {
		return fmt.Errorf("post %d not found", flagPostID)
	}
	fmt.Fprintf(os.Stdout, "\n✓ Done: %d written, %d failed\n", written, failed)
	return nil
}

// wanted selects records by --post-id, or by the configured post types.
func wanted(rec core.Record) bool {
	if flagPostID != 0 {
		return rec.Int("wp_post_id") == flagPostID
	}
	return slices.Contains(cfg.PostTypes, rec.String("wp_post_type"))
}

// previewRecord assembles, renders and writes one record.
func previewRecord(ctx context.Context, assembler *assemble.Assembler, renderer core.Renderer, writer *output.Writer, rec core.Record) (string, error) {
	unit, err := assembler.Assemble(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("assemble: %w", err)
	}
	for _, skip := range unit.Skips {
		fmt.Fprintf(os.Stderr, "  ! %s\n", skip.Reason)
	}

	data, err := renderer.Render(unit)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return writer.Write(unit.PostType, unit.Slug, data, renderer.Extension())
}

// validateFlags checks that exactly one output format is chosen.
func validateFlags() error {
	formatCount := 0
	for _, set := range []bool{flagPDF, flagMarkdown, flagJSON} {
		if set {
			formatCount++
		}
	}

	if formatCount == 0 {
		return fmt.Errorf("exactly one output format is required: --pdf, --markdown or --json")
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}
	return nil
}

// selectRenderer creates the appropriate Renderer based on flags.
func selectRenderer() (core.Renderer, error) {
	if err := validateFlags(); err != nil {
		return nil, err
	}
	switch {
	case flagMarkdown:
		return render.NewMarkdownRenderer(), nil
	case flagJSON:
		return render.NewJSONRenderer(), nil
	case flagPDF:
		return render.NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("no output format selected")
	}
}
