// Package cmd: import command.
// This is the main command that orchestrates the pipeline:
// extract → assemble (rewrite, segment, resolve images) → store → report.
package cmd

import (
	"fmt"
	"os"

	"github.com/gaurav-prasanna/pressblocks/core"
	"github.com/gaurav-prasanna/pressblocks/core/importer"
	"github.com/gaurav-prasanna/pressblocks/core/report"
	"github.com/gaurav-prasanna/pressblocks/core/store"
	"github.com/spf13/cobra"
)

var (
	flagReport string
	flagDryRun bool
	flagLimit  int
)

var importCmd = &cobra.Command{
	Use:   "import <export.xml>",
	Short: "Import a WXR export into the page store",
	Long: `Import streams the items of a WordPress export, converts each post body into
typed content blocks, downloads referenced images into the asset store and
saves the result as pages keyed by WordPress post id.

Examples:
  pressblocks import export.xml --source-domain https://blog.example.com
  pressblocks import export.xml --report report.csv
  pressblocks import export.xml --dry-run --limit 20 --log-level debug`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&flagReport, "report", "", "Write a per-item CSV report to this path")
	importCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Assemble records without saving pages")
	importCmd.Flags().IntVar(&flagLimit, "limit", 0, "Stop after this many records (0 = all)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. Open the export
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	// 2. Open the database
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	// 3. Prepare the report
	var reporter importer.Reporter
	var rw *report.Writer
	if flagReport != "" {
		rf, err := os.Create(flagReport)
		if err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		defer rf.Close()
		rw = report.NewWriter(rf)
		reporter = rw
	}

	// 4. Run
	assembler, err := newAssembler(st, false)
	if err != nil {
		return err
	}
	imp := importer.New(assembler, st.Pages, st.SideRecords, reporter, importer.Options{
		PostTypes: cfg.PostTypes,
		Statuses:  cfg.Statuses,
		DryRun:    flagDryRun,
		Limit:     flagLimit,
	}, log)
	stats, runErr := imp.Run(ctx, newExtractor(f))

	if rw != nil {
		if err := rw.Flush(); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(os.Stdout, "✓ Report: %s (%d rows)\n", flagReport, rw.Rows())
	}
	printStats(imp.RunID(), stats)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "✗ Import stopped after %d records\n", stats.Processed)
		return fmt.Errorf("import: %w", runErr)
	}
	return nil
}

func printStats(runID string, s core.Stats) {
	verb := "Imported"
	if flagDryRun {
		verb = "Assembled (dry run)"
	}
	fmt.Fprintf(os.Stdout, "✓ Run %s\n", runID)
	fmt.Fprintf(os.Stdout, "✓ %s %d of %d records: %d created, %d updated, %d skipped, %d image skips\n",
		verb, s.Imported, s.Processed, s.Created, s.Updated, s.Skipped, s.ImageSkips)
}
