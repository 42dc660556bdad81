// Package cmd: trim command.
package cmd

import (
	"fmt"
	"os"

	"github.com/gaurav-prasanna/pressblocks/core/extract"
	"github.com/spf13/cobra"
)

var flagSkip []string

var trimCmd = &cobra.Command{
	Use:   "trim <in.xml> <out.xml>",
	Short: "Copy an export without comment subtrees to shrink it before import",
	Long: `Trim streams a WordPress export to a new file, dropping every element named
in skip_tags (default wp:comment) together with its content.

Examples:
  pressblocks trim export.xml export-small.xml
  pressblocks trim export.xml out.xml --skip wp:comment --skip wp:postmeta`,
	Args: cobra.ExactArgs(2),
	RunE: runTrim,
}

func init() {
	rootCmd.AddCommand(trimCmd)

	trimCmd.Flags().StringSliceVar(&flagSkip, "skip", nil, "Element names to drop (default: skip_tags from config)")
}

func runTrim(cmd *cobra.Command, args []string) error {
	skip := cfg.SkipTags
	if cmd.Flags().Changed("skip") {
		skip = flagSkip
	}
	if len(skip) == 0 {
		return fmt.Errorf("nothing to trim: no skip tags configured")
	}

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer in.Close()

	out, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("creating %s: %w", args[1], err)
	}
	defer out.Close()

	removed, err := extract.Trim(in, out, skip)
	if err != nil {
		return fmt.Errorf("trim: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", args[1], err)
	}

	fmt.Fprintf(os.Stdout, "✓ Removed %d elements, written: %s\n", removed, args[1])
	return nil
}
