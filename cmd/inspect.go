// Package cmd: inspect command.
package cmd

import (
	"fmt"
	"os"

	"github.com/gaurav-prasanna/pressblocks/core/channel"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <export.xml>",
	Short: "Summarize the channel and item counts of a WXR export",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	s, err := channel.New().Inspect(f)
	if err != nil {
		return err
	}

	out := os.Stdout
	fmt.Fprintf(out, "Title:         %s\n", s.Title)
	fmt.Fprintf(out, "Link:          %s\n", s.Link)
	fmt.Fprintf(out, "Base site URL: %s\n", s.BaseSiteURL)
	fmt.Fprintf(out, "WXR version:   %s\n", s.WXRVersion)
	fmt.Fprintf(out, "Language:      %s\n", s.Language)
	fmt.Fprintf(out, "Authors: %d  Categories: %d  Tags: %d\n", s.Authors, s.Categories, s.Tags)
	fmt.Fprintf(out, "\nItems: %d\n", s.Items)
	for _, t := range channel.Keys(s.PostTypes) {
		fmt.Fprintf(out, "  %-16s %d\n", t, s.PostTypes[t])
	}
	fmt.Fprintf(out, "\nStatuses:\n")
	for _, st := range channel.Keys(s.Statuses) {
		fmt.Fprintf(out, "  %-16s %d\n", st, s.Statuses[st])
	}
	if s.BaseSiteURL != "" && cfg.SourceDomain == "" {
		fmt.Fprintf(out, "\nHint: pass --source-domain %s to resolve relative image references\n", s.BaseSiteURL)
	}
	return nil
}
