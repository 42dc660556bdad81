// Package cmd implements the CLI commands for pressblocks using Cobra.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gaurav-prasanna/pressblocks/core/assemble"
	"github.com/gaurav-prasanna/pressblocks/core/config"
	"github.com/gaurav-prasanna/pressblocks/core/extract"
	"github.com/gaurav-prasanna/pressblocks/core/fetch"
	"github.com/gaurav-prasanna/pressblocks/core/logger"
	"github.com/gaurav-prasanna/pressblocks/core/shortcode"
	"github.com/gaurav-prasanna/pressblocks/core/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Persistent flag variables.
var (
	flagConfig       string
	flagDatabase     string
	flagLogLevel     string
	flagLogFormat    string
	flagSourceDomain string
)

// Loaded by the root command before any subcommand runs.
var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pressblocks",
	Short: "pressblocks: convert WordPress exports into typed content blocks",
	Long: `pressblocks reads a WordPress WXR export, rewrites each post's HTML body
into an ordered list of typed content blocks and stores the result.

Usage:
  pressblocks import <export.xml> [flags]
  pressblocks preview <export.xml> --markdown|--json|--pdf [flags]
  pressblocks inspect <export.xml>
  pressblocks trim <in.xml> <out.xml>`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "YAML config file (default: built-in defaults)")
	pf.StringVar(&flagDatabase, "db", "", "SQLite database path (overrides config)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format: console or json")
	pf.StringVar(&flagSourceDomain, "source-domain", "", "Domain prefixed to relative image references, e.g. https://blog.example.com")
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// setup loads the config file, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd.Flags(), c); err != nil {
		return err
	}

	cfg = c
	log = logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	return nil
}

// applyOverrides copies explicitly set persistent flags onto the config.
func applyOverrides(fs *pflag.FlagSet, c *config.Config) error {
	if fs.Changed("db") {
		c.Database = flagDatabase
	}
	if fs.Changed("log-level") {
		c.Log.Level = flagLogLevel
	}
	if fs.Changed("log-format") {
		c.Log.Format = flagLogFormat
	}
	if fs.Changed("source-domain") {
		c.SourceDomain = flagSourceDomain
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// newExtractor creates a record extractor over an export stream.
func newExtractor(r io.Reader) *extract.Extractor {
	return extract.New(r, extract.Options{
		ItemTag:   cfg.ItemTag,
		CacheTags: cfg.CacheTags,
		SkipTags:  cfg.SkipTags,
	})
}

// newAssembler wires the HTML pipeline to the asset store of st.
func newAssembler(st *store.Store, offline bool) (*assemble.Assembler, error) {
	registry, err := shortcode.NewConfiguredRegistry(cfg.Shortcodes)
	if err != nil {
		return nil, fmt.Errorf("registering shortcodes: %w", err)
	}
	resolver := fetch.New(st.Assets, cfg.Images, cfg.SourceDomain, log)
	resolver.Offline = offline
	return assemble.New(cfg, registry, resolver, log), nil
}
