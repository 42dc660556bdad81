// Package importer drives an import run: records come from the extractor,
// go through the assembler and land in the page sink. Every outcome is
// written to the report and counted in the returned Stats.
package importer

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/gaurav-prasanna/pressblocks/core"
	"github.com/gaurav-prasanna/pressblocks/core/report"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const collisionPrefix = "title collision:"

// Source yields extracted records and the side records cached on the way.
type Source interface {
	All() iter.Seq2[core.Record, error]
	CachedTags() map[string][]core.Record
}

// Assembler builds a unit from one record.
type Assembler interface {
	Assemble(ctx context.Context, rec core.Record) (*core.ImportableUnit, error)
}

// SideStore keeps side-channel records such as authors and categories.
type SideStore interface {
	Save(ctx context.Context, tag string, recs []core.Record) (int, error)
}

// Reporter receives one row per outcome.
type Reporter interface {
	Write(r report.Row) error
}

// Options configures a run.
type Options struct {
	PostTypes []string
	Statuses  []string
	// DryRun assembles records without saving pages or side records.
	DryRun bool
	// Limit stops the run after that many records; 0 means no limit.
	Limit int
	// RunID identifies the run in pages and report rows; generated when empty.
	RunID string
}

// Importer runs imports.
type Importer struct {
	assembler Assembler
	sink      core.Sink
	side      SideStore
	reporter  Reporter
	opts      Options
	log       zerolog.Logger
}

// New creates an Importer. side and reporter may be nil.
func New(assembler Assembler, sink core.Sink, side SideStore, reporter Reporter, opts Options, log zerolog.Logger) *Importer {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Importer{
		assembler: assembler,
		sink:      sink,
		side:      side,
		reporter:  reporter,
		opts:      opts,
		log:       log.With().Str("run_id", opts.RunID).Logger(),
	}
}

// RunID returns the identifier of the run.
func (i *Importer) RunID() string {
	return i.opts.RunID
}

// Run imports every record from src. Record-level failures are reported
// and counted as skipped; only extraction and report errors end the run.
func (i *Importer) Run(ctx context.Context, src Source) (core.Stats, error) {
	var stats core.Stats
	start := time.Now()
	i.log.Info().Bool("dry_run", i.opts.DryRun).Int("limit", i.opts.Limit).Msg("Import started")

	for rec, err := range src.All() {
		if err != nil {
			return stats, fmt.Errorf("extracting records: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Processed++

		if err := i.process(ctx, rec, &stats); err != nil {
			return stats, err
		}
		// Stop before the extractor reads past the last wanted record.
		if i.opts.Limit > 0 && stats.Processed >= i.opts.Limit {
			break
		}
	}

	if !i.opts.DryRun && i.side != nil {
		if err := i.saveSideRecords(ctx, src.CachedTags()); err != nil {
			return stats, err
		}
	}

	i.log.Info().
		Int("processed", stats.Processed).
		Int("imported", stats.Imported).
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Int("image_skips", stats.ImageSkips).
		Dur("duration", time.Since(start)).
		Msg("Import finished")
	return stats, nil
}

func (i *Importer) process(ctx context.Context, rec core.Record, stats *core.Stats) error {
	ref := core.SourceRef{PostID: rec.Int("wp_post_id"), Title: rec.String("title"), Link: rec.String("link")}
	log := i.log.With().Int("post_id", ref.PostID).Logger()

	postType, status := rec.String("wp_post_type"), rec.String("wp_status")
	if !i.accepts(postType, status) {
		stats.Skipped++
		return i.row(ref, report.StatusSkipped, fmt.Sprintf("filtered: post_type=%s status=%s", postType, status))
	}

	unit, err := i.assembler.Assemble(ctx, rec)
	if err != nil {
		stats.Skipped++
		log.Warn().Err(err).Msg("Record skipped")
		return i.row(ref, report.StatusSkipped, err.Error())
	}
	unit.RunID = i.opts.RunID
	ref = unit.Ref()

	for _, s := range unit.Skips {
		rowStatus := report.StatusImageSkipped
		if strings.HasPrefix(s.Reason, collisionPrefix) {
			rowStatus = report.StatusFlagged
		} else {
			stats.ImageSkips++
		}
		if err := i.row(ref, rowStatus, s.Reason); err != nil {
			return err
		}
	}
	for _, reason := range flagReasons(unit) {
		if err := i.row(ref, report.StatusFlagged, reason); err != nil {
			return err
		}
	}

	if i.opts.DryRun {
		stats.Imported++
		return i.row(ref, report.StatusDryRun, "")
	}

	saved, err := i.sink.Save(ctx, unit)
	if err != nil {
		stats.Skipped++
		log.Warn().Err(err).Msg("Saving page failed")
		return i.row(ref, report.StatusSkipped, "saving page: "+err.Error())
	}

	stats.Imported++
	switch saved {
	case core.StatusCreated:
		stats.Created++
	case core.StatusUpdated:
		stats.Updated++
	}
	log.Debug().Str("status", string(saved)).Str("slug", unit.Slug).Msg("Page saved")
	return i.row(ref, string(saved), "")
}

func (i *Importer) accepts(postType, status string) bool {
	if len(i.opts.PostTypes) > 0 && !slices.Contains(i.opts.PostTypes, postType) {
		return false
	}
	if len(i.opts.Statuses) > 0 && !slices.Contains(i.opts.Statuses, status) {
		return false
	}
	return true
}

func (i *Importer) row(ref core.SourceRef, status, reason string) error {
	if i.reporter == nil {
		return nil
	}
	err := i.reporter.Write(report.Row{
		RunID:  i.opts.RunID,
		PostID: ref.PostID,
		Title:  ref.Title,
		Link:   ref.Link,
		Status: status,
		Reason: reason,
	})
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func (i *Importer) saveSideRecords(ctx context.Context, cached map[string][]core.Record) error {
	tags := make([]string, 0, len(cached))
	for tag := range cached {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	for _, tag := range tags {
		n, err := i.side.Save(ctx, tag, cached[tag])
		if err != nil {
			return fmt.Errorf("saving %s records: %w", tag, err)
		}
		i.log.Info().Str("tag", tag).Int("records", len(cached[tag])).Int("new", n).Msg("Side records saved")
	}
	return nil
}

// flagReasons describes the validation fallbacks applied to unit.
func flagReasons(unit *core.ImportableUnit) []string {
	var reasons []string
	if unit.Flags.SlugChanged {
		reasons = append(reasons, "slug changed: "+unit.Slug)
	}
	if unit.Flags.FirstPublishedChanged {
		reasons = append(reasons, "date changed: first_published_at")
	}
	if unit.Flags.LastPublishedChanged {
		reasons = append(reasons, "date changed: last_published_at")
	}
	if unit.Flags.LatestRevisionCreatedChanged {
		reasons = append(reasons, "date changed: latest_revision_created_at")
	}
	return reasons
}
