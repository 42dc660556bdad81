// Package assemble turns one extracted record into an importable unit.
//
// The record's content runs through the HTML pipeline one state at a time:
//
//	extracted → normalized → shortcoded → styled → autop'd → sanitized
//	  → segmented → validated → finished
//
// Each transition depends only on the previous state's output and the
// configuration the Assembler was built with.
package assemble

import (
	"context"
	"fmt"

	"github.com/gaurav-prasanna/pressblocks/core"
	"github.com/gaurav-prasanna/pressblocks/core/autop"
	"github.com/gaurav-prasanna/pressblocks/core/config"
	"github.com/gaurav-prasanna/pressblocks/core/normalize"
	"github.com/gaurav-prasanna/pressblocks/core/restyle"
	"github.com/gaurav-prasanna/pressblocks/core/sanitize"
	"github.com/gaurav-prasanna/pressblocks/core/segment"
	"github.com/gaurav-prasanna/pressblocks/core/shortcode"
	"github.com/rs/zerolog"
)

// State is a step of the assembly state machine.
type State string

const (
	StateExtracted  State = "extracted"
	StateNormalized State = "normalized"
	StateShortcoded State = "shortcoded"
	StateStyled     State = "styled"
	StateAutopd     State = "autop'd"
	StateSanitized  State = "sanitized"
	StateSegmented  State = "segmented"
	StateValidated  State = "validated"
	StateFinished   State = "finished"
)

type step struct {
	to State
	rw core.Rewriter
}

// Assembler runs the pipeline for one record at a time.
type Assembler struct {
	steps     []step
	segmenter *segment.Segmenter
	images    core.ImageResolver
	log       zerolog.Logger

	// KeepStages stores the HTML after every string stage on the unit.
	KeepStages bool
}

// New wires the pipeline stages from cfg. images may be nil, in which case
// every image is reported as skipped.
func New(cfg *config.Config, registry *shortcode.Registry, images core.ImageResolver, log zerolog.Logger) *Assembler {
	return &Assembler{
		steps: []step{
			{StateNormalized, normalize.New()},
			{StateShortcoded, registry},
			{StateStyled, restyle.New(cfg.StyleRules, log)},
			{StateAutopd, autop.New()},
			{StateSanitized, sanitize.New(cfg.Sanitize, registry.Tags()...)},
		},
		segmenter: segment.New(cfg, registry, log),
		images:    images,
		log:       log.With().Str("component", "assemble").Logger(),
	}
}

// Assemble builds the importable unit for rec. Image failures are recorded
// on the unit's Skips; only a stage error aborts the record.
func (a *Assembler) Assemble(ctx context.Context, rec core.Record) (*core.ImportableUnit, error) {
	unit := &core.ImportableUnit{
		Title:    cleanTitle(rec.String("title")),
		PostID:   rec.Int("wp_post_id"),
		PostType: rec.String("wp_post_type"),
		Status:   rec.String("wp_status"),
		Link:     rec.String("link"),
	}
	log := a.log.With().Int("post_id", unit.PostID).Logger()

	content := rec.String("content_encoded")
	a.enter(log, unit, StateExtracted, content)

	for _, s := range a.steps {
		out, err := s.rw.Rewrite(content)
		if err != nil {
			return nil, fmt.Errorf("post %d: %s: %w", unit.PostID, s.to, err)
		}
		content = out
		a.enter(log, unit, s.to, content)
	}

	skips := &core.SkipLog{}
	env := shortcode.Env{Images: a.images, Ref: unit.Ref(), Skips: skips}
	blocks, err := a.segmenter.Segment(ctx, content, env)
	if err != nil {
		return nil, fmt.Errorf("post %d: %s: %w", unit.PostID, StateSegmented, err)
	}
	unit.Body = blocks
	a.enter(log, unit, StateSegmented, "")

	a.validate(log, unit, rec)
	a.enter(log, unit, StateValidated, "")

	unit.Skips = skips.Entries()
	a.enter(log, unit, StateFinished, "")
	return unit, nil
}

func (a *Assembler) enter(log zerolog.Logger, unit *core.ImportableUnit, s State, html string) {
	log.Debug().Str("state", string(s)).Int("bytes", len(html)).Int("blocks", len(unit.Body)).Msg("State entered")
	if a.KeepStages && html != "" {
		unit.Stages = append(unit.Stages, core.Stage{Name: string(s), HTML: html})
	}
}

func (a *Assembler) validate(log zerolog.Logger, unit *core.ImportableUnit, rec core.Record) {
	unit.Slug, unit.Flags.SlugChanged = cleanSlug(rec.String("wp_post_name"), unit.Title, unit.PostID)
	if unit.Flags.SlugChanged {
		log.Warn().Str("wp_post_name", rec.String("wp_post_name")).Str("slug", unit.Slug).Msg("Slug changed")
	}

	published := rec.String("wp_post_date_gmt")
	modified := rec.String("wp_post_modified_gmt")
	unit.FirstPublishedAt, unit.Flags.FirstPublishedChanged = cleanDate(published)
	unit.LastPublishedAt, unit.Flags.LastPublishedChanged = cleanDate(modified)
	unit.LatestRevisionCreatedAt, unit.Flags.LatestRevisionCreatedChanged = cleanDate(modified)
	if unit.Flags.DateChanged() {
		log.Warn().Str("post_date_gmt", published).Str("post_modified_gmt", modified).Msg("Date replaced by placeholder")
	}

	unit.Meta = postMeta(rec)
}
