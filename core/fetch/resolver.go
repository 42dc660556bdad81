// Package fetch implements the ImageResolver interface.
// It resolves image references to stored assets, downloading images over
// HTTP when the asset store does not have them yet.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gaurav-prasanna/pressblocks/core"
	"github.com/gaurav-prasanna/pressblocks/core/config"
	"github.com/rs/zerolog"
)

const maxImageBytes = 64 << 20

// Resolver resolves image references through an asset store.
type Resolver struct {
	store     core.AssetStore
	client    *http.Client
	domain    string
	userAgent string
	allowed   map[string]bool
	failed    map[string]string
	maxBytes  int64
	log       zerolog.Logger

	// Offline disables network fetches; images missing from the store are
	// reported as skipped.
	Offline bool
}

// New creates a Resolver with the configured timeout and allow-list.
func New(store core.AssetStore, cfg config.ImageConfig, sourceDomain string, log zerolog.Logger) *Resolver {
	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(t)] = true
	}
	return &Resolver{
		store:     store,
		client:    &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
		domain:    sourceDomain,
		userAgent: cfg.UserAgent,
		allowed:   allowed,
		failed:    map[string]string{},
		maxBytes:  maxImageBytes,
		log:       log.With().Str("component", "images").Logger(),
	}
}

// Resolve returns the asset for src, or nil with a skip entry in skips.
// A URL that failed once is not fetched or reported again.
func (r *Resolver) Resolve(ctx context.Context, src string, ref core.SourceRef, skips *core.SkipLog) *core.Asset {
	if strings.TrimSpace(src) == "" {
		skips.Add(ref, "no src provided")
		return nil
	}

	abs := NormalizeURL(AbsoluteURL(src, r.domain))
	if _, failed := r.failed[abs]; failed {
		return nil
	}

	title := Title(abs)
	if title == "" {
		r.fail(abs, ref, skips, "no file name in src "+src)
		return nil
	}

	asset, err := r.store.FindByTitle(ctx, title)
	if err != nil {
		skips.Add(ref, fmt.Sprintf("asset lookup failed for %s: %v", title, err))
		return nil
	}
	if asset != nil {
		if asset.SourceURL != "" && asset.SourceURL != abs {
			skips.Add(ref, fmt.Sprintf("title collision: %s reused from %s for %s", title, asset.SourceURL, abs))
		}
		return asset
	}

	if r.Offline {
		r.fail(abs, ref, skips, "offline: "+abs+" not fetched")
		return nil
	}

	data, contentType, reason := r.download(ctx, abs)
	if reason != "" {
		r.fail(abs, ref, skips, reason)
		return nil
	}

	asset, err = r.store.Create(ctx, data, title, abs, contentType)
	if err != nil {
		r.fail(abs, ref, skips, fmt.Sprintf("storing %s: %v", title, err))
		return nil
	}
	r.log.Debug().Str("url", abs).Int64("asset_id", asset.ID).Msg("Image imported")
	return asset
}

func (r *Resolver) fail(url string, ref core.SourceRef, skips *core.SkipLog, reason string) {
	r.failed[url] = reason
	skips.Add(ref, reason)
	r.log.Warn().Int("post_id", ref.PostID).Str("url", url).Str("reason", reason).Msg("Image skipped")
}

// download fetches url and returns the body and media type, or a skip
// reason.
func (r *Resolver) download(ctx context.Context, url string) ([]byte, string, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", "invalid url: " + err.Error()
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", "connection error: " + err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Sprintf("status code %d", resp.StatusCode)
	}

	header := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil || !r.allowed[strings.ToLower(mediaType)] {
		return nil, "", fmt.Sprintf("invalid content type %q", header)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, "", "connection error: " + err.Error()
	}
	if int64(len(body)) > r.maxBytes {
		return nil, "", fmt.Sprintf("image larger than %d bytes", r.maxBytes)
	}
	return body, strings.ToLower(mediaType), ""
}
