package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ItemTag != "item" {
		t.Errorf("Expected item tag 'item', got %q", cfg.ItemTag)
	}
	if cfg.Images.Timeout != 10 {
		t.Errorf("Expected image timeout 10, got %d", cfg.Images.Timeout)
	}
	if len(cfg.StyleRules) == 0 {
		t.Error("Expected default style rules")
	}
	if cfg.BlockTags["h2"] != "heading" {
		t.Errorf("Expected h2 to map to heading, got %q", cfg.BlockTags["h2"])
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pressblocks.yaml")
	content := `
source_domain: https://blog.example.com
post_types: [page]
images:
  timeout: 3
block_tags:
  pre: raw_html
log:
  level: debug
  format: json
shortcodes:
  - name: gallery
    hoist: true
  - name: audio
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SourceDomain != "https://blog.example.com" {
		t.Errorf("Expected source domain override, got %q", cfg.SourceDomain)
	}
	if len(cfg.PostTypes) != 1 || cfg.PostTypes[0] != "page" {
		t.Errorf("Expected post types [page], got %v", cfg.PostTypes)
	}
	if cfg.Images.Timeout != 3 {
		t.Errorf("Expected timeout 3, got %d", cfg.Images.Timeout)
	}
	if len(cfg.Images.AllowedTypes) == 0 {
		t.Error("Expected allowed image types to keep their defaults")
	}
	if cfg.BlockTags["pre"] != "raw_html" || cfg.BlockTags["table"] != "raw_html" {
		t.Errorf("Expected block tags merged with defaults, got %v", cfg.BlockTags)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Expected json log format, got %q", cfg.Log.Format)
	}
	if len(cfg.Shortcodes) != 2 || cfg.Shortcodes[0] != (ShortcodeConfig{Name: "gallery", Hoist: true}) || cfg.Shortcodes[1].Hoist {
		t.Errorf("Unexpected shortcodes %+v", cfg.Shortcodes)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"missing item tag", func(c *Config) { c.ItemTag = "" }, "item_tag"},
		{"negative timeout", func(c *Config) { c.Images.Timeout = -1 }, "timeout"},
		{"domain without scheme", func(c *Config) { c.SourceDomain = "example.com" }, "scheme"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"rule without pattern", func(c *Config) {
			c.StyleRules = append(c.StyleRules, StyleRule{Name: "empty", Category: "inline"})
		}, "pattern is required"},
		{"shortcode without name", func(c *Config) {
			c.Shortcodes = []ShortcodeConfig{{Hoist: true}}
		}, "shortcodes[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
