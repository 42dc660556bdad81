// Package config holds the typed configuration for a pressblocks run.
// Every component receives the part of Config it needs through its
// constructor; there is no global settings lookup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete run configuration.
type Config struct {
	// SourceDomain prefixes image references that lack a scheme,
	// e.g. "https://blog.example.com".
	SourceDomain string `yaml:"source_domain"`

	// ItemTag is the element name yielded as one record.
	ItemTag string `yaml:"item_tag"`

	// CacheTags are element names accumulated as side-channel records.
	CacheTags []string `yaml:"cache_tags"`

	// SkipTags are element names dropped with their subtree.
	SkipTags []string `yaml:"skip_tags"`

	PostTypes []string `yaml:"post_types"`
	Statuses  []string `yaml:"statuses"`

	Database string `yaml:"database"`

	Log        LogConfig         `yaml:"log"`
	Images     ImageConfig       `yaml:"images"`
	Sanitize   SanitizeConfig    `yaml:"sanitize"`
	StyleRules []StyleRule       `yaml:"style_rules"`
	BlockTags  map[string]string `yaml:"block_tags"`

	// Shortcodes registered after the built-in caption handler. Their
	// content is kept as raw HTML.
	Shortcodes []ShortcodeConfig `yaml:"shortcodes"`

	// PromoteTags are hoisted out of PromoteWrappers to the body level.
	PromoteTags     []string `yaml:"promote_tags"`
	PromoteWrappers []string `yaml:"promote_wrappers"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// ImageConfig configures image resolution.
type ImageConfig struct {
	Timeout      int      `yaml:"timeout"` // seconds
	UserAgent    string   `yaml:"user_agent"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// SanitizeConfig is the allow-list of the sanitizing filter.
type SanitizeConfig struct {
	AllowedTags []string `yaml:"allowed_tags"`
	// AllowedAttributes maps tag to attribute names. The "*" tag applies to
	// every element and a "*" attribute allows any attribute.
	AllowedAttributes map[string][]string `yaml:"allowed_attributes"`
	AllowedStyles     []string            `yaml:"allowed_styles"`
}

// ShortcodeConfig declares an extra shortcode.
type ShortcodeConfig struct {
	Name string `yaml:"name"`
	// Hoist promotes the shortcode element out of its paragraph so it
	// becomes a block of its own.
	Hoist bool `yaml:"hoist"`
}

// StyleRule is one entry of the style-to-markup rule table.
type StyleRule struct {
	Name string `yaml:"name"`
	// Category is inline, block or align; rules run in that order.
	Category string `yaml:"category"`
	// Selector is a CSS selector restricting which elements the rule sees.
	Selector string `yaml:"selector"`
	// Pattern is a regular expression over the normalized style value.
	Pattern string `yaml:"pattern"`
	// Transform names the rewrite: unwrap, bold, italic, bold_italic,
	// or class:<name>.
	Transform string `yaml:"transform"`
}

// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// setDefaults fills fields a YAML file explicitly emptied.
func (c *Config) setDefaults() {
	d := Default()
	if c.ItemTag == "" {
		c.ItemTag = d.ItemTag
	}
	if c.Database == "" {
		c.Database = d.Database
	}
	if c.Images.Timeout == 0 {
		c.Images.Timeout = d.Images.Timeout
	}
	if c.Images.UserAgent == "" {
		c.Images.UserAgent = d.Images.UserAgent
	}
	if len(c.Images.AllowedTypes) == 0 {
		c.Images.AllowedTypes = d.Images.AllowedTypes
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate checks the configuration for values no component can use.
func (c *Config) Validate() error {
	var errs []error
	if c.ItemTag == "" {
		errs = append(errs, errors.New("item_tag is required"))
	}
	if c.Images.Timeout < 0 {
		errs = append(errs, errors.New("images.timeout must be non-negative"))
	}
	if c.SourceDomain != "" && !strings.Contains(c.SourceDomain, "://") {
		errs = append(errs, fmt.Errorf("source_domain %q must include a scheme", c.SourceDomain))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be console or json", c.Log.Format))
	}
	for i, sc := range c.Shortcodes {
		if sc.Name == "" {
			errs = append(errs, fmt.Errorf("shortcodes[%d]: name is required", i))
		}
	}
	for i, r := range c.StyleRules {
		if r.Pattern == "" {
			errs = append(errs, fmt.Errorf("style_rules[%d] %q: pattern is required", i, r.Name))
		}
	}
	return errors.Join(errs...)
}
