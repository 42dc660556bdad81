package config

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ItemTag:   "item",
		CacheTags: []string{"wp:author", "wp:category", "wp:tag", "wp:term"},
		SkipTags:  []string{"wp:comment"},
		PostTypes: []string{"post", "page"},
		Statuses:  []string{"publish", "draft", "future", "private", "pending"},
		Database:  "pressblocks.db",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Images: ImageConfig{
			Timeout:   10,
			UserAgent: "pressblocks/1.0 (+https://github.com/gaurav-prasanna/pressblocks)",
			AllowedTypes: []string{
				"image/jpeg", "image/png", "image/gif", "image/webp",
				"image/svg+xml", "image/bmp", "image/tiff",
			},
		},
		Sanitize:        defaultSanitize(),
		StyleRules:      DefaultStyleRules(),
		BlockTags:       defaultBlockTags(),
		PromoteTags:     []string{"iframe", "form", "blockquote"},
		PromoteWrappers: []string{"p", "div", "span"},
	}
}

const (
	boldPattern   = `(?:^|;)font-weight:(?:bold|bolder|[6-9]00);`
	italicPattern = `(?:^|;)font-style:(?:italic|oblique);`
	// Declarations are sorted, so font-style always precedes font-weight.
	boldItalicPattern = `(?:^|;)font-style:(?:italic|oblique);(?:.*;)?font-weight:(?:bold|bolder|[6-9]00);`
)

const alignSelector = "p, div, h1, h2, h3, h4, h5, h6, img, table, figure, blockquote, li"

// DefaultStyleRules is the built-in rule table in priority order.
func DefaultStyleRules() []StyleRule {
	return []StyleRule{
		{Name: "span-bold-italic", Category: "inline", Selector: "span", Pattern: boldItalicPattern, Transform: "bold_italic"},
		{Name: "span-bold", Category: "inline", Selector: "span", Pattern: boldPattern, Transform: "bold"},
		{Name: "span-italic", Category: "inline", Selector: "span", Pattern: italicPattern, Transform: "italic"},
		{Name: "span-styling", Category: "inline", Selector: "span", Pattern: `.`, Transform: "unwrap"},

		{Name: "block-bold-italic", Category: "block", Selector: "p, div, li", Pattern: boldItalicPattern, Transform: "bold_italic"},
		{Name: "block-bold", Category: "block", Selector: "p, div, li", Pattern: boldPattern, Transform: "bold"},
		{Name: "block-italic", Category: "block", Selector: "p, div, li", Pattern: italicPattern, Transform: "italic"},

		{Name: "align-center", Category: "align", Selector: alignSelector, Pattern: `(?:^|;)text-align:center;`, Transform: "class:align-center"},
		{Name: "align-left", Category: "align", Selector: alignSelector, Pattern: `(?:^|;)text-align:left;`, Transform: "class:align-left"},
		{Name: "align-right", Category: "align", Selector: alignSelector, Pattern: `(?:^|;)text-align:right;`, Transform: "class:align-right"},
		{Name: "float-left", Category: "align", Selector: alignSelector, Pattern: `(?:^|;)float:left;`, Transform: "class:float-left"},
		{Name: "float-right", Category: "align", Selector: alignSelector, Pattern: `(?:^|;)float:right;`, Transform: "class:float-right"},
	}
}

func defaultBlockTags() map[string]string {
	return map[string]string{
		"table":      "raw_html",
		"iframe":     "raw_html",
		"form":       "raw_html",
		"img":        "raw_html",
		"blockquote": "block_quote",
		"h1":         "heading",
		"h2":         "heading",
		"h3":         "heading",
		"h4":         "heading",
		"h5":         "heading",
		"h6":         "heading",
	}
}

func defaultSanitize() SanitizeConfig {
	return SanitizeConfig{
		AllowedTags: []string{
			"a", "abbr", "acronym", "address", "b", "blockquote", "br", "caption",
			"cite", "code", "col", "colgroup", "dd", "del", "dfn", "div", "dl", "dt",
			"em", "figcaption", "figure", "h1", "h2", "h3", "h4", "h5", "h6", "hr",
			"i", "iframe", "img", "ins", "kbd", "li", "ol", "p", "pre", "q", "s",
			"samp", "small", "span", "strike", "strong", "sub", "sup", "table",
			"tbody", "td", "tfoot", "th", "thead", "tr", "u", "ul", "var",
			"form", "fieldset", "legend", "label", "input", "select", "option",
			"textarea", "button",
		},
		AllowedAttributes: map[string][]string{
			"*":          {"class", "style", "id", "title", "dir", "lang"},
			"a":          {"href", "name", "rel", "target"},
			"img":        {"src", "alt", "width", "height"},
			"iframe":     {"src", "width", "height", "frameborder", "allow", "allowfullscreen", "scrolling"},
			"blockquote": {"cite"},
			"q":          {"cite"},
			"td":         {"colspan", "rowspan", "headers", "align", "valign"},
			"th":         {"colspan", "rowspan", "headers", "scope", "align", "valign"},
			"col":        {"span", "width"},
			"colgroup":   {"span", "width"},
			"ol":         {"start", "type", "reversed"},
			"li":         {"value"},
			"form":       {"action", "method", "name"},
			"input":      {"type", "name", "value", "placeholder", "checked", "disabled"},
			"select":     {"name", "multiple"},
			"option":     {"value", "selected"},
			"textarea":   {"name", "rows", "cols", "placeholder"},
			"button":     {"type", "name", "value"},
			"label":      {"for"},
		},
		AllowedStyles: []string{
			"text-align", "float", "font-weight", "font-style", "text-decoration",
		},
	}
}
