package restyle

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/pressblocks/core/config"
	"github.com/rs/zerolog"
)

// Rule categories in application order.
const (
	CategoryInline = "inline"
	CategoryBlock  = "block"
	CategoryAlign  = "align"
)

var categoryOrder = map[string]int{
	CategoryInline: 0,
	CategoryBlock:  1,
	CategoryAlign:  2,
}

type transformKind int

const (
	transformUnwrap transformKind = iota
	transformBold
	transformItalic
	transformBoldItalic
	transformClass
)

// rule is a compiled config.StyleRule.
type rule struct {
	name     string
	category string
	selector cascadia.Selector
	pattern  *regexp.Regexp
	kind     transformKind
	class    string
}

// compileRules compiles the rule table, dropping entries that cannot be
// compiled, and orders it inline → block → align keeping table order
// within each category.
func compileRules(specs []config.StyleRule, log zerolog.Logger) []rule {
	rules := make([]rule, 0, len(specs))
	for _, s := range specs {
		r, err := compileRule(s)
		if err != nil {
			log.Warn().Err(err).Str("rule", s.Name).Msg("Style rule skipped")
			continue
		}
		rules = append(rules, r)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return categoryOrder[rules[i].category] < categoryOrder[rules[j].category]
	})
	return rules
}

func compileRule(s config.StyleRule) (rule, error) {
	if _, ok := categoryOrder[s.Category]; !ok {
		return rule{}, fmt.Errorf("unknown category %q", s.Category)
	}

	selector := s.Selector
	if selector == "" {
		selector = "*"
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return rule{}, fmt.Errorf("compiling selector %q: %w", selector, err)
	}

	pattern, err := regexp.Compile(s.Pattern)
	if err != nil {
		return rule{}, fmt.Errorf("compiling pattern: %w", err)
	}

	r := rule{
		name:     s.Name,
		category: s.Category,
		selector: sel,
		pattern:  pattern,
	}

	switch t := s.Transform; {
	case t == "unwrap":
		r.kind = transformUnwrap
	case t == "bold":
		r.kind = transformBold
	case t == "italic":
		r.kind = transformItalic
	case t == "bold_italic":
		r.kind = transformBoldItalic
	case strings.HasPrefix(t, "class:") && len(t) > len("class:"):
		r.kind = transformClass
		r.class = strings.TrimPrefix(t, "class:")
	default:
		return rule{}, fmt.Errorf("unknown transform %q", t)
	}
	return r, nil
}
