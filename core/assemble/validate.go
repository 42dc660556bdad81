package assemble

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/gaurav-prasanna/pressblocks/core"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DateLayout is the timestamp format of WXR date fields.
const DateLayout = "2006-01-02 15:04:05"

// ZeroDate is the WordPress "no date" sentinel.
const ZeroDate = "0000-00-00 00:00:00"

// PlaceholderDate replaces zero and unparseable dates.
var PlaceholderDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	reNonWord = regexp.MustCompile(`[^\w\s-]`)
	reDashes  = regexp.MustCompile(`[-\s]+`)
)

// Slugify folds s to ASCII and reduces it to lowercase words joined by
// hyphens.
func Slugify(s string) string {
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	folded = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)

	folded = reNonWord.ReplaceAllString(strings.ToLower(folded), "")
	folded = reDashes.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-_")
}

// cleanTitle trims the title and decodes HTML entities left in it.
func cleanTitle(s string) string {
	return strings.TrimSpace(html.UnescapeString(strings.TrimSpace(s)))
}

// cleanSlug returns the slug for a record and whether it differs from the
// exported post name.
func cleanSlug(postName, title string, postID int) (string, bool) {
	decoded, err := url.PathUnescape(postName)
	if err != nil {
		decoded = postName
	}
	slug := Slugify(decoded)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		slug = fmt.Sprintf("post-%d", postID)
	}
	return slug, slug != postName
}

// cleanDate parses a WXR GMT timestamp. Zero, empty and unparseable values
// yield PlaceholderDate and changed=true.
func cleanDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == ZeroDate {
		return PlaceholderDate, true
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return PlaceholderDate, true
	}
	return t, false
}

// postMeta collects wp:postmeta pairs, leaving out private keys.
func postMeta(rec core.Record) map[string]string {
	var meta map[string]string
	for _, m := range rec.Records("wp_postmeta") {
		key := m.String("wp_meta_key")
		if key == "" || strings.HasPrefix(key, "_") {
			continue
		}
		if meta == nil {
			meta = map[string]string{}
		}
		meta[key] = m.String("wp_meta_value")
	}
	return meta
}
