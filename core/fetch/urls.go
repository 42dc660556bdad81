package fetch

import (
	"net/url"
	"path"
	"strings"
)

// AbsoluteURL resolves an image reference against the source domain.
// Protocol-relative references get https; references without a scheme
// are joined to domain.
func AbsoluteURL(src, domain string) string {
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	if parsed, err := url.Parse(src); err == nil && parsed.Scheme != "" {
		return src
	}
	if domain == "" {
		return src
	}
	return strings.TrimRight(domain, "/") + "/" + strings.TrimLeft(src, "/")
}

// Title derives the asset title from the final path segment of a URL,
// with percent-escapes decoded and any query or fragment dropped.
func Title(rawURL string) string {
	p := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		p = parsed.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		return unescaped
	}
	return base
}

// NormalizeURL strips fragments so the same image referenced with
// different anchors is fetched once.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.Fragment = ""
	return parsed.String()
}
