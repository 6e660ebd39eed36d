package helpers

import (
	"net/url"
	"strings"
	"unicode"
)

// LastPathSegment returns the last non-empty path segment of a URL. Strings
// that do not parse as URLs are split on "/" as they are.
func LastPathSegment(raw string) string {
	path := strings.TrimSpace(raw)
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	}

	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

// Slug lowercases s and drops everything that is not a letter or digit
func Slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveURL makes href absolute against base. Root-relative and relative
// paths are resolved, absolute URLs are returned as is.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}

	baseURL, err := url.Parse(base)
	if err != nil || base == "" {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
