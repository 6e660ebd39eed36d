package extractor

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	codePattern    = regexp.MustCompile(`\b[A-Z0-9]{4,12}\b`)
	numericPattern = regexp.MustCompile(`^\d+$`)
	alphaPattern   = regexp.MustCompile(`^[A-Z]+$`)
	offerPattern   = regexp.MustCompile(`(?i)(\d+%\s*off|\$\d+\s*off|free\s*submission|waived\s*fees?|no\s*fee)`)
	keywordPattern = regexp.MustCompile(`(?i)festival|film|cinema|movie|competition`)

	// Capitalised phrase ending in a festival keyword. Words carry no
	// digits so an adjacent code is never swallowed into the name.
	festivalNamePattern = regexp.MustCompile(`\b[A-Z][A-Za-z'&.\-]*(?:\s+(?:[A-Z][A-Za-z'&.\-]*|of|the|and|de|du|del|&)){0,6}\s+(?:[Ff]ilm\s+[Ff]estival|FILM\s+FESTIVAL|Festival|FESTIVAL|Fest|Film\s+Awards|Awards|Competition|Showcase)\b`)

	blockPattern   = regexp.MustCompile(`(?is)<(script|style|noscript|template)\b[^>]*>.*?</(script|style|noscript|template)\s*>`)
	commentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
)

// Tokens that look like codes but show up in ordinary page text
var excludedCodes = map[string]struct{}{
	"THE": {}, "AND": {}, "FOR": {}, "WITH": {}, "FROM": {}, "FILM": {}, "FEST": {},
	"H264": {}, "H265": {}, "1080P": {}, "720P": {}, "2160P": {}, "MP4": {}, "COVID19": {},
}

// isCandidateCode filters code-pattern matches down to plausible discount codes
func isCandidateCode(token string) bool {
	if len(token) < 4 || len(token) > 12 {
		return false
	}
	if numericPattern.MatchString(token) || alphaPattern.MatchString(token) {
		return false
	}
	_, excluded := excludedCodes[token]
	return !excluded
}

// firstCode returns the first candidate code in text
func firstCode(text string) string {
	for _, token := range codePattern.FindAllString(text, -1) {
		if isCandidateCode(token) {
			return token
		}
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// visibleText reduces an HTML document to its text with regexes only:
// scripts, styles and comments are dropped, tags become spaces, entities are
// unescaped and whitespace is collapsed.
func visibleText(doc string) string {
	text := blockPattern.ReplaceAllString(doc, " ")
	text = commentPattern.ReplaceAllString(text, " ")
	text = tagPattern.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	return normalizeSpace(text)
}

// window returns the bounds [start, end) around [from, to) widened by size
// bytes on each side, adjusted to rune boundaries.
func window(text string, from, to, size int) (int, int) {
	start := max(0, from-size)
	end := min(len(text), to+size)
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return start, end
}

// distance is the gap in bytes between two non-overlapping spans, -1 when
// they overlap
func distance(aStart, aEnd, bStart, bEnd int) int {
	switch {
	case aEnd <= bStart:
		return bStart - aEnd
	case bEnd <= aStart:
		return aStart - bEnd
	default:
		return -1
	}
}
