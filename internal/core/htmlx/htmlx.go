// Package htmlx provides tolerant text-scanning primitives for extracting
// fragments from upstream HTML. The internal systems this tool scrapes emit
// malformed markup (unclosed tags, mixed-case attributes, template rows), so
// a strict parser would reject pages a marker-based scanner handles fine.
// Every source parser is built from these three primitives.
package htmlx

import (
	"regexp"
	"strings"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// entityReplacer covers the handful of entities the upstream pages actually
// emit. Full entity decoding is deliberately out of scope.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&middot;", "",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
)

// SliceBetween returns the substring of text beginning at the first match of
// start and ending just before the earliest match of any of ends. If no end
// pattern matches, the slice runs to the end of text. If start does not
// match, the empty string is returned. Never panics or errors.
func SliceBetween(text string, start *regexp.Regexp, ends ...*regexp.Regexp) string {
	loc := start.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	from := text[loc[0]:]
	// Search for end markers after the start marker itself so that a start
	// pattern which also matches an end pattern does not truncate to zero.
	tail := from[loc[1]-loc[0]:]

	cut := len(from)
	for _, end := range ends {
		if end == nil {
			continue
		}
		if m := end.FindStringIndex(tail); m != nil {
			if candidate := (loc[1] - loc[0]) + m[0]; candidate < cut {
				cut = candidate
			}
		}
	}

	return from[:cut]
}

// AllMatches applies re to text and returns every match with its capture
// groups, in order. Stateless: each call re-scans from the beginning.
// Returns nil when there are no matches.
func AllMatches(text string, re *regexp.Regexp) [][]string {
	return re.FindAllStringSubmatch(text, -1)
}

// StripTags removes all <...> markup from text, decodes the common entities,
// and collapses whitespace runs to single spaces.
func StripTags(text string) string {
	out := tagRe.ReplaceAllString(text, " ")
	out = entityReplacer.Replace(out)
	out = whitespaceRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
