// Package forms resolves free text to the downloadable government forms of
// a region's form library.
package forms

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize folds text and form codes into one comparable shape: lowercase,
// every dash-like rune as '-', whitespace and underscore runs as a single
// '-', parentheses dropped, repeated hyphens collapsed, and hyphens trimmed
// from both ends.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastHyphen := false
	writeHyphen := func() {
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	for _, r := range strings.ToLower(s) {
		switch {
		case isDash(r), r == '_', unicode.IsSpace(r):
			writeHyphen()
		case r == '(' || r == ')':
		default:
			b.WriteRune(r)
			lastHyphen = false
		}
	}
	return strings.Trim(b.String(), "-")
}

func isDash(r rune) bool {
	switch r {
	case '-', '\u2010', '\u2011', '\u2012', '\u2013', '\u2014', '\u2015',
		'\u2212', '\uFE58', '\uFE63', '\uFF0D', '\u2043':
		return true
	}
	return false
}

// containsToken reports whether needle occurs in haystack with no letter or
// digit immediately before or after it, so "mvt513" is not found inside
// "mvt5131".
func containsToken(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	for from := 0; from <= len(haystack)-len(needle); {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		if boundaryBefore(haystack, start) && boundaryAfter(haystack, end) {
			return true
		}
		from = start + 1
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
