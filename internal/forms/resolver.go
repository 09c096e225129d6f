package forms

import (
	"regexp"
	"strings"
)

// agencyPrefix matches a leading agency abbreviation such as "mvt-" or
// "reg-", which people often type without the hyphen.
var agencyPrefix = regexp.MustCompile(`^([a-z]{2,4})-`)

// FindMentioned returns the codes from lib that text refers to, in library
// order and without duplicates. A code is found when the normalized text
// contains, as a whole token, the normalized code, the code with its
// hyphens removed, or the code with its agency prefix collapsed.
func FindMentioned(text string, lib *Library) []string {
	normalized := Normalize(text)
	if normalized == "" || lib.Len() == 0 {
		return nil
	}
	noDash := strings.ReplaceAll(normalized, "-", "")

	var found []string
	seen := make(map[string]bool)
	for _, code := range lib.Codes() {
		if seen[code] {
			continue
		}
		if mentions(normalized, noDash, code) {
			seen[code] = true
			found = append(found, code)
		}
	}
	return found
}

func mentions(normalized, noDash, code string) bool {
	codeNorm := Normalize(code)
	if codeNorm == "" {
		return false
	}
	codeNoDash := strings.ReplaceAll(codeNorm, "-", "")

	if containsToken(normalized, codeNorm) ||
		containsToken(normalized, codeNoDash) ||
		containsToken(noDash, codeNoDash) {
		return true
	}
	if collapsed := agencyPrefix.ReplaceAllString(codeNorm, "$1"); collapsed != codeNorm {
		return containsToken(normalized, collapsed)
	}
	return false
}

// FindByLabel returns the first form whose label, or the label text before
// any parenthesised qualifier, appears in text.
func FindByLabel(text string, lib *Library) (string, bool) {
	lower := strings.ToLower(text)
	for _, code := range lib.Codes() {
		f, _ := lib.Get(code)
		label := strings.ToLower(strings.TrimSpace(f.Label))
		if label == "" {
			continue
		}
		short := label
		if i := strings.Index(label, "("); i >= 0 {
			short = strings.TrimSpace(label[:i])
		}
		if strings.Contains(lower, label) || (short != "" && strings.Contains(lower, short)) {
			return code, true
		}
	}
	return "", false
}

// MatchKeyword returns the code of the first hint whose keyword phrase
// appears in text. Both sides are normalized, so "Power  of_Attorney"
// matches "power of attorney".
func MatchKeyword(text string, hints []KeywordHint) (string, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return "", false
	}
	for _, h := range hints {
		kw := Normalize(h.Keyword)
		if kw != "" && strings.Contains(normalized, kw) {
			return h.Code, true
		}
	}
	return "", false
}

// Resolve picks the single form a free-form question points at. Checked in
// order: a code mention, a label mention, then a keyword hint whose code
// exists in lib.
func Resolve(text string, lib *Library, hints []KeywordHint) (string, Form, bool) {
	if lib.Len() == 0 {
		return "", Form{}, false
	}
	if codes := FindMentioned(text, lib); len(codes) > 0 {
		f, _ := lib.Get(codes[0])
		return codes[0], f, true
	}
	if code, ok := FindByLabel(text, lib); ok {
		f, _ := lib.Get(code)
		return code, f, true
	}
	if code, ok := MatchKeyword(text, hints); ok {
		if f, ok := lib.Get(code); ok {
			return code, f, true
		}
	}
	return "", Form{}, false
}
