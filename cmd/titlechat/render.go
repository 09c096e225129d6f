package main

import (
	"html"
	"regexp"
	"strings"
)

var (
	linkTag  = regexp.MustCompile(`(?is)<a\s[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	breakTag = regexp.MustCompile(`(?i)<br\s*/?>|</li>|</?ul>`)
	itemTag  = regexp.MustCompile(`(?i)<li>`)
	anyTag   = regexp.MustCompile(`<[^>]+>`)
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// plainText renders a bot HTML message for a terminal: links become
// "text (url)", list items become bullets, other tags are dropped.
func plainText(s string) string {
	s = linkTag.ReplaceAllString(s, "$2 ($1)")
	s = itemTag.ReplaceAllString(s, "\n  • ")
	s = breakTag.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
		if strings.HasPrefix(lines[i], "•") {
			lines[i] = "  " + lines[i]
		}
	}
	s = strings.Join(lines, "\n")
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
