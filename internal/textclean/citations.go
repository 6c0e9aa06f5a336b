// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textclean

import (
	"regexp"
	"strings"
)

// Citation patterns removed before prompting. Citation markers and the
// reference list are the main source of invented claims in model output, so
// they are dropped from the text rather than filtered from the answer.
var (
	// yearParenRe matches any parenthetical holding a 4-digit token, which
	// covers author-year groups like (Smith 2020) and
	// (Smith & Doe, 2021; Jones 2019). Non-citation parentheticals with a
	// 4-digit quantity, e.g. (n = 1200), are removed too.
	yearParenRe = regexp.MustCompile(`\([^)]*\d{4}[^)]*\)`)

	// numericCiteRe matches numeric citation groups like [12] or [1, 3, 5].
	numericCiteRe = regexp.MustCompile(`\[\d+(?:,\s*\d+)*\]`)

	// referencesHeadingRe matches a line holding only a reference-list
	// heading. The heading may open or close the text.
	referencesHeadingRe = regexp.MustCompile(`(?i)(?:^|\n)[ \t]*(?:references|bibliography|works cited)[ \t]*(?:\n|$)`)
)

// StripCitations removes inline citations and everything from the first
// reference-list heading onward, then trims the result.
func StripCitations(text string) string {
	text = yearParenRe.ReplaceAllString(text, "")
	text = numericCiteRe.ReplaceAllString(text, "")
	text = TruncateAtReferences(text)
	return strings.TrimSpace(text)
}

// TruncateAtReferences returns the text before the first line reading
// "References", "Bibliography" or "Works Cited" (any case). Text without such
// a line is returned unchanged.
func TruncateAtReferences(text string) string {
	loc := referencesHeadingRe.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]]
}
