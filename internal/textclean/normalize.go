// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textclean turns raw PDF page text into prompt-ready prose. It
// removes layout artifacts (wrapped hyphenation, mid-sentence line breaks,
// running headers and footers, page numbers, links) and strips citation
// markers and the reference list. Nothing here knows about any particular
// publisher.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Boilerplate patterns removed by the third pass.
var (
	// pageNumberLineRe matches a line holding only a 1-4 digit page number.
	pageNumberLineRe = regexp.MustCompile(`(?m)^[ \t]*\d{1,4}[ \t]*$`)

	// pageTokenRe matches "Page 5", "page12" and similar running footers.
	pageTokenRe = regexp.MustCompile(`(?i)Page\s*\d+`)

	// webFooterRe matches footer fragments like "| www.journal.org |".
	webFooterRe = regexp.MustCompile(`\|\s*www\.\S+\s*\|?`)

	// urlRe matches inline links.
	urlRe = regexp.MustCompile(`https?://\S+`)
)

// Whitespace patterns for the final pass.
var (
	horizontalRunRe = regexp.MustCompile(`[ \t]+`)
	leadingSpaceRe  = regexp.MustCompile(`\n[ \t]+`)
	trailingSpaceRe = regexp.MustCompile(`[ \t]+\n`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
)

// Normalize cleans raw extracted PDF text. The passes run in a fixed order
// because each one relies on the previous: dehyphenate, merge wrapped lines,
// drop boilerplate, drop repeated lines, normalize whitespace. The sequence is
// repeated until the text stops changing, so Normalize(Normalize(x)) equals
// Normalize(x). Every pass only deletes characters or turns a tab or line
// break into a space, so each round that changes the text shortens it or
// removes a tab or line break, and the loop settles.
func Normalize(raw string) string {
	text := raw
	for {
		next := normalizeOnce(text)
		if next == text {
			return text
		}
		text = next
	}
}

// normalizeOnce applies each cleaning pass once.
func normalizeOnce(text string) string {
	text = dehyphenate(text)
	text = mergeWrappedLines(text)
	text = removeBoilerplate(text)
	text = dedupeLines(text)
	return normalizeWhitespace(text)
}

// dehyphenate joins words split across lines: "Face-\nbook" becomes
// "Facebook". The hyphen and line break are dropped only when both
// neighbours are word characters; the neighbours are read from the input,
// so a chain like "a-\nb-\nc" joins completely.
func dehyphenate(text string) string {
	if !strings.Contains(text, "-\n") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		if text[i] == '-' && i+1 < len(text) && text[i+1] == '\n' {
			prev, _ := utf8.DecodeLastRuneInString(text[:i])
			next, _ := utf8.DecodeRuneInString(text[i+2:])
			if i > 0 && i+2 < len(text) && isWordRune(prev) && isWordRune(next) {
				i += 2
				continue
			}
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

// isWordRune reports whether r would match \w in a Unicode-aware regexp.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// mergeWrappedLines replaces a single line break with a space unless it is
// part of a blank-line run or the next line starts with an uppercase letter.
// Blank lines and capitalized lines usually mark real paragraph or heading
// boundaries; everything else is the PDF wrapping a sentence.
func mergeWrappedLines(text string) string {
	out := []byte(text)
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		if i > 0 && text[i-1] == '\n' {
			continue
		}
		if i+1 < len(text) {
			next := text[i+1]
			if next == '\n' || (next >= 'A' && next <= 'Z') {
				continue
			}
		}
		out[i] = ' '
	}
	return string(out)
}

// removeBoilerplate deletes page numbers, "Page N" tokens, web-domain footers
// and inline URLs.
func removeBoilerplate(text string) string {
	text = pageNumberLineRe.ReplaceAllString(text, "")
	text = pageTokenRe.ReplaceAllString(text, "")
	text = webFooterRe.ReplaceAllString(text, "")
	return urlRe.ReplaceAllString(text, "")
}

// dedupeLines keeps the first occurrence of each non-empty line, compared
// trimmed and case-insensitively, which removes running headers and footers
// repeated on every page. Empty lines are kept on purpose so paragraph breaks
// survive; normalizeWhitespace collapses the runs they leave behind.
func dedupeLines(text string) string {
	lines := strings.Split(text, "\n")
	seen := make(map[string]bool, len(lines))
	kept := lines[:0]
	for _, line := range lines {
		key := strings.ToLower(strings.TrimSpace(line))
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// normalizeWhitespace collapses horizontal whitespace, strips it from line
// edges, caps blank runs at one empty line and trims the result.
func normalizeWhitespace(text string) string {
	text = horizontalRunRe.ReplaceAllString(text, " ")
	text = leadingSpaceRe.ReplaceAllString(text, "\n")
	text = trailingSpaceRe.ReplaceAllString(text, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
