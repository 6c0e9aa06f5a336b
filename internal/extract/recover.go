// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/article-summarizer/pkg/types"
)

// thinkRe matches reasoning blocks, possibly spanning lines.
var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ErrNoJSON is returned by ParseReply when the reply holds no JSON object.
var ErrNoJSON = errors.New("no JSON object in model reply")

// ParseReply extracts the structured summary from a model reply. Reasoning
// blocks are dropped and escaped line breaks are unescaped. Each complete
// top-level {...} object is tried in order and the first that parses wins;
// when none does, the span from the first '{' to the last '}' is tried as a
// last resort. Objects nested in a reply that was cut off are never used on
// their own.
func ParseReply(reply string) (types.Summary, error) {
	text := thinkRe.ReplaceAllString(reply, "")
	text = strings.TrimSpace(strings.ReplaceAll(text, `\n`, "\n"))

	cands := candidates(text)
	if len(cands) == 0 {
		return nil, ErrNoJSON
	}

	var lastErr error
	for _, c := range cands {
		var s types.Summary
		if err := json.Unmarshal([]byte(escapeControlInStrings(c)), &s); err != nil {
			lastErr = err
			continue
		}
		if s == nil {
			s = types.Summary{}
		}
		return s, nil
	}
	return nil, fmt.Errorf("parsing model reply: %w", lastErr)
}

// Recover is ParseReply that never fails: an unusable reply is logged and
// yields an empty, non-nil Summary.
func Recover(reply string) types.Summary {
	return recoverWith(log.Logger, reply)
}

func recoverWith(logger zerolog.Logger, reply string) types.Summary {
	s, err := ParseReply(reply)
	if err != nil {
		logger.Warn().Err(err).Str("reply", clip(reply, 200)).Msg("could not recover JSON from model reply")
		return types.Summary{}
	}
	return s
}

// candidates lists the substrings of text worth parsing, in preference
// order: each complete top-level {...} object, then the span from the first
// '{' to the last '}'.
func candidates(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, obj := range topLevelObjects(text) {
		add(obj)
	}

	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first >= 0 && last > first {
		add(text[first : last+1])
	}
	return out
}

// topLevelObjects returns the balanced {...} spans of text that are not
// nested in another object, in one left-to-right pass. Braces inside JSON
// strings are ignored. An object still open at the end of text is not
// returned, and nothing inside it is either.
func topLevelObjects(text string) []string {
	var out []string
	depth := 0
	start := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				out = append(out, text[start:i+1])
			}
		}
	}
	return out
}

// escapeControlInStrings re-escapes raw control characters that appear
// inside JSON strings. Unescaping "\n" before parsing leaves literal line
// breaks inside string values, which encoding/json rejects.
func escapeControlInStrings(s string) string {
	if !strings.ContainsAny(s, "\n\r\t") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			case c == '\n':
				b.WriteString(`\n`)
				continue
			case c == '\r':
				b.WriteString(`\r`)
				continue
			case c == '\t':
				b.WriteString(`\t`)
				continue
			case c < 0x20:
				fmt.Fprintf(&b, `\u%04x`, c)
				continue
			}
		} else if c == '"' {
			inString = true
		}
		b.WriteByte(c)
	}
	return b.String()
}

// clip shortens s to at most n bytes for log output.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "") + "..."
}
