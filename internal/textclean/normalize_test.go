// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// samplePages resembles pdf text from a two-page article with a running
// header, page numbers, a footer link and wrapped lines.
const samplePages = `Journal of Things  |  www.things.org |
The Effect of Face-
book on Attention

Abstract
We study how social media use relates to atten-
tion span across 1,200 adults.
1
Journal of Things  |  www.things.org |
Introduction
Prior work (Smith 2020) found effects. See https://example.com/data for
details.
Page 2
2


Results	were   strong.
`

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\t\n ", ""},
		{"already clean", "One line.\n\nAnother paragraph.", "One line.\n\nAnother paragraph."},
		{"dehyphenate", "Face-\nbook", "Facebook"},
		{"dehyphenate chain", "multi-\nline-\nword", "multilineword"},
		{"dehyphenate keeps dash before blank line", "end-\n\nNext", "end-\n\nNext"},
		{"merge lowercase continuation", "the cat\nsat down", "the cat sat down"},
		{"keep break before capital", "First sentence.\nSecond sentence.", "First sentence.\nSecond sentence."},
		{"keep paragraph break", "para one\n\npara two", "para one\n\npara two"},
		{"collapse blank runs", "A\n\n\n\n\nB", "A\n\nB"},
		{"drop page number line", "Intro text.\n\n12\n\nMore text.", "Intro text.\n\nMore text."},
		{"page number merged before it is seen", "Intro text.\n12\nMore text.", "Intro text. 12\nMore text."},
		{"drop page token", "Some Page 5 text", "Some text"},
		{"drop page token case-insensitive", "Text PAGE12 here", "Text here"},
		{"drop web footer", "Body | www.journal.org | tail", "Body tail"},
		{"drop url", "See https://doi.org/10.1/x now", "See now"},
		{"dedupe case-insensitive", "Header Line\nBody.\nHEADER LINE\nEnd.", "Header Line\nBody.\nEnd."},
		{"collapse horizontal whitespace", "a  \t b", "a b"},
		{"strip line edges", "  Alpha  \n\n  Beta  ", "Alpha\n\nBeta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Dehyphenation(t *testing.T) {
	got := Normalize("Face-\nbook")
	assert.Contains(t, got, "Facebook")
	assert.NotContains(t, got, "Face-\nbook")
}

func TestNormalize_SamplePages(t *testing.T) {
	got := Normalize(samplePages)

	assert.Contains(t, got, "Facebook")
	assert.Contains(t, got, "attention span")
	assert.NotContains(t, got, "https://")
	assert.NotContains(t, got, "www.things.org")
	assert.NotContains(t, got, "Page 2")
	assert.Equal(t, 1, strings.Count(got, "Journal of Things"), "running header kept once")
	assert.Contains(t, got, "Results were strong.")
	for _, line := range strings.Split(got, "\n") {
		assert.NotRegexp(t, `^\d{1,4}$`, line, "standalone page number survived")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		samplePages,
		"ab-\nC",
		"foo- \nBar",
		"foo-\n https://x.com\nBar",
		"Abc\n\ndef",
		"x\n\n12\n\nY",
		"Line\nline\nLINE",
		"a-\nb-\nc-\nD e-\n\nF",
		"  lead\n\n\n\n trail  \n",
		"Table 1\n1\n2\n3\nTotal 1200 (n = 1200)",
		"tab\tseparated\tcolumns\nand\ttabs",
		"Intro " + strings.Repeat("Pa", 20) + "Page 1" + strings.Repeat("ge 1", 20) + " end",
		strings.Repeat("Pa", 100) + "Page 9" + strings.Repeat("ge 9", 100),
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestNormalize_NestedPageTokens(t *testing.T) {
	in := "Intro " + strings.Repeat("Pa", 20) + "Page 1" + strings.Repeat("ge 1", 20) + " end"
	assert.Equal(t, "Intro end", Normalize(in))
}

func TestNormalize_NoTripleLineBreaks(t *testing.T) {
	inputs := []string{
		"A\n\n\nB",
		"A\n \n \n \nB",
		"A\n\n7\n\n\nB",
		samplePages,
		strings.Repeat("Title\n\n\n\n", 5) + "End",
	}
	for _, in := range inputs {
		assert.NotContains(t, Normalize(in), "\n\n\n", "input %q", in)
	}
}

func TestNormalize_NoDuplicateLines(t *testing.T) {
	got := Normalize("Alpha\nBeta\n\nalpha\nGamma\n  BETA  ")
	seen := map[string]bool{}
	for _, line := range strings.Split(got, "\n") {
		key := strings.ToLower(strings.TrimSpace(line))
		if key == "" {
			continue
		}
		assert.False(t, seen[key], "duplicate line %q", line)
		seen[key] = true
	}
}

func TestDehyphenate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Face-\nbook", "Facebook"},
		{"naïve-\nté", "naïveté"},
		{"-\nstart", "-\nstart"},
		{"end-\n", "end-\n"},
		{"word -\nword", "word -\nword"},
		{"no hyphen", "no hyphen"},
	}
	for _, tt := range tests {
		if got := dehyphenate(tt.in); got != tt.want {
			t.Errorf("dehyphenate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMergeWrappedLines(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a\nb", "a b"},
		{"a\nB", "a\nB"},
		{"a\n\nb", "a\n\nb"},
		{"a\n", "a "},
		{"\nb", " b"},
		{"a\n1", "a 1"},
	}
	for _, tt := range tests {
		if got := mergeWrappedLines(tt.in); got != tt.want {
			t.Errorf("mergeWrappedLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
