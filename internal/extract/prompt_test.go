// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/article-summarizer/pkg/types"
)

const (
	articleStart = "=== ARTICLE TO PROCESS ===\n"
	articleEnd   = "\n=== END ARTICLE ==="
)

// embedded returns the article text found between the prompt markers.
func embedded(t *testing.T, prompt string) string {
	t.Helper()
	start := strings.Index(prompt, articleStart)
	end := strings.Index(prompt, articleEnd)
	require.True(t, start >= 0 && end >= start, "article markers missing")
	return prompt[start+len(articleStart) : end]
}

func TestBuildPrompt_EmbedsTextVerbatim(t *testing.T) {
	text := `Results <p < .05> & "quoted" {braces} {{.Text}}`
	assert.Equal(t, text, embedded(t, BuildPrompt(text)))
}

func TestBuildPrompt_Truncation(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "ascii over the limit",
			text: strings.Repeat("a", MaxPromptChars) + "TAIL",
			want: strings.Repeat("a", MaxPromptChars),
		},
		{
			name: "multibyte counted as characters",
			text: strings.Repeat("é", MaxPromptChars+5),
			want: strings.Repeat("é", MaxPromptChars),
		},
		{
			name: "exactly at the limit",
			text: strings.Repeat("b", MaxPromptChars),
			want: strings.Repeat("b", MaxPromptChars),
		},
		{
			name: "short text untouched",
			text: "short",
			want: "short",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, embedded(t, BuildPrompt(tt.text)))
		})
	}
}

func TestBuildPrompt_DeclaresSchema(t *testing.T) {
	prompt := BuildPrompt("")
	for _, f := range types.SummaryFields {
		assert.Contains(t, prompt, "- "+f+":", "field %s not described", f)
	}
	assert.Contains(t, prompt, `"hypotheses": ["hypothesis 1", "hypothesis 2", "..."]`)
	assert.Contains(t, prompt, "Return ONLY a valid JSON object")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "日本", Truncate("日本語", 2))
}
