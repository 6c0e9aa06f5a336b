// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"text/template"
)

// MaxPromptChars bounds how much article text is embedded in a prompt, in
// characters (code points). Text beyond the bound never reaches the model.
const MaxPromptChars = 30000

// summaryPromptTmpl is the fixed extraction prompt. The article text is
// substituted verbatim; text/template performs no escaping.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are a research assistant. From the following academic article, extract a structured summary covering these fields.
- doi: The DOI of the article, if listed.
- title: The title of the academic article.
- authors: The authors of the article.
- abstract: The article abstract, almost always the first paragraph of the paper.
- research_questions: What research questions are the authors addressing?
- hypotheses: What hypotheses do they formally propose?
- data: Describe the data used in the analysis (years, geography, unit of analysis, dataset size, sources).
- methods: Describe the statistical methods used and design decisions such as control variables.
- findings: What did the authors find? What results do they discuss?

When writing each field, ensure:
- doi is the exact DOI of the article.
- title is the exact title of the article.
- abstract is the exact abstract of the article.
- authors include only names, concatenated into a single string.
- research_questions contains exact or paraphrased questions from the introduction or abstract.
- hypotheses only includes explicit predictions or testable claims declared as hypotheses to be tested. If none are stated, return an empty string.
- data lists year(s), platform, dataset size, unit of analysis, and source, if stated.
- methods describes actual models and metrics used (e.g., linear regression, GAMLSS, support vector machines, diffusion trees, structural virality, depth).
- findings are only drawn from the Results or Discussion. Do not invent findings.

Each field should be written as a detailed, multi-sentence paragraph (at least 3-4 sentences), using the exact terminology and evidence provided in the text.
If there are multiple hypotheses, create a nested entry for each.
Be specific and include details such as time ranges, sample sizes, platforms, modeling techniques, and units of analysis.
Use actual outcomes, patterns, or numerical/statistical results; mirror the exact language used in the article.
If the article includes more than one hypothesis, data source, method, result, finding, or question, include each as a separate clearly delimited sentence or clause, rather than combining them into one vague statement.

DO NOT infer or fabricate information. Only include what the article states.
DO NOT include commentary, preambles, reasoning, or planning steps.
DO NOT return any text before or after the JSON. Return only the JSON.

As a checklist, ensure:
- Named entities are named explicitly (e.g., Facebook, not 'social media').
- The dataset size, time range, and source are included.
- The method includes named statistical metrics (e.g., linear regression, logistic regression, structural virality, depth).
- Each answer is comprehensive and uses MULTIPLE SENTENCES in its answer.
- No findings are invented. All numbers must come from the article and use its language. Do NOT use outside knowledge or general assumptions; only use what is specifically stated or measured in the article.

=== ARTICLE TO PROCESS ===
{{.Text}}
=== END ARTICLE ===

DO NOT include any content from the example below in your final answer. It is only provided to show formatting style.
Return ONLY a valid JSON object like the example below. Do NOT include any prose, commentary, or explanation before or after it.

=== Example (for structure only, not content!) ===

{"doi": "...",  "title": "...",  "authors": "...",  "abstract": "...",  "research_questions": "...",  "hypotheses": ["hypothesis 1", "hypothesis 2", "..."],  "data": "...",  "methods": "...",  "findings": "..."}

=== End of Example ===

`))

// BuildPrompt embeds the first MaxPromptChars characters of text into the
// extraction prompt.
func BuildPrompt(text string) string {
	var buf bytes.Buffer
	// The template has a single string field and was parsed at init, so
	// Execute cannot fail on a bytes.Buffer.
	_ = summaryPromptTmpl.Execute(&buf, struct{ Text string }{Text: Truncate(text, MaxPromptChars)})
	return buf.String()
}

// Truncate returns the first n characters of s, counting code points.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
