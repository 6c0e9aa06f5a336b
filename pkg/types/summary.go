// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Summary field names produced by the extraction prompt.
const (
	FieldDOI               = "doi"
	FieldTitle             = "title"
	FieldAuthors           = "authors"
	FieldAbstract          = "abstract"
	FieldResearchQuestions = "research_questions"
	FieldHypotheses        = "hypotheses"
	FieldData              = "data"
	FieldMethods           = "methods"
	FieldFindings          = "findings"
)

// SummaryFields lists the extraction schema in prompt order.
var SummaryFields = []string{
	FieldDOI,
	FieldTitle,
	FieldAuthors,
	FieldAbstract,
	FieldResearchQuestions,
	FieldHypotheses,
	FieldData,
	FieldMethods,
	FieldFindings,
}

// EnrichmentFields lists the keys merged in from a bibliographic lookup, in
// the order they are written.
var EnrichmentFields = []string{
	"title",
	"abstract",
	"landing_page_url",
	"is_oa",
	"doi",
	"cited_by_count",
	"referenced_works_count",
	"publication_date",
	"type",
	"journal",
	"oa_url",
	"pdf_url",
	"concepts",
	"authors",
	"openalex_id",
}

// Summary is the structured record extracted from one article. Values are
// whatever the model returned: usually strings, with hypotheses as a list of
// strings. A field the model omitted is absent rather than defaulted.
type Summary map[string]any

// Title returns the title field when it is a non-empty string.
func (s Summary) Title() string {
	v, _ := s[FieldTitle].(string)
	return strings.TrimSpace(v)
}

// Hypotheses returns the hypotheses field as a list. A bare string (the
// prompt allows an empty string when none are stated) becomes a
// single-element list unless it is blank.
func (s Summary) Hypotheses() []string {
	switch v := s[FieldHypotheses].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, h := range v {
			if str, ok := h.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Keys returns the record's keys in persisted order: schema fields first,
// then enrichment fields, then anything else alphabetically.
func (s Summary) Keys() []string {
	keys := make([]string, 0, len(s))
	placed := make(map[string]bool, len(s))
	for _, group := range [][]string{SummaryFields, EnrichmentFields} {
		for _, k := range group {
			if _, ok := s[k]; ok && !placed[k] {
				keys = append(keys, k)
				placed[k] = true
			}
		}
	}
	var rest []string
	for k := range s {
		if !placed[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// MarshalJSON writes the record with keys in Keys order. HTML characters are
// left unescaped so text round-trips as the model wrote it.
func (s Summary) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeRaw(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeRaw(&buf, s[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeRaw appends the JSON form of v without the encoder's trailing newline.
func encodeRaw(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
