// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/article-summarizer/internal/httputil"
	"github.com/pdiddy/article-summarizer/pkg/types"
)

// openAlexWorksURL is the OpenAlex Works endpoint. Declared as a var so tests
// can substitute an httptest server.
var openAlexWorksURL = "https://api.openalex.org/works"

const (
	// maxPerPage is the largest page OpenAlex serves.
	maxPerPage = 200

	// DefaultSort orders hits by search relevance.
	DefaultSort = "relevance_score:desc"
)

// WorksQuery describes one OpenAlex works search.
type WorksQuery struct {
	// Search is the free-text query.
	Search string
	// Filter is an optional OpenAlex filter expression.
	Filter string
	// Sort defaults to DefaultSort.
	Sort string
	// NMax caps the number of works returned (default 1).
	NMax int
}

// OpenAlexClient searches the OpenAlex works index.
type OpenAlexClient struct {
	Client *http.Client
	// Email is sent as mailto parameter for polite pool access.
	Email      string
	UserAgent  string
	MaxRetries int
}

// NewOpenAlexClient builds a client from cfg.
func NewOpenAlexClient(cfg types.EnrichConfig) *OpenAlexClient {
	return &OpenAlexClient{
		Client:     &http.Client{Timeout: cfg.Timeout},
		Email:      cfg.Email,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

// SearchWorks pages through results with OpenAlex cursors until q.NMax works
// are collected, a page comes back empty, or no next cursor is returned.
func (c *OpenAlexClient) SearchWorks(ctx context.Context, q WorksQuery) ([]Work, error) {
	nMax := q.NMax
	if nMax <= 0 {
		nMax = 1
	}
	sortBy := q.Sort
	if sortBy == "" {
		sortBy = DefaultSort
	}

	var works []Work
	cursor := "*"
	for len(works) < nMax {
		params := url.Values{
			"per-page": {strconv.Itoa(min(maxPerPage, nMax))},
			"cursor":   {cursor},
			"sort":     {sortBy},
		}
		if q.Search != "" {
			params.Set("search", q.Search)
		}
		if q.Filter != "" {
			params.Set("filter", q.Filter)
		}
		if c.Email != "" {
			params.Set("mailto", c.Email)
		}

		page, err := c.fetch(ctx, openAlexWorksURL+"?"+params.Encode())
		if err != nil {
			return nil, err
		}
		works = append(works, page.Results...)

		cursor = page.Meta.NextCursor
		if cursor == "" || len(page.Results) == 0 {
			break
		}
	}

	if len(works) > nMax {
		works = works[:nMax]
	}
	return works, nil
}

// fetch retrieves and decodes one results page.
func (c *OpenAlexClient) fetch(ctx context.Context, reqURL string) (*worksPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var page worksPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return &page, nil
}

// WorkRecord maps a work onto the enrichment keys. Values OpenAlex leaves
// out are nil so they are written as JSON null.
func WorkRecord(w Work) types.Summary {
	rec := types.Summary{
		"title":                  deref(w.DisplayName),
		"abstract":               nil,
		"landing_page_url":       nil,
		"is_oa":                  nil,
		"doi":                    deref(w.DOI),
		"cited_by_count":         deref(w.CitedByCount),
		"referenced_works_count": deref(w.ReferencedWorksCount),
		"publication_date":       deref(w.PublicationDate),
		"type":                   deref(w.Type),
		"journal":                nil,
		"oa_url":                 nil,
		"pdf_url":                nil,
		"concepts":               conceptNames(w.Concepts),
		"authors":                authorNames(w.Authorships),
		"openalex_id":            deref(w.ID),
	}
	if abstract := reconstructAbstract(w.AbstractInvertedIndex); abstract != "" {
		rec["abstract"] = abstract
	}
	if loc := w.PrimaryLocation; loc != nil {
		rec["landing_page_url"] = deref(loc.LandingPageURL)
		rec["pdf_url"] = deref(loc.PDFURL)
		if src := loc.Source; src != nil {
			rec["is_oa"] = deref(src.IsOA)
			rec["journal"] = deref(src.DisplayName)
		}
	}
	if oa := w.OpenAccess; oa != nil {
		rec["oa_url"] = deref(oa.OAURL)
	}
	return rec
}

// reconstructAbstract rebuilds abstract text from OpenAlex's
// abstract_inverted_index by ordering words on their first position. Each
// distinct word appears once.
func reconstructAbstract(invertedIndex map[string][]int) string {
	type firstPos struct {
		word string
		pos  int
	}
	words := make([]firstPos, 0, len(invertedIndex))
	for word, positions := range invertedIndex {
		if len(positions) == 0 {
			continue
		}
		p := math.MaxInt
		for _, pos := range positions {
			p = min(p, pos)
		}
		words = append(words, firstPos{word: word, pos: p})
	}

	sort.Slice(words, func(i, j int) bool {
		if words[i].pos != words[j].pos {
			return words[i].pos < words[j].pos
		}
		return words[i].word < words[j].word
	})

	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.word
	}
	return strings.Join(out, " ")
}

func conceptNames(concepts []openAlexConcept) []string {
	names := make([]string, 0, len(concepts))
	for _, c := range concepts {
		names = append(names, c.DisplayName)
	}
	return names
}

func authorNames(authorships []openAlexAuthorship) []string {
	names := make([]string, 0, len(authorships))
	for _, a := range authorships {
		names = append(names, a.Author.DisplayName)
	}
	return names
}

// deref returns *p, or nil for a nil pointer, as an untyped value.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// OpenAlex API JSON structures. Pointer fields distinguish a missing or null
// value from a zero value.
type worksPage struct {
	Meta    worksMeta `json:"meta"`
	Results []Work    `json:"results"`
}

type worksMeta struct {
	Count      int    `json:"count"`
	PerPage    int    `json:"per_page"`
	NextCursor string `json:"next_cursor"`
}

// Work is one OpenAlex work as returned by the works endpoint.
type Work struct {
	ID                    *string              `json:"id"`
	DisplayName           *string              `json:"display_name"`
	DOI                   *string              `json:"doi"`
	PublicationDate       *string              `json:"publication_date"`
	Type                  *string              `json:"type"`
	CitedByCount          *int                 `json:"cited_by_count"`
	ReferencedWorksCount  *int                 `json:"referenced_works_count"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	PrimaryLocation       *openAlexLocation    `json:"primary_location"`
	OpenAccess            *openAlexOpenAccess  `json:"open_access"`
	Concepts              []openAlexConcept    `json:"concepts"`
	Authorships           []openAlexAuthorship `json:"authorships"`
}

type openAlexLocation struct {
	LandingPageURL *string         `json:"landing_page_url"`
	PDFURL         *string         `json:"pdf_url"`
	Source         *openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName *string `json:"display_name"`
	IsOA        *bool   `json:"is_oa"`
}

type openAlexOpenAccess struct {
	IsOA  bool    `json:"is_oa"`
	OAURL *string `json:"oa_url"`
}

type openAlexConcept struct {
	DisplayName string `json:"display_name"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
