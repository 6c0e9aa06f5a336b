// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich adds bibliographic metadata to summary records by looking
// up each record's title in the OpenAlex works index.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/article-summarizer/internal/artifact"
	"github.com/pdiddy/article-summarizer/pkg/types"
)

var (
	// ErrNoTitle is returned for a record without a usable title.
	ErrNoTitle = errors.New("record has no title")
	// ErrNoMatch is returned when the title search finds no work.
	ErrNoMatch = errors.New("no matching work")
)

// WorksSearcher finds works in a bibliographic index.
type WorksSearcher interface {
	SearchWorks(ctx context.Context, q WorksQuery) ([]Work, error)
}

// BatchSummary holds counts from a batch enrich run.
type BatchSummary struct {
	Enriched int
	Skipped  int
	Failed   int
}

// Total returns the number of records processed.
func (s BatchSummary) Total() int {
	return s.Enriched + s.Skipped + s.Failed
}

// HasFailures reports whether any record failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Merge copies every key of rec into s, overwriting keys s already has, and
// returns s. A nil s is allocated.
func Merge(s, rec types.Summary) types.Summary {
	if s == nil {
		s = make(types.Summary, len(rec))
	}
	for k, v := range rec {
		s[k] = v
	}
	return s
}

// Enricher enriches summary records one file at a time.
type Enricher struct {
	Searcher WorksSearcher
	Config   types.EnrichConfig
}

// EnrichDir enriches every summary record directly inside Config.Dir,
// writing <base>_enriched.json beside each and a status line per file to w.
// Files that are themselves enrichment output are ignored. Records without
// a title or a match are skipped and left unmodified.
func (e *Enricher) EnrichDir(ctx context.Context, w io.Writer) (BatchSummary, error) {
	files, err := artifact.ListFiles(e.Config.Dir, artifact.SummarySuffix)
	if err != nil {
		return BatchSummary{}, err
	}

	var summary BatchSummary
	for _, path := range files {
		if strings.HasSuffix(strings.ToLower(path), artifact.EnrichedSuffix) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		switch e.process(ctx, path, w) {
		case outcomeEnriched:
			summary.Enriched++
		case outcomeSkipped:
			summary.Skipped++
		case outcomeFailed:
			summary.Failed++
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d enriched, %d skipped, %d failed (total: %d)\n",
		summary.Enriched, summary.Skipped, summary.Failed, summary.Total())
	return summary, ctx.Err()
}

type outcome int

const (
	outcomeEnriched outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (e *Enricher) process(ctx context.Context, path string, w io.Writer) (res outcome) {
	name := filepath.Base(path)
	logger := log.With().Str("file", name).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("enrichment panicked")
			fmt.Fprintf(w, "failed  %s: internal error: %v\n", name, r)
			res = outcomeFailed
		}
	}()

	if !e.Config.Force {
		changed, err := artifact.Changed(path, artifact.OutputPath(path, artifact.EnrichedSuffix))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			return outcomeFailed
		}
		if !changed {
			fmt.Fprintf(w, "skipped %s\n", name)
			return outcomeSkipped
		}
	}

	out, err := e.EnrichFile(ctx, path)
	switch {
	case errors.Is(err, ErrNoTitle), errors.Is(err, ErrNoMatch):
		logger.Warn().Err(err).Msg("record left unmodified")
		fmt.Fprintf(w, "skipped %s: %v\n", name, err)
		return outcomeSkipped
	case err != nil:
		logger.Error().Err(err).Msg("enrich failed")
		fmt.Fprintf(w, "failed  %s: %v\n", name, err)
		return outcomeFailed
	}

	fmt.Fprintf(w, "enriched %s -> %s\n", name, filepath.Base(out))
	return outcomeEnriched
}

// EnrichFile looks up the record at path by title, merges the best match
// into it and writes the result to <base>_enriched.json, returning that
// path. The source file is never modified; on ErrNoTitle or ErrNoMatch
// nothing is written.
func (e *Enricher) EnrichFile(ctx context.Context, path string) (string, error) {
	rec, err := artifact.ReadSummary(path)
	if err != nil {
		return "", err
	}

	title := rec.Title()
	if title == "" {
		return "", ErrNoTitle
	}

	works, err := e.Searcher.SearchWorks(ctx, WorksQuery{Search: title, NMax: 1})
	if err != nil {
		return "", fmt.Errorf("searching OpenAlex: %w", err)
	}
	if len(works) == 0 {
		return "", fmt.Errorf("%w for %q", ErrNoMatch, title)
	}

	out := artifact.OutputPath(path, artifact.EnrichedSuffix)
	if err := artifact.WriteSummary(out, Merge(rec, WorkRecord(works[0]))); err != nil {
		return "", err
	}
	return out, nil
}
