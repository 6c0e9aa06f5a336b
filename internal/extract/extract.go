// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns article PDFs into structured summary records: it
// cleans the page text, prompts the model with the fixed extraction schema,
// and recovers a JSON object from the reply.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/article-summarizer/internal/artifact"
	"github.com/pdiddy/article-summarizer/internal/llm"
	"github.com/pdiddy/article-summarizer/internal/pdftext"
	"github.com/pdiddy/article-summarizer/internal/textclean"
	"github.com/pdiddy/article-summarizer/pkg/types"
)

// ErrNoText is returned for a PDF with no extractable text.
var ErrNoText = errors.New("no extractable text")

// BatchSummary holds counts from a batch summarize run.
type BatchSummary struct {
	Summarized int
	Skipped    int
	Failed     int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Summarized + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// outcome is the result of processing one document.
type outcome int

const (
	outcomeSummarized outcome = iota
	outcomeSkipped
	outcomeFailed
)

// Pipeline summarizes PDFs. Each document runs text extraction,
// normalization, citation stripping, prompting, model query and recovery
// strictly in that order; documents are independent of one another.
type Pipeline struct {
	Extractor pdftext.Extractor
	Generator llm.Generator
	Config    types.SummarizeConfig
}

// SummarizeDir summarizes every PDF directly inside Config.Dir, writing
// <base>.json beside each one and a status line per file to w. A missing
// directory is not an error.
func (p *Pipeline) SummarizeDir(ctx context.Context, w io.Writer) (BatchSummary, error) {
	files, err := artifact.ListFiles(p.Config.Dir, ".pdf")
	if err != nil {
		return BatchSummary{}, err
	}
	return p.SummarizeFiles(ctx, files, w)
}

// SummarizeFiles processes files with at most Config.Workers running at
// once. A document that fails, including by panicking, is counted and
// logged; the rest of the batch continues. Cancelling ctx stops new
// documents from starting and is reported as the returned error.
func (p *Pipeline) SummarizeFiles(ctx context.Context, files []string, w io.Writer) (BatchSummary, error) {
	workers := p.Config.Workers
	if workers <= 0 {
		workers = 1
	}

	out := &syncWriter{w: w}
	var (
		mu      sync.Mutex
		summary BatchSummary
	)

	var g errgroup.Group
	g.SetLimit(workers)
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := p.process(ctx, f, out)
			mu.Lock()
			defer mu.Unlock()
			switch res {
			case outcomeSummarized:
				summary.Summarized++
			case outcomeSkipped:
				summary.Skipped++
			case outcomeFailed:
				summary.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprintf(w, "\nBatch summary: %d summarized, %d skipped, %d failed (total: %d)\n",
		summary.Summarized, summary.Skipped, summary.Failed, summary.Total())
	return summary, ctx.Err()
}

// process handles one document end to end, converting a panic into a
// failure so it stays contained to this document.
func (p *Pipeline) process(ctx context.Context, pdfPath string, w io.Writer) (res outcome) {
	name := filepath.Base(pdfPath)
	outPath := artifact.OutputPath(pdfPath, artifact.SummarySuffix)
	logger := log.With().Str("file", name).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("document processing panicked")
			fmt.Fprintf(w, "failed  %s: internal error: %v\n", name, r)
			res = outcomeFailed
		}
	}()

	if !p.Config.Force {
		changed, err := artifact.Changed(pdfPath, outPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			return outcomeFailed
		}
		if !changed {
			fmt.Fprintf(w, "skipped %s\n", name)
			return outcomeSkipped
		}
	}

	fmt.Fprintf(w, "summarizing %s\n", name)
	start := time.Now()

	summary, err := p.SummarizeFile(ctx, pdfPath)
	if err != nil {
		logger.Error().Err(err).Msg("summarize failed")
		fmt.Fprintf(w, "failed  %s: %v\n", name, err)
		return outcomeFailed
	}

	if err := artifact.WriteSummary(outPath, summary); err != nil {
		logger.Error().Err(err).Msg("write failed")
		fmt.Fprintf(w, "failed  %s: write error: %v\n", name, err)
		return outcomeFailed
	}

	hypotheses := len(summary.Hypotheses())
	logger.Debug().Dur("elapsed", time.Since(start)).Int("fields", len(summary)).Int("hypotheses", hypotheses).Msg("summary written")
	fmt.Fprintf(w, "summarized %s (%d fields, %d hypotheses)\n", name, len(summary), hypotheses)
	return outcomeSummarized
}

// SummarizeFile runs the extraction chain for one PDF and returns the
// recovered record. A reply with no usable JSON yields an empty record, not
// an error; an unreachable model does return an error so that no file is
// written and a later run retries the document.
func (p *Pipeline) SummarizeFile(ctx context.Context, pdfPath string) (types.Summary, error) {
	logger := log.With().Str("file", filepath.Base(pdfPath)).Logger()

	pages, err := p.Extractor.Pages(ctx, pdfPath)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	if len(pages) == 0 {
		return nil, ErrNoText
	}

	text := textclean.StripCitations(textclean.Normalize(pdftext.Text(pages)))
	logger.Debug().Int("pages", len(pages)).Int("chars", len([]rune(text))).Msg("text cleaned")

	model := p.Config.Model
	if model == "" {
		model = llm.DefaultModel
	}
	reply := llm.Query(ctx, p.Generator, llm.Request{
		Prompt:    BuildPrompt(text),
		Model:     model,
		MaxTokens: p.Config.MaxTokens,
	}, p.Config.Retries)
	if !reply.OK() {
		return nil, fmt.Errorf("querying model: %w", reply.Err)
	}
	logger.Debug().Int("attempts", reply.Attempts).Msg("model replied")

	return recoverWith(logger, reply.Text), nil
}

// syncWriter serializes status lines from concurrent workers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
