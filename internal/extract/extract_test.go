// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/article-summarizer/internal/artifact"
	"github.com/pdiddy/article-summarizer/internal/llm"
	"github.com/pdiddy/article-summarizer/pkg/types"
)

func TestMain(m *testing.M) {
	// Override the model retry delay to avoid real sleeps.
	llm.RetryDelay = time.Millisecond
	os.Exit(m.Run())
}

// --- fakes ---

// fakeExtractor returns canned pages per file base name. A name listed in
// panics makes Pages panic.
type fakeExtractor struct {
	pages  map[string][]string
	panics map[string]bool
}

func (f *fakeExtractor) Pages(_ context.Context, path string) ([]string, error) {
	name := filepath.Base(path)
	if f.panics[name] {
		panic("corrupt cross-reference table in " + name)
	}
	if pages, ok := f.pages[name]; ok {
		return pages, nil
	}
	return []string{"Body of " + name + "."}, nil
}

// recordingGenerator returns reply and remembers every prompt it saw.
type recordingGenerator struct {
	reply string

	mu      sync.Mutex
	prompts []string
}

func (g *recordingGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, req.Prompt)
	return g.reply, nil
}

func (g *recordingGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// downGenerator simulates an unreachable model server.
type downGenerator struct {
	calls atomic.Int32
}

func (g *downGenerator) Generate(context.Context, llm.Request) (string, error) {
	g.calls.Add(1)
	return "", errors.New("dial tcp 127.0.0.1:11434: connect: connection refused")
}

// writePDFs creates placeholder PDFs; the fake extractor never reads them.
func writePDFs(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(paths[i], []byte("%PDF-1.4"), 0o644))
	}
	return paths
}

func testPipeline(dir string, gen llm.Generator, ex *fakeExtractor) *Pipeline {
	if ex == nil {
		ex = &fakeExtractor{}
	}
	return &Pipeline{
		Extractor: ex,
		Generator: gen,
		Config: types.SummarizeConfig{
			LLMConfig: types.LLMConfig{Model: "test-model", Retries: 2},
			Dir:       dir,
		},
	}
}

// --- SummarizeDir ---

func TestSummarizeDir_BatchIsolation(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "a.pdf", "b.pdf", "c.pdf")
	gen := &recordingGenerator{reply: `{"title":"T","hypotheses":["H1"]}`}
	p := testPipeline(dir, gen, &fakeExtractor{panics: map[string]bool{"b.pdf": true}})

	var out bytes.Buffer
	summary, err := p.SummarizeDir(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, BatchSummary{Summarized: 2, Failed: 1}, summary)
	assert.True(t, summary.HasFailures())
	assert.Equal(t, 3, summary.Total())

	for _, name := range []string{"a.json", "c.json"} {
		rec, err := artifact.ReadSummary(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, "T", rec.Title())
	}
	assert.NoFileExists(t, filepath.Join(dir, "b.json"))
	assert.Contains(t, out.String(), "summarized a.pdf (2 fields, 1 hypotheses)")
	assert.Contains(t, out.String(), "failed  b.pdf: internal error")
	assert.Contains(t, out.String(), "Batch summary: 2 summarized, 0 skipped, 1 failed (total: 3)")
}

func TestSummarizeDir_CleansTextBeforePrompting(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "paper.pdf")
	gen := &recordingGenerator{reply: `{}`}
	ex := &fakeExtractor{pages: map[string][]string{
		"paper.pdf": {
			"Face-\nbook study (Smith 2020) shows [3] effects.",
			"References\nJones, A. (2019). Another paper.",
		},
	}}
	p := testPipeline(dir, gen, ex)

	_, err := p.SummarizeDir(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)

	require.Equal(t, 1, gen.calls())
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "Facebook study")
	assert.NotContains(t, prompt, "Smith")
	assert.NotContains(t, prompt, "[3]")
	assert.NotContains(t, prompt, "Jones")
}

func TestSummarizeDir_SkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	paths := writePDFs(t, dir, "a.pdf")
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(paths[0], old, old))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("{\"title\":\"old\"}\n"), 0o644))

	gen := &recordingGenerator{reply: `{"title":"new"}`}
	p := testPipeline(dir, gen, nil)

	var out bytes.Buffer
	summary, err := p.SummarizeDir(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Skipped: 1}, summary)
	assert.Equal(t, 0, gen.calls())
	assert.Contains(t, out.String(), "skipped a.pdf")

	p.Config.Force = true
	summary, err = p.SummarizeDir(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Summarized: 1}, summary)
	rec, err := artifact.ReadSummary(filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	assert.Equal(t, "new", rec.Title())
}

func TestSummarizeDir_ModelDownWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "a.pdf", "b.pdf")
	gen := &downGenerator{}
	p := testPipeline(dir, gen, nil)

	var out bytes.Buffer
	summary, err := p.SummarizeDir(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, BatchSummary{Failed: 2}, summary)
	assert.Equal(t, int32(4), gen.calls.Load(), "two attempts per document")
	assert.NoFileExists(t, filepath.Join(dir, "a.json"))
	assert.NoFileExists(t, filepath.Join(dir, "b.json"))
	assert.Contains(t, out.String(), "failed  a.pdf: querying model")
}

func TestSummarizeDir_UnparsableReplyWritesEmptyRecord(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "a.pdf")
	p := testPipeline(dir, &recordingGenerator{reply: "I could not find an article."}, nil)

	summary, err := p.SummarizeDir(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Summarized: 1}, summary)

	data, err := os.ReadFile(filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestSummarizeDir_NoTextFails(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "scan.pdf")
	gen := &recordingGenerator{reply: `{}`}
	p := testPipeline(dir, gen, &fakeExtractor{pages: map[string][]string{"scan.pdf": nil}})

	var out bytes.Buffer
	summary, err := p.SummarizeDir(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Failed: 1}, summary)
	assert.Equal(t, 0, gen.calls())
	assert.Contains(t, out.String(), "no extractable text")
}

func TestSummarizeDir_MissingDirectory(t *testing.T) {
	gen := &recordingGenerator{}
	p := testPipeline(filepath.Join(t.TempDir(), "absent"), gen, nil)

	summary, err := p.SummarizeDir(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{}, summary)
	assert.Equal(t, 0, gen.calls())
}

func TestSummarizeDir_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "a.PDF")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	gen := &recordingGenerator{reply: `{}`}
	p := testPipeline(dir, gen, nil)

	summary, err := p.SummarizeDir(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Summarized: 1}, summary)
	assert.FileExists(t, filepath.Join(dir, "a.json"))
}

// concurrencyGenerator tracks the peak number of overlapping calls.
type concurrencyGenerator struct {
	inflight atomic.Int32
	peak     atomic.Int32
}

func (g *concurrencyGenerator) Generate(context.Context, llm.Request) (string, error) {
	n := g.inflight.Add(1)
	defer g.inflight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return `{"title":"T"}`, nil
}

func TestSummarizeFiles_BoundedWorkers(t *testing.T) {
	dir := t.TempDir()
	names := []string{"1.pdf", "2.pdf", "3.pdf", "4.pdf", "5.pdf", "6.pdf", "7.pdf", "8.pdf"}
	paths := writePDFs(t, dir, names...)
	gen := &concurrencyGenerator{}
	p := testPipeline(dir, gen, nil)
	p.Config.Workers = 3

	summary, err := p.SummarizeFiles(context.Background(), paths, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, BatchSummary{Summarized: 8}, summary)
	assert.LessOrEqual(t, gen.peak.Load(), int32(3))
	for _, path := range paths {
		assert.FileExists(t, artifact.OutputPath(path, artifact.SummarySuffix))
	}
}

func TestSummarizeFiles_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	paths := writePDFs(t, dir, "a.pdf", "b.pdf")
	gen := &recordingGenerator{reply: `{}`}
	p := testPipeline(dir, gen, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := p.SummarizeFiles(ctx, paths, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Total())
	assert.Equal(t, 0, gen.calls())
}

// --- SummarizeFile ---

func TestSummarizeFile_DefaultModel(t *testing.T) {
	dir := t.TempDir()
	paths := writePDFs(t, dir, "a.pdf")

	var gotModel string
	gen := generatorFunc(func(_ context.Context, req llm.Request) (string, error) {
		gotModel = req.Model
		return `{"doi":"10.1/x"}`, nil
	})
	p := testPipeline(dir, gen, nil)
	p.Config.Model = ""

	rec, err := p.SummarizeFile(context.Background(), paths[0])
	require.NoError(t, err)
	assert.Equal(t, llm.DefaultModel, gotModel)
	assert.Equal(t, types.Summary{"doi": "10.1/x"}, rec)
}

type generatorFunc func(context.Context, llm.Request) (string, error)

func (f generatorFunc) Generate(ctx context.Context, req llm.Request) (string, error) {
	return f(ctx, req)
}

func TestSummarizeFile_ExtractorError(t *testing.T) {
	p := testPipeline(t.TempDir(), &recordingGenerator{}, nil)
	p.Extractor = errExtractor{}

	_, err := p.SummarizeFile(context.Background(), "x.pdf")
	assert.ErrorContains(t, err, "extracting text")
}

type errExtractor struct{}

func (errExtractor) Pages(context.Context, string) ([]string, error) {
	return nil, errors.New("not a PDF file")
}

func TestBatchSummary(t *testing.T) {
	s := BatchSummary{Summarized: 2, Skipped: 3}
	assert.Equal(t, 5, s.Total())
	assert.False(t, s.HasFailures())
	s.Failed = 1
	assert.True(t, s.HasFailures())
	assert.True(t, strings.HasPrefix(ErrNoText.Error(), "no extractable"))
}
