// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/article-summarizer/internal/extract"
	"github.com/pdiddy/article-summarizer/internal/llm"
	"github.com/pdiddy/article-summarizer/internal/pdftext"
	"github.com/pdiddy/article-summarizer/pkg/types"
)

// defaultLLMTimeout bounds a single generation request. Long articles on a
// local model can take several minutes.
const defaultLLMTimeout = 10 * time.Minute

var summarizeCmd = &cobra.Command{
	Use:   "summarize <dir>",
	Short: "Summarize every PDF in a directory into a JSON record",
	Long: `Summarize extracts the text of each PDF directly inside <dir>, cleans it,
asks the language model for a structured summary, and writes <name>.json
beside the PDF. PDFs whose JSON record is newer than the PDF are skipped
unless --force is given.

A document whose model request fails after all retries gets no record, so
a later run picks it up again. A reply that holds no recoverable JSON is
written as an empty record.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	f := summarizeCmd.Flags()
	f.String("backend", string(types.BackendOllama), "generation API: ollama or openai")
	f.String("base-url", "", "model server root (default http://localhost:11434)")
	f.String("model", llm.DefaultModel, "model identifier")
	f.Int("max-tokens", llm.DefaultMaxTokens, "output token budget per request")
	f.Int("num-ctx", llm.DefaultNumCtx, "context window requested from Ollama")
	f.Int("retries", llm.DefaultRetries, "attempts per model request")
	f.String("cache-dir", "", "cache model replies in this directory")
	f.String("pdf-backend", string(types.PDFNative), "PDF text extractor: native or pdftotext")
	f.Int("workers", 1, "documents processed at once")
	f.Bool("force", false, "re-summarize PDFs whose record is up to date")
	f.Duration("timeout", defaultLLMTimeout, "timeout for one model request")

	bindFlags("summarize", f)
	rootCmd.AddCommand(summarizeCmd)
}

// summarizeConfig assembles the stage configuration from flags, config file,
// environment and secrets.
func summarizeConfig(dir string) types.SummarizeConfig {
	cfg := types.SummarizeConfig{
		LLMConfig: types.LLMConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("summarize.timeout"),
				UserAgent: defaultUserAgent,
			},
			Backend:   types.LLMBackend(viper.GetString("summarize.backend")),
			BaseURL:   viper.GetString("summarize.base-url"),
			Model:     viper.GetString("summarize.model"),
			APIKey:    viper.GetString("summarize.api-key"),
			MaxTokens: viper.GetInt("summarize.max-tokens"),
			NumCtx:    viper.GetInt("summarize.num-ctx"),
			Retries:   viper.GetInt("summarize.retries"),
			CacheDir:  viper.GetString("summarize.cache-dir"),
		},
		Dir:        dir,
		PDFBackend: types.PDFBackend(viper.GetString("summarize.pdf-backend")),
		Workers:    viper.GetInt("summarize.workers"),
		Force:      viper.GetBool("summarize.force"),
	}
	loadedSecrets.ApplyLLM(&cfg.LLMConfig)
	return cfg
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg := summarizeConfig(args[0])
	if cfg.Workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", cfg.Workers)
	}

	gen, err := llm.New(cfg.LLMConfig)
	if err != nil {
		return err
	}
	ext, err := pdftext.New(cfg.PDFBackend)
	if err != nil {
		return err
	}

	p := &extract.Pipeline{Extractor: ext, Generator: gen, Config: cfg}
	summary, err := p.SummarizeDir(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed summarization", summary.Failed)
	}
	return nil
}
