// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/article-summarizer/internal/enrich"
	"github.com/pdiddy/article-summarizer/pkg/types"
)

const (
	defaultEnrichTimeout = 60 * time.Second
	defaultMaxRetries    = 5
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <dir>",
	Short: "Add OpenAlex metadata to the summary records in a directory",
	Long: `Enrich looks up the title of every summary record directly inside <dir>
in the OpenAlex works index and writes <name>_enriched.json with the best
match merged in. Index values replace same-named fields from the summary.

Records without a title or without a match are left as they are. Files
already ending in _enriched.json are never used as input.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrich,
}

func init() {
	f := enrichCmd.Flags()
	f.String("email", "", "contact address sent to OpenAlex (default from .secrets/openalex-email)")
	f.Int("max-retries", defaultMaxRetries, "retries on HTTP 429 and 503")
	f.Bool("force", false, "re-enrich records whose enriched output is up to date")
	f.Duration("timeout", defaultEnrichTimeout, "HTTP request timeout")

	bindFlags("enrich", f)
	rootCmd.AddCommand(enrichCmd)
}

func enrichConfig(dir string) types.EnrichConfig {
	cfg := types.EnrichConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("enrich.timeout"),
			UserAgent: defaultUserAgent,
		},
		Dir:        dir,
		Email:      viper.GetString("enrich.email"),
		MaxRetries: viper.GetInt("enrich.max-retries"),
		Force:      viper.GetBool("enrich.force"),
	}
	loadedSecrets.ApplyEnrich(&cfg)
	return cfg
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg := enrichConfig(args[0])
	if cfg.Email == "" {
		log.Warn().Msg("no OpenAlex email configured; requests use the common pool")
	}

	e := &enrich.Enricher{Searcher: enrich.NewOpenAlexClient(cfg), Config: cfg}
	summary, err := e.EnrichDir(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d record(s) failed enrichment", summary.Failed)
	}
	return nil
}
