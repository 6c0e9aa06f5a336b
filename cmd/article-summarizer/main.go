// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the article-summarizer CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/article-summarizer/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// defaultUserAgent identifies the CLI to remote services.
var defaultUserAgent = "article-summarizer/" + version

// envKeyReplacer maps "summarize.max-tokens" to ARTICLE_SUMMARIZER_SUMMARIZE_MAX_TOKENS.
var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command for the article-summarizer CLI.
var rootCmd = &cobra.Command{
	Use:   "article-summarizer",
	Short: "Summarize academic PDFs into structured JSON records",
	Long: `article-summarizer turns a directory of academic PDFs into structured
JSON summaries using a local or OpenAI-compatible language model, and can
enrich those summaries with bibliographic metadata from OpenAlex.

Each stage is a subcommand: summarize writes <name>.json next to every PDF,
enrich writes <name>_enriched.json next to every summary, and inspect prints
a record.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(viper.GetBool("verbose"))

		dir := viper.GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.Debug().Strs("keys", keys).Str("dir", dir).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./article-summarizer.yaml or ~/.config/article-summarizer/article-summarizer.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of secret files (openai-api-key, openalex-email)")

	bindFlags("", rootCmd.PersistentFlags())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("article-summarizer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "article-summarizer"))
		}
	}

	viper.SetEnvPrefix("ARTICLE_SUMMARIZER")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	}
}

// setupLogging points the global logger at a console writer on stderr.
func setupLogging(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// bindFlags exposes every flag in fs to viper under prefix.name so values
// can also come from the config file or the environment.
func bindFlags(prefix string, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		key := f.Name
		if prefix != "" {
			key = prefix + "." + f.Name
		}
		_ = viper.BindPFlag(key, f)
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	setupLogging(false)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
