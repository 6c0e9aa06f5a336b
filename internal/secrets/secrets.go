// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key and the trimmed file
// contents are the value.
//
// Recognized keys: openai-api-key, openalex-email.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/article-summarizer/pkg/types"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Key names.
const (
	KeyOpenAIAPIKey  = "openai-api-key"
	KeyOpenAlexEmail = "openalex-email"
)

// Store maps secret names to values.
type Store map[string]string

// Load reads all files in dir. A missing directory yields an empty Store.
// Dotfiles, subdirectories and empty files are ignored; an unreadable file
// is logged and skipped.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			store[name] = value
		}
	}
	return store, nil
}

// ApplyLLM fills cfg.APIKey from the store unless it is already set.
func (s Store) ApplyLLM(cfg *types.LLMConfig) {
	if cfg.APIKey == "" {
		cfg.APIKey = s[KeyOpenAIAPIKey]
	}
}

// ApplyEnrich fills cfg.Email from the store unless it is already set.
func (s Store) ApplyEnrich(cfg *types.EnrichConfig) {
	if cfg.Email == "" {
		cfg.Email = s[KeyOpenAlexEmail]
	}
}
