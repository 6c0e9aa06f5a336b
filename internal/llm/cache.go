// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// CachedGenerator stores successful replies as JSON files keyed by a digest
// of the model name, output budget and prompt, so re-running a batch does not pay for the
// same generation twice.
type CachedGenerator struct {
	Inner Generator
	Dir   string
}

// cacheEntry is the on-disk form of one cached reply.
type cacheEntry struct {
	Model    string    `json:"model"`
	Response string    `json:"response"`
	SavedAt  time.Time `json:"saved_at"`
}

// CacheKey builds the cache key for a request. A reply generated under a
// smaller token budget may be truncated, so the budget is part of the key.
func CacheKey(req Request) string {
	h := sha256.Sum256([]byte(req.Model + "\n" + strconv.Itoa(req.MaxTokens) + "\n\n" + req.Prompt))
	return hex.EncodeToString(h[:])
}

// Generate returns a cached reply when one exists, otherwise calls Inner and
// saves a successful result. Cache read and write failures are logged and
// never fail the request.
func (c *CachedGenerator) Generate(ctx context.Context, req Request) (string, error) {
	path := filepath.Join(c.Dir, CacheKey(req)+".json")

	if data, err := os.ReadFile(path); err == nil {
		var entry cacheEntry
		if err := json.Unmarshal(data, &entry); err == nil {
			log.Debug().Str("model", req.Model).Str("cache", path).Msg("model reply served from cache")
			return entry.Response, nil
		}
		log.Warn().Str("cache", path).Msg("ignoring unreadable cache entry")
	}

	text, err := c.Inner.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	if err := c.save(path, cacheEntry{Model: req.Model, Response: text, SavedAt: time.Now().UTC()}); err != nil {
		log.Warn().Err(err).Str("cache", path).Msg("could not cache model reply")
	}
	return text, nil
}

func (c *CachedGenerator) save(path string, entry cacheEntry) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	// Write to a temporary file and rename so concurrent workers never read
	// a partial entry.
	tmp, err := os.CreateTemp(c.Dir, ".entry-*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}
