// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm sends extraction prompts to a language model server. A
// Generator performs one request; Query wraps it in the fixed retry policy
// and reports the outcome as a Reply instead of an error so one unreachable
// server never aborts a batch.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/article-summarizer/pkg/types"
)

const (
	// DefaultRetries is the number of attempts Query makes when none is given.
	DefaultRetries = 3

	// DefaultMaxTokens is the output budget used when none is configured.
	DefaultMaxTokens = 32768

	// DefaultModel is the model used when none is configured.
	DefaultModel = "qwen3:8b"

	// ErrorPrefix starts the rendered form of a failed Reply.
	ErrorPrefix = "[ERROR]"
)

// RetryDelay is the fixed wait between attempts. Tests override this to
// avoid real sleeps.
var RetryDelay = time.Second

// ErrRetriesExhausted is wrapped by every failed Reply.
var ErrRetriesExhausted = errors.New("model request failed after all attempts")

// Request is one generation call.
type Request struct {
	Prompt    string
	Model     string
	MaxTokens int
}

// Generator performs a single, non-streaming generation request and returns
// the model text. Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// StatusError reports a non-2xx response from a model server.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("model server returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("model server returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Reply is the outcome of Query: model text on success, or the failure that
// ended the last attempt.
type Reply struct {
	Text     string
	Err      error
	Attempts int
}

// OK reports whether the request succeeded. Success is decided by Err alone,
// never by inspecting Text.
func (r Reply) OK() bool { return r.Err == nil }

// String returns the model text, or "[ERROR] <message>" for a failed reply.
func (r Reply) String() string {
	if r.Err != nil {
		return ErrorPrefix + " " + r.Err.Error()
	}
	return r.Text
}

// Query sends req through gen, making up to retries attempts in total with a
// fixed RetryDelay between them. It never returns an error value: the
// outcome, success or failure, is carried by the Reply. A cancelled context
// ends the wait early and fails the reply with the context error.
func Query(ctx context.Context, gen Generator, req Request, retries int) Reply {
	if retries <= 0 {
		retries = DefaultRetries
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return Reply{Err: fmt.Errorf("%w: %w", ErrRetriesExhausted, ctx.Err()), Attempts: attempt - 1}
			case <-time.After(RetryDelay):
			}
		}

		text, err := gen.Generate(ctx, req)
		if err == nil {
			return Reply{Text: text, Attempts: attempt}
		}
		lastErr = err
		log.Debug().Err(err).Str("model", req.Model).Int("attempt", attempt).Int("of", retries).Msg("model request failed")
	}
	return Reply{
		Err:      fmt.Errorf("%w (%d attempts): %w", ErrRetriesExhausted, retries, lastErr),
		Attempts: retries,
	}
}

// New builds the Generator described by cfg, wrapped in a reply cache when
// cfg.CacheDir is set.
func New(cfg types.LLMConfig) (Generator, error) {
	var gen Generator
	switch cfg.Backend {
	case "", types.BackendOllama:
		gen = NewOllamaClient(cfg)
	case types.BackendOpenAI:
		gen = NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unknown llm backend %q (want %s or %s)", cfg.Backend, types.BackendOllama, types.BackendOpenAI)
	}
	if cfg.CacheDir != "" {
		gen = &CachedGenerator{Inner: gen, Dir: cfg.CacheDir}
	}
	return gen, nil
}
