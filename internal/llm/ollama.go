// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/article-summarizer/pkg/types"
)

const (
	// DefaultOllamaURL is the local Ollama server root.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultNumCtx is the context window requested from Ollama.
	DefaultNumCtx = 12288
)

// OllamaClient calls the Ollama /api/generate endpoint with deterministic
// decoding (temperature 0) and streaming disabled.
type OllamaClient struct {
	BaseURL   string
	NumCtx    int
	UserAgent string
	Client    *http.Client
}

// NewOllamaClient builds a client from cfg, filling in defaults.
func NewOllamaClient(cfg types.LLMConfig) *OllamaClient {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultOllamaURL
	}
	numCtx := cfg.NumCtx
	if numCtx <= 0 {
		numCtx = DefaultNumCtx
	}
	return &OllamaClient{
		BaseURL:   strings.TrimRight(base, "/"),
		NumCtx:    numCtx,
		UserAgent: cfg.UserAgent,
		Client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// ollamaRequest is the request body for /api/generate.
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

// ollamaOptions carries the decoding parameters. Temperature has no
// omitempty so 0.0 is sent explicitly.
type ollamaOptions struct {
	NumCtx      int     `json:"num_ctx"`
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

// ollamaResponse is the non-streaming response body.
type ollamaResponse struct {
	Response string `json:"response"`
}

// Generate sends one request and returns the trimmed response text.
func (c *OllamaClient) Generate(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	body, err := json.Marshal(ollamaRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: false,
		Options: ollamaOptions{
			NumCtx:      c.NumCtx,
			NumPredict:  maxTokens,
			Temperature: 0.0,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding Ollama response: %w", err)
	}
	return strings.TrimSpace(out.Response), nil
}
