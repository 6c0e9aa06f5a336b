// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/article-summarizer/pkg/types"
)

// ChatCompleter is the part of *openai.Client that OpenAIClient uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient calls an OpenAI-compatible chat completions endpoint, such as
// llama.cpp, vLLM or Ollama's /v1 API.
type OpenAIClient struct {
	Inner ChatCompleter
}

// NewOpenAIClient builds a client from cfg. An empty BaseURL targets
// Ollama's OpenAI-compatible API on localhost.
func NewOpenAIClient(cfg types.LLMConfig) *OpenAIClient {
	conf := openai.DefaultConfig(cfg.APIKey)
	base := cfg.BaseURL
	if base == "" {
		base = DefaultOllamaURL + "/v1"
	}
	conf.BaseURL = strings.TrimRight(base, "/")
	conf.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &OpenAIClient{Inner: openai.NewClientWithConfig(conf)}
}

// Generate sends the prompt as a single user message and returns the first
// choice's content, trimmed.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	resp, err := c.Inner.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens: maxTokens,
		// go-openai drops a zero temperature from the request body, which
		// leaves the server default in place; the smallest float keeps
		// decoding greedy.
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
			return "", &StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		return "", fmt.Errorf("calling chat completions: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completions returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
