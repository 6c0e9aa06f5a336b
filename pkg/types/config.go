// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no client timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LLMBackend identifies the generation API a model is served behind.
type LLMBackend string

const (
	// BackendOllama speaks the Ollama /api/generate protocol.
	BackendOllama LLMBackend = "ollama"
	// BackendOpenAI speaks the OpenAI-compatible chat completions protocol.
	BackendOpenAI LLMBackend = "openai"
)

// PDFBackend identifies the tool used to pull text out of PDFs.
type PDFBackend string

const (
	// PDFNative reads PDFs in-process.
	PDFNative PDFBackend = "native"
	// PDFPoppler shells out to poppler's pdftotext.
	PDFPoppler PDFBackend = "pdftotext"
)

// LLMConfig holds settings for calling the language model.
type LLMConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the generation protocol (default ollama).
	Backend LLMBackend `json:"backend" yaml:"backend"`

	// BaseURL is the server root, e.g. "http://localhost:11434".
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the model identifier (e.g. "qwen3:8b").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against OpenAI-compatible servers. Unused by Ollama.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens is the output token budget per request (default 32768).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// NumCtx is the context window requested from Ollama (default 12288).
	NumCtx int `json:"num_ctx" yaml:"num_ctx"`

	// Retries is the total number of attempts per request (default 3).
	Retries int `json:"retries" yaml:"retries"`

	// CacheDir enables the reply cache when non-empty.
	CacheDir string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
}

// SummarizeConfig holds settings for the summarize stage.
type SummarizeConfig struct {
	LLMConfig `yaml:",inline"`

	// Dir is the directory scanned (non-recursively) for PDFs.
	Dir string `json:"dir" yaml:"dir"`

	// PDFBackend selects the text extractor (default native).
	PDFBackend PDFBackend `json:"pdf_backend" yaml:"pdf_backend"`

	// Workers bounds how many documents are processed at once (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// Force re-summarizes PDFs whose JSON output is already up to date.
	Force bool `json:"force" yaml:"force"`
}

// EnrichConfig holds settings for the enrich stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// Dir is the directory scanned (non-recursively) for summary JSON files.
	Dir string `json:"dir" yaml:"dir"`

	// Email is sent as the OpenAlex mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// MaxRetries bounds retries on HTTP 429 from OpenAlex (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Force re-enriches records whose enriched output is already up to date.
	Force bool `json:"force" yaml:"force"`
}
