package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ppiankov/medqa/internal/util"
)

// Provider defines the interface for generative model backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate sends one prompt and returns the raw completion text
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest is one completion request
type GenerateRequest struct {
	// System is the instruction block sent ahead of the prompt
	System string

	// Prompt is the user message
	Prompt string

	// JSON asks the backend for a JSON-only response where it supports it
	JSON bool

	// Temperature is passed through when non-zero
	Temperature float32

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the completion output
type GenerateResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "gemini", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "gemini",
		Model:     "gemini-2.5-flash",
		Timeout:   600,
		MaxTokens: 8192,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c Config) maxTokens(req GenerateRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 1024
}

func (c Config) model(req GenerateRequest, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}

func (c Config) httpClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(c.HTTPProxy, c.HTTPSProxy, c.NoProxy)
	return &http.Client{Timeout: c.timeout(), Transport: transport}
}

// QuotaError reports rate limiting or exhausted quota. RetryAfter is set
// when the backend says how long to wait.
type QuotaError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s quota exceeded: %v", e.Provider, e.Err)
}

func (e *QuotaError) Unwrap() error { return e.Err }

// RetryableError reports a transient failure (5xx, timeout, network)
type RetryableError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *RetryableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s transient error (%d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s transient error: %v", e.Provider, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// IsQuota reports whether err is or wraps a *QuotaError
func IsQuota(err error) bool {
	var q *QuotaError
	return errors.As(err, &q)
}

// IsRetryable reports whether err is or wraps a *RetryableError
func IsRetryable(err error) bool {
	var r *RetryableError
	return errors.As(err, &r)
}

// classifyStatus wraps a failed HTTP exchange into the typed errors above
func classifyStatus(provider string, code int, err error) error {
	switch {
	case code == http.StatusTooManyRequests:
		return &QuotaError{Provider: provider, Err: err}
	case code >= 500 || code == http.StatusRequestTimeout:
		return &RetryableError{Provider: provider, StatusCode: code, Err: err}
	default:
		return fmt.Errorf("%s API error (%d): %w", provider, code, err)
	}
}
