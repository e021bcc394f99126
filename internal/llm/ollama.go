package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/ollama/ollama/api"
)

// DefaultOllamaURL is the local Ollama server address
const DefaultOllamaURL = "http://localhost:11434"

// OllamaProvider implements the Provider interface for Ollama local models
type OllamaProvider struct {
	client  *api.Client
	baseURL string
	config  Config
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}

	return &OllamaProvider{
		client:  api.NewClient(base, config.httpClient()),
		baseURL: baseURL,
		config:  config,
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks if the Ollama server answers
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	if err := p.client.Heartbeat(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Ollama availability check failed (connection to %s): %v\n", p.baseURL, err)
		return false
	}
	return true
}

// Generate runs one non-streaming generation
func (p *OllamaProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := p.config.model(req, "")
	if model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., qwen2.5:32b, llama3.1:8b)")
	}

	stream := false
	options := map[string]interface{}{
		"num_predict": p.config.maxTokens(req),
	}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}

	apiReq := api.GenerateRequest{
		Model:   model,
		Prompt:  req.Prompt,
		System:  req.System,
		Stream:  &stream,
		Options: options,
	}
	if req.JSON {
		apiReq.Format = json.RawMessage(`"json"`)
	}

	var (
		text strings.Builder
		last api.GenerateResponse
	)
	err := p.client.Generate(ctx, &apiReq, func(resp api.GenerateResponse) error {
		last = resp
		_, err := text.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return nil, p.classify(err)
	}

	return &GenerateResponse{
		Text:       strings.TrimSpace(text.String()),
		Model:      last.Model,
		TokensUsed: last.PromptEvalCount + last.EvalCount,
	}, nil
}

func (p *OllamaProvider) classify(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(p.Name(), statusErr.StatusCode, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &RetryableError{Provider: p.Name(), Err: err}
	}
	return fmt.Errorf("ollama API error: %w", err)
}
