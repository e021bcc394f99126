package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/medqa/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "gemini", "google":
		return NewGeminiProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, fmt.Errorf("no LLM provider configured (supported: openai, gemini, anthropic, ollama)")

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, gemini, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config, carrying the
// fetcher's proxy settings
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:   llmConfig.Provider,
		Model:      llmConfig.Model,
		APIKey:     llmConfig.APIKey,
		BaseURL:    llmConfig.BaseURL,
		Timeout:    llmConfig.Timeout,
		MaxTokens:  llmConfig.MaxTokens,
		HTTPProxy:  httpConfig.HTTPProxy,
		HTTPSProxy: httpConfig.HTTPSProxy,
		NoProxy:    httpConfig.NoProxy,
	}
}

// ApplyEnv fills the API key and base URL from the provider's conventional
// environment variables when the config leaves them empty
func ApplyEnv(config Config) Config {
	return applyEnv(config, os.Getenv)
}

func applyEnv(config Config, getenv func(string) string) Config {
	keyVar := map[string]string{
		"openai":    "OPENAI_API_KEY",
		"gemini":    "GEMINI_API_KEY",
		"google":    "GEMINI_API_KEY",
		"anthropic": "ANTHROPIC_API_KEY",
		"claude":    "ANTHROPIC_API_KEY",
	}
	provider := strings.ToLower(config.Provider)
	if config.APIKey == "" {
		if v, ok := keyVar[provider]; ok {
			config.APIKey = getenv(v)
		}
	}
	if config.BaseURL == "" && provider == "ollama" {
		config.BaseURL = getenv("OLLAMA_BASE_URL")
	}
	return config
}
