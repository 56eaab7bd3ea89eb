// Package generate turns a topic into SEO blog content by calling a
// generative-language API twice: keyword research, then the article.
//
// Provider hides the vendor SDK. Each implementation owns client setup,
// request format and model listing; callers only see prompt in, text out.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownProvider is returned for a provider name with no implementation.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrEmptyResponse is returned when a provider answers with no text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrMissingAPIKey is returned when a provider is created without a key.
	ErrMissingAPIKey = errors.New("missing api key")
)

// Provider is a generative-language API.
type Provider interface {
	// Name returns the canonical provider name.
	Name() string
	// Generate sends prompt to model and returns the reply text.
	Generate(ctx context.Context, model, prompt string) (string, error)
	// ListModels returns the models available to the configured key.
	ListModels(ctx context.Context) ([]string, error)
	// Close releases the underlying client.
	Close() error
}

// Supported provider names.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var providerAliases = map[string]string{
	"google": ProviderGemini,
	"gpt":    ProviderOpenAI,
	"claude": ProviderAnthropic,
}

var defaultModels = map[string]string{
	ProviderGemini:    "gemini-1.5-flash",
	ProviderOpenAI:    "gpt-4o",
	ProviderAnthropic: "claude-sonnet-4-20250514",
}

// NormalizeProvider maps aliases to canonical names. An empty name means Gemini.
func NormalizeProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ProviderGemini
	}
	if canonical, ok := providerAliases[name]; ok {
		return canonical
	}
	return name
}

// DefaultModel returns the default model for a provider, or "" if unknown.
func DefaultModel(provider string) string {
	return defaultModels[NormalizeProvider(provider)]
}

// SupportedProviders returns the canonical provider names.
func SupportedProviders() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic}
}

// NewProvider creates a provider by name.
func NewProvider(ctx context.Context, name, apiKey string) (Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	switch NormalizeProvider(name) {
	case ProviderGemini:
		return NewGeminiProvider(ctx, apiKey)
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}
