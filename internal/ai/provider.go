package ai

import (
	"context"
	"strings"
)

// FallbackText is returned in place of the model reply when a provider
// answers 2xx but the expected field path is missing from the body.
const FallbackText = "生成失败"

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// ParseProvider maps a raw request value onto the closed provider set.
func ParseProvider(raw string) (Provider, bool) {
	switch Provider(strings.TrimSpace(strings.ToLower(raw))) {
	case ProviderOpenAI:
		return ProviderOpenAI, true
	case ProviderGemini:
		return ProviderGemini, true
	default:
		return "", false
	}
}

// Client is one upstream LLM provider. Generate relays a single user prompt
// and returns the first completion's text, or FallbackText on a shape
// mismatch in a successful upstream body.
type Client interface {
	Provider() Provider
	Model() string
	Generate(ctx context.Context, prompt string) (string, error)
}
