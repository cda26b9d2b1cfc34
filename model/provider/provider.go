// Package provider wires run configuration to concrete model adapters. It is
// the single place that knows which credentials each provider needs and how
// OpenAI-compatible local endpoints are reached.
package provider

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/agora/core"
	"github.com/hupe1980/agora/model"
	anthropicmodel "github.com/hupe1980/agora/model/anthropic"
	openaimodel "github.com/hupe1980/agora/model/openai"
)

// DefaultOllamaBaseURL is the OpenAI-compatible endpoint of a local Ollama server.
const DefaultOllamaBaseURL = "http://localhost:11434/v1"

// Credentials holds the provider secrets and endpoints available to the server.
type Credentials struct {
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaBaseURL   string
}

// Factory builds provider-backed models from run configuration.
type Factory struct {
	creds Credentials
}

// NewFactory returns a Factory using the given credentials.
func NewFactory(creds Credentials) *Factory {
	if creds.OllamaBaseURL == "" {
		creds.OllamaBaseURL = DefaultOllamaBaseURL
	}
	return &Factory{creds: creds}
}

// Build implements model.Factory. Configuration mistakes come back as
// core.SafeError so their messages can be shown to end users.
func (f *Factory) Build(spec model.ProviderSpec) (model.Model, error) {
	switch spec.Provider {
	case "openai":
		if f.creds.OpenAIAPIKey == "" {
			return nil, core.NewSafeError("OpenAI API key is not configured on the server.")
		}
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			o.Model = spec.Model
			o.APIKey = f.creds.OpenAIAPIKey
		}), nil
	case "anthropic":
		if f.creds.AnthropicAPIKey == "" {
			return nil, core.NewSafeError("Anthropic API key is not configured on the server.")
		}
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Model = anthropic.Model(spec.Model)
			o.APIKey = f.creds.AnthropicAPIKey
		}), nil
	case "ollama":
		// Ollama speaks the OpenAI wire format; no API key required.
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			o.Model = spec.Model
			o.Provider = "ollama"
			o.APIKey = "ollama"
			o.BaseURL = f.creds.OllamaBaseURL
		}), nil
	default:
		return nil, core.NewSafeError(fmt.Sprintf("Unsupported provider: %s", spec.Provider))
	}
}
