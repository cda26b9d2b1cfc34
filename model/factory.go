package model

// ProviderSpec identifies the provider and model id a participant runs on.
type ProviderSpec struct {
	Provider string `json:"provider"` // "openai", "anthropic", "ollama"
	Model    string `json:"model"`
}

// Factory builds a concrete Model from a provider spec. Implementations
// return a core.SafeError for configuration mistakes (missing API key,
// unknown provider) so the message can be shown to end users verbatim.
type Factory interface {
	Build(spec ProviderSpec) (Model, error)
}

// FactoryFunc adapts an ordinary function to the Factory interface.
type FactoryFunc func(spec ProviderSpec) (Model, error)

// Build implements Factory.
func (f FactoryFunc) Build(spec ProviderSpec) (Model, error) { return f(spec) }
