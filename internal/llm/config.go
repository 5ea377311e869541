// Package llm provides the provider-polymorphic client used for
// applicant enrichment. Provider and model are fixed at construction
// time; callers only see the single GenerateContent capability.
package llm

// Provider identifies an LLM provider.
type Provider string

// Supported providers. Only Gemini is implemented today; the others are
// reserved so configuration stays stable when they land.
const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Config selects the provider and model for a client.
type Config struct {
	Provider Provider
	Model    string
}

// DefaultConfig returns the default provider configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    DefaultModel,
	}
}
