// Package config provides environment-based configuration loading and
// validation for the intake agent.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marcus/applicant-intake/internal/llm"
	"github.com/marcus/applicant-intake/internal/shortlist"
)

// Store backends.
const (
	BackendAirtable = "airtable"
	BackendPostgres = "postgres"
)

// Config holds everything the agent reads from the environment. Airtable
// credentials are required only for the airtable backend, DatabaseURL
// only for postgres; Validate enforces the pairing.
type Config struct {
	StoreBackend string `validate:"oneof=airtable postgres"`

	AirtableAPIKey string
	AirtableBaseID string

	DatabaseURL string

	LLMProvider     string `validate:"oneof=gemini openai anthropic"`
	LLMModel        string `validate:"required"`
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	MaxRetries int `validate:"min=1,max=10"`

	MinYears          float64  `validate:"min=0"`
	MaxHourlyRate     float64  `validate:"gt=0"`
	MinAvailability   float64  `validate:"min=0"`
	Tier1Companies    []string `validate:"min=1"`
	ApprovedLocations []string `validate:"min=1"`
}

// Load reads configuration from the environment, applying defaults for
// everything optional, and validates the result.
func Load() (*Config, error) {
	defaults := shortlist.DefaultCriteria()

	cfg := &Config{
		StoreBackend:      envOr("STORE_BACKEND", BackendAirtable),
		AirtableAPIKey:    os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID:    os.Getenv("AIRTABLE_BASE_ID"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		LLMProvider:       envOr("LLM_PROVIDER", string(llm.ProviderGemini)),
		LLMModel:          envOr("LLM_MODEL", llm.DefaultModel),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		Tier1Companies:    defaults.Tier1Companies,
		ApprovedLocations: defaults.ApprovedLocations,
		MinYears:          defaults.MinYears,
		MaxHourlyRate:     defaults.MaxHourlyRate,
		MinAvailability:   defaults.MinAvailability,
	}

	var err error
	if cfg.MaxRetries, err = envInt("MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.MinYears, err = envFloat("MIN_YEARS_EXPERIENCE", cfg.MinYears); err != nil {
		return nil, err
	}
	if cfg.MaxHourlyRate, err = envFloat("MAX_HOURLY_RATE", cfg.MaxHourlyRate); err != nil {
		return nil, err
	}
	if cfg.MinAvailability, err = envFloat("MIN_AVAILABILITY_HOURS", cfg.MinAvailability); err != nil {
		return nil, err
	}
	if list := envList("TIER_1_COMPANIES"); list != nil {
		cfg.Tier1Companies = list
	}
	if list := envList("APPROVED_LOCATIONS"); list != nil {
		cfg.ApprovedLocations = list
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints plus the backend/credential
// pairing rules that struct tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("config error: field %s failed %q validation", first.Field(), first.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	switch c.StoreBackend {
	case BackendAirtable:
		if c.AirtableAPIKey == "" {
			return fmt.Errorf("config error: AIRTABLE_API_KEY is required for the airtable backend")
		}
		if c.AirtableBaseID == "" {
			return fmt.Errorf("config error: AIRTABLE_BASE_ID is required for the airtable backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: DATABASE_URL is required for the postgres backend")
		}
	}

	switch llm.Provider(c.LLMProvider) {
	case llm.ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("config error: GEMINI_API_KEY is required for the gemini provider")
		}
	case llm.ProviderOpenAI, llm.ProviderAnthropic:
		// Reserved provider names; rejecting here keeps a validated
		// config constructible by llm.NewClient.
		return fmt.Errorf("config error: LLM provider %s is not implemented", c.LLMProvider)
	}

	return nil
}

// Criteria builds the shortlisting rule inputs from the loaded values.
func (c *Config) Criteria() shortlist.Criteria {
	return shortlist.Criteria{
		MinYears:          c.MinYears,
		Tier1Companies:    c.Tier1Companies,
		MaxHourlyRate:     c.MaxHourlyRate,
		MinAvailability:   c.MinAvailability,
		ApprovedLocations: c.ApprovedLocations,
	}
}

// LLMConfig builds the provider settings from the loaded values.
func (c *Config) LLMConfig() llm.Config {
	return llm.Config{
		Provider: llm.Provider(c.LLMProvider),
		Model:    c.LLMModel,
	}
}

// APIKeyForProvider returns the key matching the configured provider.
func (c *Config) APIKeyForProvider() string {
	switch llm.Provider(c.LLMProvider) {
	case llm.ProviderOpenAI:
		return c.OpenAIAPIKey
	case llm.ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config error: %s must be an integer, got %q", key, raw)
	}
	return v, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config error: %s must be a number, got %q", key, raw)
	}
	return v, nil
}

// envList parses a comma-separated environment value; nil means unset.
func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
