package generation

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderGemini = "gemini"
)

// go-agents registers its OpenAI-compatible provider under this name.
const agentsCompatibleProvider = "ollama"

// Config selects a text-generation provider and model.
// For openai, BaseURL may point at any OpenAI-compatible chat completions API.
// For azure, Model defaults to the deployment name. For gemini, BaseURL
// overrides the API endpoint.
type Config struct {
	Provider   string `toml:"provider"`
	Model      string `toml:"model"`
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	Timeout    string `toml:"timeout"`
	Deployment string `toml:"deployment"`
	APIVersion string `toml:"api_version"`
	AuthType   string `toml:"auth_type"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	Timeout    string
	Deployment string
	APIVersion string
	AuthType   string
}

// TimeoutDuration parses Timeout into a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies environment variable overrides, defaults, and validation.
// Env is applied first so the provider choice drives the model and URL defaults.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for _, f := range []struct{ dst, src *string }{
		{&c.Provider, &overlay.Provider},
		{&c.Model, &overlay.Model},
		{&c.BaseURL, &overlay.BaseURL},
		{&c.APIKey, &overlay.APIKey},
		{&c.Timeout, &overlay.Timeout},
		{&c.Deployment, &overlay.Deployment},
		{&c.APIVersion, &overlay.APIVersion},
		{&c.AuthType, &overlay.AuthType},
	} {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
}

// Agent builds the go-agents configuration for the openai and azure providers,
// starting from the library defaults. Retries are disabled: a failed call fails the run.
func (c *Config) Agent() *gaconfig.AgentConfig {
	provider := &gaconfig.ProviderConfig{
		BaseURL: c.BaseURL,
		Options: make(map[string]any),
	}

	switch c.Provider {
	case ProviderAzure:
		provider.Name = ProviderAzure
		provider.Options["deployment"] = c.Deployment
		provider.Options["api_version"] = c.APIVersion
		provider.Options["auth_type"] = c.AuthType
		provider.Options["token"] = c.APIKey
	default:
		provider.Name = agentsCompatibleProvider
		if c.APIKey != "" {
			provider.Options["auth_type"] = "bearer"
			provider.Options["token"] = c.APIKey
		}
	}

	cfg := gaconfig.DefaultAgentConfig()
	cfg.Merge(&gaconfig.AgentConfig{
		Name:     "medora-letters",
		Provider: provider,
		Model:    &gaconfig.ModelConfig{Name: c.Model},
	})
	if d := c.TimeoutDuration(); d > 0 {
		cfg.Client.Timeout = gaconfig.Duration(d)
	}
	cfg.Client.Retry.MaxRetries = 0

	return &cfg
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}

	switch c.Provider {
	case ProviderOpenAI:
		if c.Model == "" {
			c.Model = "gpt-4o-mini"
		}
		if c.BaseURL == "" {
			c.BaseURL = "https://api.openai.com/v1"
		}
	case ProviderAzure:
		if c.Model == "" {
			c.Model = c.Deployment
		}
		if c.APIVersion == "" {
			c.APIVersion = "2024-10-21"
		}
		if c.AuthType == "" {
			c.AuthType = "api_key"
		}
	case ProviderGemini:
		if c.Model == "" {
			c.Model = "gemini-2.5-flash"
		}
	}
}

func (c *Config) loadEnv(env *Env) {
	for _, f := range []struct {
		dst *string
		key string
	}{
		{&c.Provider, env.Provider},
		{&c.Model, env.Model},
		{&c.BaseURL, env.BaseURL},
		{&c.APIKey, env.APIKey},
		{&c.Timeout, env.Timeout},
		{&c.Deployment, env.Deployment},
		{&c.APIVersion, env.APIVersion},
		{&c.AuthType, env.AuthType},
	} {
		if f.key == "" {
			continue
		}
		if v := os.Getenv(f.key); v != "" {
			*f.dst = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderOpenAI:
	case ProviderAzure:
		if c.BaseURL == "" {
			return fmt.Errorf("base_url required for azure provider")
		}
		if c.Deployment == "" {
			return fmt.Errorf("deployment required for azure provider")
		}
		if c.APIKey == "" {
			return fmt.Errorf("api_key required for azure provider")
		}
		if c.AuthType != "api_key" && c.AuthType != "bearer" {
			return fmt.Errorf("invalid auth_type: %q", c.AuthType)
		}
	case ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("api_key required for gemini provider")
		}
	default:
		return fmt.Errorf("unsupported generation provider: %q", c.Provider)
	}

	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
