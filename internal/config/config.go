package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/medora/internal/pipeline"
	"github.com/JaimeStill/medora/pkg/database"
	"github.com/JaimeStill/medora/pkg/generation"
	"github.com/JaimeStill/medora/pkg/search"
	"github.com/JaimeStill/medora/pkg/storage"
	"github.com/JaimeStill/medora/pkg/worker"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvMedoraEnv             = "MEDORA_ENV"
	EnvMedoraShutdownTimeout = "MEDORA_SHUTDOWN_TIMEOUT"
	EnvMedoraVersion         = "MEDORA_VERSION"
	EnvMedoraLogLevel        = "MEDORA_LOG_LEVEL"
)

// DatabaseEnv names the environment variables for the database section.
var DatabaseEnv = &database.Env{
	Host:            "MEDORA_DB_HOST",
	Port:            "MEDORA_DB_PORT",
	Name:            "MEDORA_DB_NAME",
	User:            "MEDORA_DB_USER",
	Password:        "MEDORA_DB_PASSWORD",
	SSLMode:         "MEDORA_DB_SSL_MODE",
	MaxOpenConns:    "MEDORA_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "MEDORA_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "MEDORA_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "MEDORA_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Backend:               "MEDORA_STORAGE_BACKEND",
	Bucket:                "MEDORA_STORAGE_BUCKET",
	S3Endpoint:            "MEDORA_STORAGE_S3_ENDPOINT",
	S3Region:              "MEDORA_STORAGE_S3_REGION",
	S3AccessKey:           "MEDORA_STORAGE_S3_ACCESS_KEY",
	S3SecretKey:           "MEDORA_STORAGE_S3_SECRET_KEY",
	S3DisableSSL:          "MEDORA_STORAGE_S3_DISABLE_SSL",
	AzureConnectionString: "MEDORA_STORAGE_AZURE_CONNECTION_STRING",
	AzureAccountURL:       "MEDORA_STORAGE_AZURE_ACCOUNT_URL",
}

var searchEnv = &search.Env{
	BaseURL:   "MEDORA_SEARCH_BASE_URL",
	Timeout:   "MEDORA_SEARCH_TIMEOUT",
	CacheSize: "MEDORA_SEARCH_CACHE_SIZE",
}

var generationEnv = &generation.Env{
	Provider:   "MEDORA_GENERATION_PROVIDER",
	Model:      "MEDORA_GENERATION_MODEL",
	BaseURL:    "MEDORA_GENERATION_BASE_URL",
	APIKey:     "MEDORA_GENERATION_API_KEY",
	Timeout:    "MEDORA_GENERATION_TIMEOUT",
	Deployment: "MEDORA_GENERATION_DEPLOYMENT",
	APIVersion: "MEDORA_GENERATION_API_VERSION",
	AuthType:   "MEDORA_GENERATION_AUTH_TYPE",
}

var pipelineEnv = &pipeline.Env{
	SearchLimit:          "MEDORA_PIPELINE_SEARCH_LIMIT",
	SearchAlpha:          "MEDORA_PIPELINE_SEARCH_ALPHA",
	RequireCorrelationID: "MEDORA_PIPELINE_REQUIRE_CORRELATION_ID",
}

var workersEnv = &worker.Env{
	Workers:   "MEDORA_WORKERS",
	QueueSize: "MEDORA_WORKERS_QUEUE_SIZE",
}

// Config is the root configuration for the Medora service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	API             APIConfig         `toml:"api"`
	Search          search.Config     `toml:"search"`
	Generation      generation.Config `toml:"generation"`
	Pipeline        pipeline.Config   `toml:"pipeline"`
	Workers         worker.Config     `toml:"workers"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
	LogLevel        string            `toml:"log_level"`
}

// Env returns the MEDORA_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvMedoraEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns the configured slog level. Validation guarantees it parses.
func (c *Config) Level() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Search.Merge(&overlay.Search)
	c.Generation.Merge(&overlay.Generation)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Workers.Merge(&overlay.Workers)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(DatabaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Search.Finalize(searchEnv); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Generation.Finalize(generationEnv); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if err := c.Pipeline.Finalize(pipelineEnv); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Workers.Finalize(workersEnv); err != nil {
		return fmt.Errorf("workers: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvMedoraShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvMedoraVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvMedoraLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvMedoraEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
