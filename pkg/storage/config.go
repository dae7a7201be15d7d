package storage

import (
	"fmt"
	"os"
	"strconv"
)

const (
	BackendS3    = "s3"
	BackendAzure = "azure"
)

// Config selects an object storage backend and holds its connection parameters.
// Bucket names the S3 bucket or the Azure container.
type Config struct {
	Backend string      `toml:"backend"`
	Bucket  string      `toml:"bucket"`
	S3      S3Config    `toml:"s3"`
	Azure   AzureConfig `toml:"azure"`
}

// S3Config holds parameters for S3-compatible endpoints (AWS S3, MinIO).
type S3Config struct {
	Endpoint   string `toml:"endpoint"`
	Region     string `toml:"region"`
	AccessKey  string `toml:"access_key"`
	SecretKey  string `toml:"secret_key"`
	DisableSSL bool   `toml:"disable_ssl"`
}

// AzureConfig holds Azure Blob Storage parameters. When ConnectionString is empty,
// AccountURL is used with the default Azure credential chain.
type AzureConfig struct {
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend               string
	Bucket                string
	S3Endpoint            string
	S3Region              string
	S3AccessKey           string
	S3SecretKey           string
	S3DisableSSL          string
	AzureConnectionString string
	AzureAccountURL       string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Bucket != "" {
		c.Bucket = overlay.Bucket
	}
	if overlay.S3.Endpoint != "" {
		c.S3.Endpoint = overlay.S3.Endpoint
	}
	if overlay.S3.Region != "" {
		c.S3.Region = overlay.S3.Region
	}
	if overlay.S3.AccessKey != "" {
		c.S3.AccessKey = overlay.S3.AccessKey
	}
	if overlay.S3.SecretKey != "" {
		c.S3.SecretKey = overlay.S3.SecretKey
	}
	if overlay.S3.DisableSSL {
		c.S3.DisableSSL = true
	}
	if overlay.Azure.ConnectionString != "" {
		c.Azure.ConnectionString = overlay.Azure.ConnectionString
	}
	if overlay.Azure.AccountURL != "" {
		c.Azure.AccountURL = overlay.Azure.AccountURL
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendS3
	}
	if c.Bucket == "" {
		c.Bucket = "medora"
	}
	if c.S3.Endpoint == "" {
		c.S3.Endpoint = "s3.amazonaws.com"
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(dst *string, name string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	setString(&c.Backend, env.Backend)
	setString(&c.Bucket, env.Bucket)
	setString(&c.S3.Endpoint, env.S3Endpoint)
	setString(&c.S3.Region, env.S3Region)
	setString(&c.S3.AccessKey, env.S3AccessKey)
	setString(&c.S3.SecretKey, env.S3SecretKey)
	setString(&c.Azure.ConnectionString, env.AzureConnectionString)
	setString(&c.Azure.AccountURL, env.AzureAccountURL)

	if env.S3DisableSSL != "" {
		if v := os.Getenv(env.S3DisableSSL); v != "" {
			if disabled, err := strconv.ParseBool(v); err == nil {
				c.S3.DisableSSL = disabled
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket required")
	}

	switch c.Backend {
	case BackendS3:
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			return fmt.Errorf("s3 access_key and secret_key required")
		}
	case BackendAzure:
		if c.Azure.ConnectionString == "" && c.Azure.AccountURL == "" {
			return fmt.Errorf("azure connection_string or account_url required")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %q", c.Backend)
	}

	return nil
}
