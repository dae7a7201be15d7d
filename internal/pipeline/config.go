package pipeline

import (
	"fmt"
	"os"
	"strconv"
)

// Config tunes retrieval and request validation for pipeline runs.
type Config struct {
	SearchLimit          int     `toml:"search_limit"`
	SearchAlpha          float64 `toml:"search_alpha"`
	RequireCorrelationID bool    `toml:"require_correlation_id"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	SearchLimit          string
	SearchAlpha          string
	RequireCorrelationID string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. The correlation policy
// applies only when the overlay enables it.
func (c *Config) Merge(overlay *Config) {
	if overlay.SearchLimit != 0 {
		c.SearchLimit = overlay.SearchLimit
	}
	if overlay.SearchAlpha != 0 {
		c.SearchAlpha = overlay.SearchAlpha
	}
	if overlay.RequireCorrelationID {
		c.RequireCorrelationID = true
	}
}

func (c *Config) loadDefaults() {
	if c.SearchLimit == 0 {
		c.SearchLimit = 3
	}
	if c.SearchAlpha == 0 {
		c.SearchAlpha = 0.5
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.SearchLimit != "" {
		if v := os.Getenv(env.SearchLimit); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.SearchLimit = n
			}
		}
	}
	if env.SearchAlpha != "" {
		if v := os.Getenv(env.SearchAlpha); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.SearchAlpha = f
			}
		}
	}
	if env.RequireCorrelationID != "" {
		if v := os.Getenv(env.RequireCorrelationID); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.RequireCorrelationID = b
			}
		}
	}
}

func (c *Config) validate() error {
	if c.SearchLimit < 1 {
		return fmt.Errorf("search_limit must be at least 1")
	}
	if c.SearchAlpha < 0 || c.SearchAlpha > 1 {
		return fmt.Errorf("search_alpha must be within [0, 1]")
	}
	return nil
}
