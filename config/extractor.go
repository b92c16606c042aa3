package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kilianp07/wheelsched/core/extract"
)

// ExtractorConfig controls the model-backed extraction strategy. The pattern
// extractor is always available.
type ExtractorConfig struct {
	Enabled bool `json:"enabled"`
	// APIKey takes precedence over the variable named by APIKeyEnv.
	APIKey              string `json:"api_key"`
	APIKeyEnv           string `json:"api_key_env"`
	Model               string `json:"model"`
	TimeoutMS           int    `json:"timeout_ms"`
	BreakerThreshold    int    `json:"breaker_threshold"`
	BreakerResetSeconds int    `json:"breaker_reset_seconds"`
}

func (c *ExtractorConfig) SetDefaults() {
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "GEMINI_API_KEY"
	}
	if c.Model == "" {
		c.Model = extract.DefaultModel
	}
	if c.TimeoutMS == 0 {
		c.TimeoutMS = int(extract.DefaultTimeout / time.Millisecond)
	}
	if c.BreakerThreshold == 0 {
		c.BreakerThreshold = 3
	}
	if c.BreakerResetSeconds == 0 {
		c.BreakerResetSeconds = 60
	}
}

func (c ExtractorConfig) Validate() error {
	if c.TimeoutMS < 0 {
		return fmt.Errorf("timeout_ms must be positive")
	}
	if c.BreakerThreshold < 0 || c.BreakerResetSeconds < 0 {
		return fmt.Errorf("breaker settings must be positive")
	}
	return nil
}

// Key returns the configured API key, reading the environment when the
// file leaves it empty.
func (c ExtractorConfig) Key() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

func (c ExtractorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// ModelConfig maps the section onto the extractor settings for zone.
func (c ExtractorConfig) ModelConfig(zone string) extract.ModelConfig {
	return extract.ModelConfig{
		APIKey:           c.Key(),
		Model:            c.Model,
		Zone:             zone,
		BreakerThreshold: c.BreakerThreshold,
		BreakerReset:     time.Duration(c.BreakerResetSeconds) * time.Second,
	}
}
