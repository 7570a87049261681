package ai

import (
	"github.com/pkg/errors"

	"github.com/uwnexus/watsnew/internal/profile"
)

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider   string // openai, siliconflow
	Model      string // text-embedding-3-small
	Dimensions int    // 1536
	APIKey     string
	BaseURL    string
}

// NewEmbeddingConfigFromProfile creates embedding config from profile.
func NewEmbeddingConfigFromProfile(p *profile.Profile) *EmbeddingConfig {
	return &EmbeddingConfig{
		Provider:   p.EmbeddingProvider,
		Model:      p.EmbeddingModel,
		Dimensions: p.EmbeddingDim,
		APIKey:     p.EmbeddingAPIKey,
		BaseURL:    p.EmbeddingBaseURL,
	}
}

// Validate checks that the config can produce a working service.
func (c *EmbeddingConfig) Validate() error {
	if c.Model == "" {
		return errors.New("embedding model is required")
	}
	if c.Dimensions <= 0 {
		return errors.New("embedding dimensions must be positive")
	}
	switch c.Provider {
	case "openai", "siliconflow":
		if c.APIKey == "" {
			return errors.Errorf("provider %s requires an API key", c.Provider)
		}
	case "mock":
	default:
		return errors.Errorf("unsupported embedding provider: %s", c.Provider)
	}
	return nil
}
