package embeddings

import (
	"context"
	"fmt"

	"github.com/cardlens/cardlens/internal/config"
)

// Provider embeds a card image into a fixed-length float vector.
//
// Implementations must be deterministic for the same image and model version.
// Returned vectors are not guaranteed to be normalized; the index builder and
// the query engine normalize.
type Provider interface {
	ModelID() string
	Dim() int
	Embed(ctx context.Context, imagePath string) ([]float32, error)
}

// Config contains the resolved embeddings configuration.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// LoadConfig resolves embeddings config from environment variables first, then
// ~/.cardlens/.env.
func LoadConfig() (*Config, error) {
	provider, err := config.GetConfigValue("CARDLENS_EMBEDDINGS_PROVIDER")
	if err != nil {
		return nil, err
	}
	model, err := config.GetConfigValue("CARDLENS_EMBEDDINGS_MODEL")
	if err != nil {
		return nil, err
	}
	baseURL, err := config.GetConfigValue("CARDLENS_EMBEDDINGS_BASE_URL")
	if err != nil {
		return nil, err
	}
	apiKey, err := config.GetConfigValue("CARDLENS_EMBEDDINGS_API_KEY")
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	return &Config{
		Provider: provider,
		Model:    model,
		BaseURL:  baseURL,
		APIKey:   apiKey,
	}, nil
}

// NewFromConfig returns an embeddings provider.
func NewFromConfig(cfg *Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embeddings config is nil")
	}
	if cfg.Provider == "" {
		return nil, fmt.Errorf("embeddings provider is not configured (set CARDLENS_EMBEDDINGS_PROVIDER)")
	}
	switch cfg.Provider {
	case "clip-server":
		return NewClipServer(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported embeddings provider: %s", cfg.Provider)
	}
}
