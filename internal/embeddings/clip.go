package embeddings

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

type clipServerProvider struct {
	model   string
	baseURL string
	client  *resty.Client

	// dim is learned from the first successful response; the index builder
	// calls Embed from many goroutines on one shared provider.
	dim atomic.Int32
}

// NewClipServer constructs a provider backed by a CLIP-style image-embedding
// server.
//
// It uses the REST endpoint:
//
//	POST {baseURL}/embeddings
//
// with JSON body:
//
//	{"model": "...", "image": "<base64>"}
func NewClipServer(cfg *Config) Provider {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(60 * time.Second)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &clipServerProvider{
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		client:  client,
	}
}

func (p *clipServerProvider) ModelID() string {
	return "clip-server:" + p.model
}

func (p *clipServerProvider) Dim() int {
	return int(p.dim.Load())
}

type embedRequest struct {
	Model string `json:"model"`
	Image string `json:"image"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

func (p *clipServerProvider) Embed(ctx context.Context, imagePath string) ([]float32, error) {
	if p.model == "" {
		return nil, fmt.Errorf("embeddings model is not configured (set CARDLENS_EMBEDDINGS_MODEL)")
	}

	img, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read image %s: %w", imagePath, err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("image %s is empty", imagePath)
	}

	var out embedResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(embedRequest{Model: p.model, Image: base64.StdEncoding.EncodeToString(img)}).
		SetResult(&out).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("embedding server error: HTTP %d: %s",
			resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("embedding response missing embedding")
	}

	p.dim.Store(int32(len(out.Embedding)))
	return out.Embedding, nil
}
