package tcgio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the public card-database API endpoint.
const DefaultBaseURL = "https://api.pokemontcg.io"

// Card is the subset of the card-database API response we consume.
type Card struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
	HP     string `json:"hp"`
	Set    struct {
		ID string `json:"id"`
	} `json:"set"`
	Images struct {
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"images"`
}

// Client talks to a pokemontcg.io-style card database.
type Client struct {
	http *resty.Client
}

// NewClient returns a client with retry and backoff tuned for the public API
// (429 and 5xx are retried).
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30 * time.Second).
		SetRetryCount(4).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(8 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == 429 || r.StatusCode() >= 500
		})
	if apiKey != "" {
		c.SetHeader("X-Api-Key", apiKey)
	}
	return &Client{http: c}
}

type cardsResponse struct {
	Data []Card `json:"data"`
}

// Cards fetches one page of catalog rows for query.
func (c *Client) Cards(ctx context.Context, query string, page, pageSize int) ([]Card, error) {
	var out cardsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        query,
			"page":     strconv.Itoa(page),
			"pageSize": strconv.Itoa(pageSize),
		}).
		SetResult(&out).
		Get("/v2/cards")
	if err != nil {
		return nil, fmt.Errorf("card query failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("card query failed: HTTP %d: %s",
			resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return out.Data, nil
}

// download streams url into dest via a temp file so an aborted transfer never
// leaves a truncated image behind.
func (c *Client) download(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("cannot create image dir: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return fmt.Errorf("image download failed: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.IsError() {
		return fmt.Errorf("image download failed: HTTP %d", resp.StatusCode())
	}

	f, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("image download failed: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}
