package listennotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/keirastanley/kellaspace-backend/internal/domain"
)

const defaultBaseURL = "https://listen-api.listennotes.com/api/v2"

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

type Config struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// Result carries the Listen Notes fields the normalizer reads.
// Timestamps come back as epoch milliseconds.
type Result struct {
	ID                  string `json:"id"`
	TitleOriginal       string `json:"title_original"`
	DescriptionOriginal string `json:"description_original"`
	Image               string `json:"image"`
	EarliestPubDateMS   int64  `json:"earliest_pub_date_ms"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{
		"q": {strings.TrimSpace(query)},
	}
	reqURL := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-ListenAPI-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var failure errorResponse
		if json.Unmarshal(body, &failure) == nil && failure.Message != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, failure.Message)
		}
		return nil, fmt.Errorf("%w: listen notes HTTP %d", domain.ErrUpstream, resp.StatusCode)
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}
