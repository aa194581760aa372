package deezer

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

const defaultBaseURL = "https://api.deezer.com"

// Client talks to the public Deezer search API. Deezer needs no API key
// for track search, so the client is always enabled.
type Client struct {
	baseURL string
	http    *http.Client
}

type Config struct {
	BaseURL string
	Client  *http.Client
}

type Album struct {
	Title    string `json:"title,omitempty"`
	Cover    string `json:"cover,omitempty"`
	CoverBig string `json:"cover_big,omitempty"`
}

type Artist struct {
	Name string `json:"name,omitempty"`
}

type Track struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
	Album  Album  `json:"album"`
	Artist Artist `json:"artist"`
}

type searchResponse struct {
	Data  []Track `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
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
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) Search(ctx context.Context, query string) ([]Track, error) {
	params := url.Values{
		"q": {strings.TrimSpace(query)},
	}
	reqURL := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, err
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: deezer HTTP %d", domain.ErrUpstream, resp.StatusCode)
		}
		return nil, err
	}
	// Deezer signals failures with HTTP 200 and an error object.
	if response.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: deezer HTTP %d", domain.ErrUpstream, resp.StatusCode)
	}
	return response.Data, nil
}
