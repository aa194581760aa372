package youtube

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

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

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

type Thumbnail struct {
	URL string `json:"url"`
}

type Thumbnails struct {
	Default Thumbnail `json:"default"`
	Medium  Thumbnail `json:"medium"`
	High    Thumbnail `json:"high"`
}

type Snippet struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Thumbnails  Thumbnails `json:"thumbnails"`
}

type Video struct {
	ID      string  `json:"id"`
	Snippet Snippet `json:"snippet"`
}

type listResponse struct {
	Items []Video `json:"items"`
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
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Videos fetches snippet metadata for one or more video IDs
// (comma-separated, as the Data API accepts them).
func (c *Client) Videos(ctx context.Context, videoID string) ([]Video, error) {
	params := url.Values{
		"part": {"snippet"},
		"id":   {strings.TrimSpace(videoID)},
		"key":  {c.apiKey},
	}
	reqURL := c.baseURL + "/videos?" + params.Encode()

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

	var response listResponse
	if err := json.Unmarshal(body, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: youtube HTTP %d", domain.ErrUpstream, resp.StatusCode)
		}
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: youtube HTTP %d", domain.ErrUpstream, resp.StatusCode)
	}
	return response.Items, nil
}
