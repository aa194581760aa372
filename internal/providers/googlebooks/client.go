package googlebooks

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

const defaultBaseURL = "https://www.googleapis.com/books/v1"

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

type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
}

type VolumeInfo struct {
	Title         string      `json:"title"`
	Authors       []string    `json:"authors,omitempty"`
	Description   string      `json:"description,omitempty"`
	PublishedDate string      `json:"publishedDate,omitempty"`
	ImageLinks    *ImageLinks `json:"imageLinks,omitempty"`
}

type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

type volumesResponse struct {
	Items []Volume `json:"items"`
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

func (c *Client) Search(ctx context.Context, query string) ([]Volume, error) {
	params := url.Values{
		"q":   {strings.TrimSpace(query)},
		"key": {c.apiKey},
	}
	reqURL := c.baseURL + "/volumes?" + params.Encode()

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

	var response volumesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: google books HTTP %d", domain.ErrUpstream, resp.StatusCode)
		}
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: google books HTTP %d", domain.ErrUpstream, resp.StatusCode)
	}
	return response.Items, nil
}
