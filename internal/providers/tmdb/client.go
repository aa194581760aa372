package tmdb

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

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	defaultLang    = "en-US"
)

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

// Result is the raw TMDB search record, shared by the movie and tv endpoints
// (movies carry title/release_date, shows carry name/first_air_date).
type Result struct {
	ID           int    `json:"id"`
	Title        string `json:"title,omitempty"`
	Name         string `json:"name,omitempty"`
	Overview     string `json:"overview,omitempty"`
	PosterPath   string `json:"poster_path,omitempty"`
	ReleaseDate  string `json:"release_date,omitempty"`
	FirstAirDate string `json:"first_air_date,omitempty"`
	GenreIDs     []int  `json:"genre_ids,omitempty"`
}

type searchEnvelope struct {
	Success       *bool           `json:"success,omitempty"`
	StatusMessage string          `json:"status_message,omitempty"`
	Results       json.RawMessage `json:"results"`
}

type genresEnvelope struct {
	Success       *bool           `json:"success,omitempty"`
	StatusMessage string          `json:"status_message,omitempty"`
	Genres        json.RawMessage `json:"genres"`
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

func (c *Client) SearchMovies(ctx context.Context, query string) ([]Result, error) {
	raw, err := c.SearchMoviesRaw(ctx, query)
	if err != nil {
		return nil, err
	}
	return decodeResults(raw)
}

func (c *Client) SearchTV(ctx context.Context, query string) ([]Result, error) {
	raw, err := c.SearchTVRaw(ctx, query)
	if err != nil {
		return nil, err
	}
	return decodeResults(raw)
}

// SearchMoviesRaw returns the provider's results array untouched, for the
// passthrough routes.
func (c *Client) SearchMoviesRaw(ctx context.Context, query string) (json.RawMessage, error) {
	return c.searchRaw(ctx, "movie", query)
}

func (c *Client) SearchTVRaw(ctx context.Context, query string) (json.RawMessage, error) {
	return c.searchRaw(ctx, "tv", query)
}

func (c *Client) searchRaw(ctx context.Context, mediaType, query string) (json.RawMessage, error) {
	params := url.Values{
		"query":         {strings.TrimSpace(query)},
		"include_adult": {"false"},
		"language":      {defaultLang},
		"page":          {"1"},
		"sort_by":       {"popularity.desc"},
		"api_key":       {c.apiKey},
	}
	reqURL := c.baseURL + "/search/" + mediaType + "?" + params.Encode()

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var envelope searchEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if err := upstreamError(envelope.Success, envelope.StatusMessage); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

func (c *Client) Genres(ctx context.Context) ([]domain.Genre, error) {
	raw, err := c.GenresRaw(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var genres []domain.Genre
	if err := json.Unmarshal(raw, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

func (c *Client) GenresRaw(ctx context.Context) (json.RawMessage, error) {
	params := url.Values{
		"language": {"en"},
		"api_key":  {c.apiKey},
	}
	reqURL := c.baseURL + "/genre/movie/list?" + params.Encode()

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var envelope genresEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if err := upstreamError(envelope.Success, envelope.StatusMessage); err != nil {
		return nil, err
	}
	return envelope.Genres, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
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
	// TMDB reports most failures inside the JSON payload; only hard server
	// statuses are rejected here so status_message survives for the rest.
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: tmdb HTTP %d", domain.ErrUpstream, resp.StatusCode)
	}
	return body, nil
}

func decodeResults(raw json.RawMessage) ([]Result, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var results []Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func upstreamError(success *bool, statusMessage string) error {
	if success == nil || *success {
		return nil
	}
	message := strings.TrimSpace(statusMessage)
	if message == "" {
		message = "request rejected"
	}
	return fmt.Errorf("%w: %s", domain.ErrUpstream, message)
}
