package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/keirastanley/kellaspace-backend/internal/domain"
)

// SearchService answers normalized media searches.
type SearchService interface {
	Movies(ctx context.Context, query string) ([]domain.SearchResult, error)
	TVShows(ctx context.Context, query string) ([]domain.SearchResult, error)
	Podcasts(ctx context.Context, query string) ([]domain.SearchResult, error)
	Videos(ctx context.Context, videoID string) ([]domain.SearchResult, error)
	Books(ctx context.Context, query string) ([]domain.SearchResult, error)
	Music(ctx context.Context, query string) ([]domain.SearchResult, error)
	Genres(ctx context.Context) ([]domain.Genre, error)
}

// TMDBService exposes the raw provider payloads for the passthrough routes.
type TMDBService interface {
	SearchMoviesRaw(ctx context.Context, query string) (json.RawMessage, error)
	SearchTVRaw(ctx context.Context, query string) (json.RawMessage, error)
	GenresRaw(ctx context.Context) (json.RawMessage, error)
}

// UserStore is the user aggregate repository surface the handlers need.
type UserStore interface {
	Get(ctx context.Context, id string) (domain.User, error)
	GetBySub(ctx context.Context, sub string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	AddRecommendation(ctx context.Context, userID string, rec domain.Recommendation) (domain.User, error)
	EditRecommendation(ctx context.Context, userID, recommendationID string, patch domain.RecommendationPatch) (domain.User, error)
	DeleteRecommendation(ctx context.Context, userID, recommendationID string) (domain.User, error)
	AddList(ctx context.Context, userID string, list domain.List) (domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type Server struct {
	search SearchService
	tmdb   TMDBService
	users  UserStore
	logger *slog.Logger

	corsOrigins []string
}

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTMDB(tmdb TMDBService) ServerOption {
	return func(s *Server) {
		s.tmdb = tmdb
	}
}

// WithCORSOrigins sets the fixed allow-list of cross-origin callers.
func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

func NewServer(searchService SearchService, users UserStore, options ...ServerOption) *Server {
	server := &Server{
		search: searchService,
		users:  users,
		logger: slog.Default(),
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	return server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/search/", s.handleSearch)
	mux.HandleFunc("/api/tmdb/", s.handleTMDB)
	mux.HandleFunc("/api/users", s.handleUsers)
	mux.HandleFunc("/api/users/", s.handleUsers)

	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "kellaspace-backend",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health"
		}),
	)
	handler := corsMiddleware(s.corsOrigins, traced)
	return recoveryMiddleware(s.logger, rateLimitMiddleware(50, 100, metricsMiddleware(handler)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

type successEnvelope struct {
	Success bool `json:"success"`
	Payload any  `json:"payload"`
}

type failureEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, successEnvelope{Success: true, Payload: payload})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, failureEnvelope{Success: false, Message: message})
}

// writeDomainError maps the error taxonomy onto status codes; fallback is
// the route-supplied default message on 500.
func writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidID), errors.Is(err, domain.ErrValidation):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeFailure(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrRecommendationNotFound):
		writeFailure(w, http.StatusNotFound, "Recommendation not found")
	case errors.Is(err, domain.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "Item not found")
	case errors.Is(err, domain.ErrUpstream):
		writeFailure(w, http.StatusInternalServerError, err.Error())
	default:
		writeFailure(w, http.StatusInternalServerError, fallback)
	}
}
