package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apihttp "github.com/keirastanley/kellaspace-backend/internal/api/http"
	"github.com/keirastanley/kellaspace-backend/internal/app"
	"github.com/keirastanley/kellaspace-backend/internal/metrics"
	"github.com/keirastanley/kellaspace-backend/internal/providers/deezer"
	"github.com/keirastanley/kellaspace-backend/internal/providers/googlebooks"
	"github.com/keirastanley/kellaspace-backend/internal/providers/listennotes"
	"github.com/keirastanley/kellaspace-backend/internal/providers/tmdb"
	"github.com/keirastanley/kellaspace-backend/internal/providers/youtube"
	mongorepo "github.com/keirastanley/kellaspace-backend/internal/repository/mongo"
	"github.com/keirastanley/kellaspace-backend/internal/search"
	"github.com/keirastanley/kellaspace-backend/internal/telemetry"
)

const serviceName = "kellaspace-backend"

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), serviceName)
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", serviceName),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.Duration("upstreamTimeout", cfg.UpstreamTimeout),
		slog.String("mongoDatabase", cfg.MongoDatabase),
	)

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelConnect()
	mongoClient, err := mongorepo.Connect(connectCtx, cfg.MongoURI,
		options.Client().SetMonitor(otelmongo.NewMonitor()))
	if err != nil {
		logger.Error("mongo connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	if err := mongoClient.Ping(connectCtx, readpref.Primary()); err != nil {
		logger.Error("mongo ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	users := mongorepo.NewUserRepository(mongoClient, cfg.MongoDatabase, "users")
	if err := users.EnsureIndexes(connectCtx); err != nil {
		logger.Warn("index creation failed", slog.String("error", err.Error()))
	}

	upstreamClient := func() *http.Client {
		return &http.Client{
			Timeout:   cfg.UpstreamTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	tmdbClient := tmdb.NewClient(tmdb.Config{
		APIKey:  cfg.TMDBAPIKey,
		BaseURL: cfg.TMDBBaseURL,
		Client:  upstreamClient(),
	})
	podcastClient := listennotes.NewClient(listennotes.Config{
		APIKey:  cfg.ListenNotesAPIKey,
		BaseURL: cfg.ListenNotesURL,
		Client:  upstreamClient(),
	})
	videoClient := youtube.NewClient(youtube.Config{
		APIKey:  cfg.YouTubeAPIKey,
		BaseURL: cfg.YouTubeBaseURL,
		Client:  upstreamClient(),
	})
	bookClient := googlebooks.NewClient(googlebooks.Config{
		APIKey:  cfg.GoogleBooksAPIKey,
		BaseURL: cfg.GoogleBooksURL,
		Client:  upstreamClient(),
	})
	for name, enabled := range map[string]bool{
		"tmdb":         tmdbClient.Enabled(),
		"listen_notes": podcastClient.Enabled(),
		"youtube":      videoClient.Enabled(),
		"google_books": bookClient.Enabled(),
	} {
		if !enabled {
			logger.Warn("provider has no api key, its searches will fail", "provider", name)
		}
	}

	searchService := search.NewService(
		tmdbClient,
		podcastClient,
		videoClient,
		bookClient,
		deezer.NewClient(deezer.Config{
			BaseURL: cfg.DeezerBaseURL,
			Client:  upstreamClient(),
		}),
		search.WithLogger(logger),
		search.WithUpstreamTimeout(cfg.UpstreamTimeout),
	)

	handler := apihttp.NewServer(searchService, users,
		apihttp.WithLogger(logger),
		apihttp.WithTMDB(tmdbClient),
		apihttp.WithCORSOrigins(cfg.CORSAllowedOrigins),
	).Handler()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("service started", slog.String("addr", cfg.HTTPAddr))

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("service stopped")
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
