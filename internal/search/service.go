package search

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/keirastanley/kellaspace-backend/internal/domain"
	"github.com/keirastanley/kellaspace-backend/internal/metrics"
	"github.com/keirastanley/kellaspace-backend/internal/providers/deezer"
	"github.com/keirastanley/kellaspace-backend/internal/providers/googlebooks"
	"github.com/keirastanley/kellaspace-backend/internal/providers/listennotes"
	"github.com/keirastanley/kellaspace-backend/internal/providers/tmdb"
	"github.com/keirastanley/kellaspace-backend/internal/providers/youtube"
)

// MovieTVClient is the slice of the TMDB client the service depends on.
type MovieTVClient interface {
	SearchMovies(ctx context.Context, query string) ([]tmdb.Result, error)
	SearchTV(ctx context.Context, query string) ([]tmdb.Result, error)
	Genres(ctx context.Context) ([]domain.Genre, error)
}

type PodcastClient interface {
	Search(ctx context.Context, query string) ([]listennotes.Result, error)
}

type VideoClient interface {
	Videos(ctx context.Context, videoID string) ([]youtube.Video, error)
}

type BookClient interface {
	Search(ctx context.Context, query string) ([]googlebooks.Volume, error)
}

type MusicClient interface {
	Search(ctx context.Context, query string) ([]deezer.Track, error)
}

// Service answers normalized search requests by fanning out to the
// provider clients and mapping their shapes into the canonical result.
type Service struct {
	movieTV  MovieTVClient
	podcasts PodcastClient
	videos   VideoClient
	books    BookClient
	music    MusicClient

	logger          *slog.Logger
	upstreamTimeout time.Duration
}

type ServiceOption func(*Service)

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithUpstreamTimeout bounds every provider call issued by the service.
func WithUpstreamTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		if timeout > 0 {
			s.upstreamTimeout = timeout
		}
	}
}

func NewService(movieTV MovieTVClient, podcasts PodcastClient, videos VideoClient, books BookClient, music MusicClient, opts ...ServiceOption) *Service {
	service := &Service{
		movieTV:         movieTV,
		podcasts:        podcasts,
		videos:          videos,
		books:           books,
		music:           music,
		logger:          slog.Default(),
		upstreamTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *Service) Movies(ctx context.Context, query string) ([]domain.SearchResult, error) {
	return s.searchTMDB(ctx, query, "tmdb_movie", s.movieTV.SearchMovies, NormalizeMovie)
}

func (s *Service) TVShows(ctx context.Context, query string) ([]domain.SearchResult, error) {
	return s.searchTMDB(ctx, query, "tmdb_tv", s.movieTV.SearchTV, NormalizeTV)
}

// searchTMDB runs the search and the genre lookup concurrently; the genre
// list is fetched once per batch and joined onto every result.
func (s *Service) searchTMDB(ctx context.Context, query, provider string, fetch func(context.Context, string) ([]tmdb.Result, error), normalize func(tmdb.Result) domain.SearchResult) ([]domain.SearchResult, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	var (
		records []tmdb.Result
		lookup  []domain.Genre
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		records, err = observe(s, provider, func() ([]tmdb.Result, error) {
			return fetch(groupCtx, query)
		})
		return err
	})
	group.Go(func() error {
		var err error
		lookup, err = observe(s, "tmdb_genres", func() ([]domain.Genre, error) {
			return s.movieTV.Genres(groupCtx)
		})
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(records))
	for _, record := range records {
		result := normalize(record)
		result.Tags = genreTags(record.GenreIDs, lookup)
		results = append(results, result)
	}
	return results, nil
}

func (s *Service) Podcasts(ctx context.Context, query string) ([]domain.SearchResult, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	records, err := observe(s, "listen_notes", func() ([]listennotes.Result, error) {
		return s.podcasts.Search(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(records))
	for _, record := range records {
		results = append(results, NormalizePodcast(record))
	}
	return results, nil
}

func (s *Service) Videos(ctx context.Context, videoID string) ([]domain.SearchResult, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	records, err := observe(s, "youtube", func() ([]youtube.Video, error) {
		return s.videos.Videos(ctx, videoID)
	})
	if err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(records))
	for _, record := range records {
		results = append(results, NormalizeVideo(record))
	}
	return results, nil
}

func (s *Service) Books(ctx context.Context, query string) ([]domain.SearchResult, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	records, err := observe(s, "google_books", func() ([]googlebooks.Volume, error) {
		return s.books.Search(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(records))
	for _, record := range records {
		results = append(results, NormalizeBook(record))
	}
	return results, nil
}

func (s *Service) Music(ctx context.Context, query string) ([]domain.SearchResult, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	records, err := observe(s, "deezer", func() ([]deezer.Track, error) {
		return s.music.Search(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(records))
	for _, record := range records {
		results = append(results, NormalizeTrack(record))
	}
	return results, nil
}

func (s *Service) Genres(ctx context.Context) ([]domain.Genre, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	return observe(s, "tmdb_genres", func() ([]domain.Genre, error) {
		return s.movieTV.Genres(ctx)
	})
}

func (s *Service) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.upstreamTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.upstreamTimeout)
}

// observe is a free function because methods cannot be generic.
func observe[T any](s *Service, provider string, fn func() (T, error)) (T, error) {
	started := time.Now()
	out, err := fn()
	s.record(provider, started, err)
	return out, err
}

func (s *Service) record(provider string, started time.Time, err error) {
	elapsed := time.Since(started)
	metrics.ProviderRequestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	metrics.ProviderRequestsTotal.WithLabelValues(provider, metrics.StatusLabel(err)).Inc()
	if err != nil {
		s.logger.Warn("provider request failed",
			slog.String("provider", provider),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("provider request completed",
		slog.String("provider", provider),
		slog.Duration("elapsed", elapsed))
}
