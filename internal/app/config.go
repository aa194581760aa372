package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr        string
	UpstreamTimeout time.Duration
	LogLevel        string
	LogFormat       string

	MongoURI      string
	MongoDatabase string

	TMDBAPIKey        string
	TMDBBaseURL       string
	ListenNotesAPIKey string
	ListenNotesURL    string
	YouTubeAPIKey     string
	YouTubeBaseURL    string
	GoogleBooksAPIKey string
	GoogleBooksURL    string
	DeezerBaseURL     string

	CORSAllowedOrigins []string
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		UpstreamTimeout: time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 15)) * time.Second,
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "kellaspace"),

		TMDBAPIKey:        strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		TMDBBaseURL:       getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		ListenNotesAPIKey: strings.TrimSpace(os.Getenv("LISTEN_NOTES_API_KEY")),
		ListenNotesURL:    getEnv("LISTEN_NOTES_BASE_URL", "https://listen-api.listennotes.com/api/v2"),
		YouTubeAPIKey:     strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY")),
		YouTubeBaseURL:    getEnv("YOUTUBE_BASE_URL", "https://www.googleapis.com/youtube/v3"),
		GoogleBooksAPIKey: strings.TrimSpace(os.Getenv("GOOGLE_BOOKS_API_KEY")),
		GoogleBooksURL:    getEnv("GOOGLE_BOOKS_BASE_URL", "https://www.googleapis.com/books/v1"),
		DeezerBaseURL:     getEnv("DEEZER_BASE_URL", "https://api.deezer.com"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS",
			"http://localhost:5173,https://kellaspace-frontend.vercel.app")),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
