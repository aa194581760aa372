package apihttp

import (
	"net/http"
	"strings"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	target := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/search/"), "/")
	if target == "genres" {
		s.handleSearchGenres(w, r)
		return
	}

	if target == "video" {
		videoID := strings.TrimSpace(r.URL.Query().Get("video_id"))
		if videoID == "" {
			writeFailure(w, http.StatusBadRequest, "video_id cannot be undefined")
			return
		}
		results, err := s.search.Videos(r.Context(), videoID)
		if err != nil {
			writeDomainError(w, err, "Error fetching search results")
			return
		}
		writeSuccess(w, http.StatusOK, results)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeFailure(w, http.StatusBadRequest, "query cannot be undefined")
		return
	}

	fetch := s.searchFetcher(target)
	if fetch == nil {
		http.NotFound(w, r)
		return
	}
	results, err := fetch(r, query)
	if err != nil {
		writeDomainError(w, err, "Error fetching search results")
		return
	}
	writeSuccess(w, http.StatusOK, results)
}

// searchFetcher dispatches a path segment to the matching service call;
// unknown segments return nil and fall through to a 404.
func (s *Server) searchFetcher(target string) func(*http.Request, string) (any, error) {
	switch target {
	case "movie":
		return func(r *http.Request, query string) (any, error) {
			return s.search.Movies(r.Context(), query)
		}
	case "tv":
		return func(r *http.Request, query string) (any, error) {
			return s.search.TVShows(r.Context(), query)
		}
	case "podcast":
		return func(r *http.Request, query string) (any, error) {
			return s.search.Podcasts(r.Context(), query)
		}
	case "book":
		return func(r *http.Request, query string) (any, error) {
			return s.search.Books(r.Context(), query)
		}
	case "music":
		return func(r *http.Request, query string) (any, error) {
			return s.search.Music(r.Context(), query)
		}
	default:
		return nil
	}
}

func (s *Server) handleSearchGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.search.Genres(r.Context())
	if err != nil {
		writeDomainError(w, err, "Error fetching genres")
		return
	}
	writeSuccess(w, http.StatusOK, genres)
}
