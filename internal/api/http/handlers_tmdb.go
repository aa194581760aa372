package apihttp

import (
	"net/http"
	"strings"
)

// TMDB passthrough routes return the provider's own shapes untouched, for
// callers that want the raw records rather than the normalized view.
func (s *Server) handleTMDB(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.tmdb == nil {
		writeFailure(w, http.StatusInternalServerError, "tmdb is not configured")
		return
	}

	target := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tmdb/"), "/")
	if target == "genres" {
		payload, err := s.tmdb.GenresRaw(r.Context())
		if err != nil {
			writeDomainError(w, err, "Error fetching genres")
			return
		}
		writeSuccess(w, http.StatusOK, payload)
		return
	}

	var mediaType string
	switch target {
	case "search/movie":
		mediaType = "movie"
	case "search/tv":
		mediaType = "tv"
	default:
		http.NotFound(w, r)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeFailure(w, http.StatusBadRequest, "query cannot be undefined")
		return
	}

	var payload any
	var err error
	if mediaType == "movie" {
		payload, err = s.tmdb.SearchMoviesRaw(r.Context(), query)
	} else {
		payload, err = s.tmdb.SearchTVRaw(r.Context(), query)
	}
	if err != nil {
		writeDomainError(w, err, "Error fetching search results")
		return
	}
	writeSuccess(w, http.StatusOK, payload)
}
