package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keirastanley/kellaspace-backend/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Client: server.Client()})
}

func TestSearchMovies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("query") != "dune" {
			t.Fatalf("query = %q", query.Get("query"))
		}
		if query.Get("api_key") != "test-key" {
			t.Fatalf("api_key = %q", query.Get("api_key"))
		}
		if query.Get("include_adult") != "false" || query.Get("language") != "en-US" || query.Get("page") != "1" {
			t.Fatalf("unexpected params: %v", query)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[
			{"id":438631,"title":"Dune","overview":"desert planet","poster_path":"/p.jpg","release_date":"2021-09-15","genre_ids":[878,12]}
		]}`))
	})

	results, err := client.SearchMovies(context.Background(), "dune")
	if err != nil {
		t.Fatalf("SearchMovies: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	r := results[0]
	if r.ID != 438631 || r.Title != "Dune" || r.ReleaseDate != "2021-09-15" {
		t.Fatalf("result = %+v", r)
	}
	if len(r.GenreIDs) != 2 || r.GenreIDs[0] != 878 {
		t.Fatalf("genre ids = %v", r.GenreIDs)
	}
}

func TestSearchTVUsesTVEndpoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/tv" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"results":[{"id":1396,"name":"Breaking Bad","first_air_date":"2008-01-20"}]}`))
	})

	results, err := client.SearchTV(context.Background(), "breaking bad")
	if err != nil {
		t.Fatalf("SearchTV: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Breaking Bad" {
		t.Fatalf("results = %+v", results)
	}
}

func TestSearchSurfacesUpstreamStatusMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"status_code":7,"status_message":"Invalid API key: You must be granted a valid key."}`))
	})

	_, err := client.SearchMovies(context.Background(), "dune")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if want := "Invalid API key"; err == nil || !strings.Contains(err.Error(), want) {
		t.Fatalf("err = %v, want containing %q", err, want)
	}
}

func TestGenres(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/genre/movie/list" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"},{"id":12,"name":"Adventure"}]}`))
	})

	genres, err := client.Genres(context.Background())
	if err != nil {
		t.Fatalf("Genres: %v", err)
	}
	if len(genres) != 2 || genres[0].Name != "Action" {
		t.Fatalf("genres = %+v", genres)
	}
}

func TestSearchMoviesRawPassthrough(t *testing.T) {
	raw := `[{"id":438631,"title":"Dune","vote_average":7.79,"popularity":123.4}]`
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"page":1,"results":` + raw + `}`))
	})

	payload, err := client.SearchMoviesRaw(context.Background(), "dune")
	if err != nil {
		t.Fatalf("SearchMoviesRaw: %v", err)
	}
	// Provider fields unknown to the typed Result must survive untouched.
	if string(payload) != raw {
		t.Fatalf("payload = %s", payload)
	}
}

func TestServerErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := client.SearchMovies(context.Background(), "dune"); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}
