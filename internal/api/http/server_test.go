package apihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keirastanley/kellaspace-backend/internal/domain"
)

type fakeSearchService struct {
	results []domain.SearchResult
	genres  []domain.Genre
	err     error
}

func (f *fakeSearchService) Movies(context.Context, string) ([]domain.SearchResult, error) {
	return f.results, f.err
}

func (f *fakeSearchService) TVShows(context.Context, string) ([]domain.SearchResult, error) {
	return f.results, f.err
}

func (f *fakeSearchService) Podcasts(context.Context, string) ([]domain.SearchResult, error) {
	return f.results, f.err
}

func (f *fakeSearchService) Videos(context.Context, string) ([]domain.SearchResult, error) {
	return f.results, f.err
}

func (f *fakeSearchService) Books(context.Context, string) ([]domain.SearchResult, error) {
	return f.results, f.err
}

func (f *fakeSearchService) Music(context.Context, string) ([]domain.SearchResult, error) {
	return f.results, f.err
}

func (f *fakeSearchService) Genres(context.Context) ([]domain.Genre, error) {
	return f.genres, f.err
}

type fakeUserStore struct {
	user domain.User
	err  error

	lastUserID string
	lastRecID  string
	lastPatch  domain.RecommendationPatch
}

func (f *fakeUserStore) Get(_ context.Context, id string) (domain.User, error) {
	f.lastUserID = id
	return f.user, f.err
}

func (f *fakeUserStore) GetBySub(context.Context, string) (domain.User, error) {
	return f.user, f.err
}

func (f *fakeUserStore) Create(_ context.Context, user domain.User) (domain.User, error) {
	if f.err != nil {
		return domain.User{}, f.err
	}
	return user, nil
}

func (f *fakeUserStore) AddRecommendation(_ context.Context, userID string, _ domain.Recommendation) (domain.User, error) {
	f.lastUserID = userID
	return f.user, f.err
}

func (f *fakeUserStore) EditRecommendation(_ context.Context, userID, recID string, patch domain.RecommendationPatch) (domain.User, error) {
	f.lastUserID = userID
	f.lastRecID = recID
	f.lastPatch = patch
	return f.user, f.err
}

func (f *fakeUserStore) DeleteRecommendation(_ context.Context, userID, recID string) (domain.User, error) {
	f.lastUserID = userID
	f.lastRecID = recID
	return f.user, f.err
}

func (f *fakeUserStore) AddList(_ context.Context, userID string, _ domain.List) (domain.User, error) {
	f.lastUserID = userID
	return f.user, f.err
}

func (f *fakeUserStore) Delete(_ context.Context, userID string) error {
	f.lastUserID = userID
	return f.err
}

type fakeTMDB struct {
	payload json.RawMessage
	err     error
}

func (f *fakeTMDB) SearchMoviesRaw(context.Context, string) (json.RawMessage, error) {
	return f.payload, f.err
}

func (f *fakeTMDB) SearchTVRaw(context.Context, string) (json.RawMessage, error) {
	return f.payload, f.err
}

func (f *fakeTMDB) GenresRaw(context.Context) (json.RawMessage, error) {
	return f.payload, f.err
}

func newTestHandler(search *fakeSearchService, users *fakeUserStore, options ...ServerOption) http.Handler {
	if search == nil {
		search = &fakeSearchService{}
	}
	if users == nil {
		users = &fakeUserStore{}
	}
	return NewServer(search, users, options...).Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func TestSearchRoutes(t *testing.T) {
	results := []domain.SearchResult{{
		Title:      "Dune (2021)",
		MediaType:  domain.MediaTypeMovie,
		SearchID:   438631,
		Provenance: domain.ProvenanceFor(domain.MediaTypeMovie),
	}}
	handler := newTestHandler(&fakeSearchService{results: results}, nil)

	for _, target := range []string{
		"/api/search/movie?query=dune",
		"/api/search/tv?query=dune",
		"/api/search/podcast?query=dune",
		"/api/search/book?query=dune",
		"/api/search/music?query=dune",
		"/api/search/video?video_id=abc",
	} {
		rec := doRequest(t, handler, http.MethodGet, target, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if !env.Success {
			t.Fatalf("%s: success = false, message %q", target, env.Message)
		}
		var payload []domain.SearchResult
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			t.Fatalf("%s: payload decode: %v", target, err)
		}
		if len(payload) != 1 || payload[0].Title != "Dune (2021)" {
			t.Fatalf("%s: payload = %+v", target, payload)
		}
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	handler := newTestHandler(nil, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/search/movie", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Message != "query cannot be undefined" {
		t.Fatalf("envelope = %+v", env)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/search/video", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("video status = %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "video_id cannot be undefined" {
		t.Fatalf("video envelope = %+v", env)
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	handler := newTestHandler(&fakeSearchService{err: errors.New("socket timeout")}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/search/movie?query=dune", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Message != "Error fetching search results" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestSearchUpstreamErrorMessagePassthrough(t *testing.T) {
	upstreamErr := errors.Join(domain.ErrUpstream, errors.New("Invalid API key"))
	handler := newTestHandler(&fakeSearchService{err: upstreamErr}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/search/movie?query=dune", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !strings.Contains(env.Message, "Invalid API key") {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestSearchGenres(t *testing.T) {
	handler := newTestHandler(&fakeSearchService{genres: []domain.Genre{{ID: 28, Name: "Action"}}}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/search/genres", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var genres []domain.Genre
	if err := json.Unmarshal(env.Payload, &genres); err != nil {
		t.Fatalf("payload decode: %v", err)
	}
	if len(genres) != 1 || genres[0].Name != "Action" {
		t.Fatalf("payload = %+v", genres)
	}
}

func TestSearchUnknownTarget(t *testing.T) {
	handler := newTestHandler(nil, nil)
	rec := doRequest(t, handler, http.MethodGet, "/api/search/vinyl?query=x", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTMDBPassthrough(t *testing.T) {
	raw := json.RawMessage(`[{"id":438631,"title":"Dune","vote_average":7.8}]`)
	handler := newTestHandler(nil, nil, WithTMDB(&fakeTMDB{payload: raw}))

	for _, target := range []string{
		"/api/tmdb/search/movie?query=dune",
		"/api/tmdb/search/tv?query=dune",
		"/api/tmdb/genres",
	} {
		rec := doRequest(t, handler, http.MethodGet, target, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if !bytes.Equal(env.Payload, raw) {
			t.Fatalf("%s: payload = %s", target, env.Payload)
		}
	}
}

func TestUsersCreate(t *testing.T) {
	store := &fakeUserStore{}
	handler := newTestHandler(nil, store)

	rec := doRequest(t, handler, http.MethodPost, "/api/users", `{"sub":"auth0|123","display_name":"Keira"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("envelope = %+v", env)
	}

	rec = doRequest(t, handler, http.MethodPost, "/api/users", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "Invalid user data" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestUsersGet(t *testing.T) {
	store := &fakeUserStore{user: domain.User{Sub: "auth0|123"}}
	handler := newTestHandler(nil, store)

	rec := doRequest(t, handler, http.MethodGet, "/api/users/507f1f77bcf86cd799439011", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.lastUserID != "507f1f77bcf86cd799439011" {
		t.Fatalf("user id = %q", store.lastUserID)
	}
}

func TestUsersGetBySub(t *testing.T) {
	store := &fakeUserStore{user: domain.User{Sub: "auth0|123"}}
	handler := newTestHandler(nil, store)

	rec := doRequest(t, handler, http.MethodGet, "/api/users/sub/auth0%7C123", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestUsersErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "invalid id", err: domain.ErrInvalidID, wantStatus: http.StatusBadRequest, wantMsg: domain.ErrInvalidID.Error()},
		{name: "validation", err: domain.ErrValidation, wantStatus: http.StatusBadRequest, wantMsg: domain.ErrValidation.Error()},
		{name: "user missing", err: domain.ErrUserNotFound, wantStatus: http.StatusNotFound, wantMsg: "User not found"},
		{name: "store failure", err: errors.New("driver exploded"), wantStatus: http.StatusInternalServerError, wantMsg: "Error fetching user"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestHandler(nil, &fakeUserStore{err: tc.err})
			rec := doRequest(t, handler, http.MethodGet, "/api/users/507f1f77bcf86cd799439011", "")
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if env.Success || env.Message != tc.wantMsg {
				t.Fatalf("envelope = %+v", env)
			}
		})
	}
}

func TestUsersAddRecommendation(t *testing.T) {
	store := &fakeUserStore{}
	handler := newTestHandler(nil, store)

	body := `{"id":"rec-1","title":"Dune (2021)","addedBy":"keira","mediaType":"Movie","dateAdded":"2024-03-01"}`
	rec := doRequest(t, handler, http.MethodPost, "/api/users/507f1f77bcf86cd799439011/recommendation", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if store.lastUserID != "507f1f77bcf86cd799439011" {
		t.Fatalf("user id = %q", store.lastUserID)
	}
}

func TestUsersEditRecommendation(t *testing.T) {
	store := &fakeUserStore{}
	handler := newTestHandler(nil, store)

	rec := doRequest(t, handler, http.MethodPatch,
		"/api/users/507f1f77bcf86cd799439011/recommendations/rec-1",
		`{"completed":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if store.lastRecID != "rec-1" {
		t.Fatalf("recommendation id = %q", store.lastRecID)
	}
	if store.lastPatch.Completed == nil || !*store.lastPatch.Completed {
		t.Fatalf("patch = %+v", store.lastPatch)
	}
}

func TestUsersDeleteRecommendation(t *testing.T) {
	store := &fakeUserStore{err: domain.ErrRecommendationNotFound}
	handler := newTestHandler(nil, store)

	rec := doRequest(t, handler, http.MethodDelete,
		"/api/users/507f1f77bcf86cd799439011/recommendation/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "Recommendation not found" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestUsersAddList(t *testing.T) {
	store := &fakeUserStore{}
	handler := newTestHandler(nil, store)

	body := `{"id":"l1","title":"Watch later","createdBy":"keira","dateCreated":"2024-03-01"}`
	rec := doRequest(t, handler, http.MethodPost, "/api/users/507f1f77bcf86cd799439011/list", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestUsersDelete(t *testing.T) {
	store := &fakeUserStore{}
	handler := newTestHandler(nil, store)

	rec := doRequest(t, handler, http.MethodDelete, "/api/users/507f1f77bcf86cd799439011", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	store.err = domain.ErrUserNotFound
	rec = doRequest(t, handler, http.MethodDelete, "/api/users/507f1f77bcf86cd799439011", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d", rec.Code)
	}
}

func TestUsersMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(nil, nil)
	rec := doRequest(t, handler, http.MethodPut, "/api/users/507f1f77bcf86cd799439011", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
