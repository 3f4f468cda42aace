package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"reelist-server/internal/auth"
	"reelist-server/internal/deps"
	"reelist-server/internal/model"
	"reelist-server/internal/session"
	"reelist-server/internal/watchlist"
	pkgcache "reelist-server/pkg/cache"
	pkgtmdb "reelist-server/pkg/tmdb"
)

// fakeUsers is an in-memory session.UserStore.
type fakeUsers struct {
	mu     sync.Mutex
	nextID int
	byMail map[string]model.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byMail: make(map[string]model.User)} }

func (f *fakeUsers) Create(ctx context.Context, name, email, passwordHash string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byMail[email]; ok {
		return model.User{}, model.ErrEmailTaken
	}
	f.nextID++
	u := model.User{
		ID:           fmt.Sprintf("user-%d", f.nextID),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.byMail[email] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byMail[email]
	if !ok {
		return model.User{}, errors.New("no such user")
	}
	return u, nil
}

// fakeCatalog is a canned deps.Catalog.
type fakeCatalog struct {
	mu      sync.Mutex
	fetches int
	fail    bool
}

func (f *fakeCatalog) page() pkgtmdb.Page {
	return pkgtmdb.Page{
		Page:         1,
		TotalPages:   3,
		TotalResults: 60,
		Results: []pkgtmdb.Movie{
			{ID: 603, Title: "The Matrix", VoteAverage: 8.2, GenreIDs: []int64{28, 878}},
			{ID: 680, Title: "Pulp Fiction", VoteAverage: 8.5, GenreIDs: []int64{80}},
		},
	}
}

func (f *fakeCatalog) FetchPage(ctx context.Context, category string, page int) (pkgtmdb.Page, error) {
	f.mu.Lock()
	f.fetches++
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return pkgtmdb.Page{}, errors.New("upstream down")
	}
	return f.page(), nil
}

func (f *fakeCatalog) SearchPage(ctx context.Context, query string, page int) (pkgtmdb.Page, error) {
	return f.page(), nil
}

func (f *fakeCatalog) Trending(ctx context.Context) (pkgtmdb.Page, error) {
	return f.page(), nil
}

// memStore is an in-memory watchlist.Store.
type memStore struct {
	mu   sync.Mutex
	data map[string]map[int64]model.WatchlistEntry
}

func newMemStore() *memStore { return &memStore{data: make(map[string]map[int64]model.WatchlistEntry)} }

func (s *memStore) List(ctx context.Context, userID string) ([]model.WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.WatchlistEntry, 0, len(s.data[userID]))
	for _, e := range s.data[userID] {
		out = append(out, e)
	}
	return out, nil
}

func (s *memStore) Put(ctx context.Context, userID string, movie model.MovieSummary) (model.WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[userID] == nil {
		s.data[userID] = make(map[int64]model.WatchlistEntry)
	}
	e := model.WatchlistEntry{Movie: movie, DateAdded: time.Now()}
	s.data[userID][movie.ID] = e
	return e, nil
}

func (s *memStore) Delete(ctx context.Context, userID string, movieID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[userID], movieID)
	return nil
}

type env struct {
	handler http.Handler
	catalog *fakeCatalog
}

func newEnv(t *testing.T) *env {
	t.Helper()
	tokens, err := auth.NewManager([]byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	genres := pkgtmdb.NewGenreIndex()
	catalog := &fakeCatalog{}
	d := deps.ServerDeps{
		Cache:      pkgcache.NewInMemory(),
		Catalog:    catalog,
		Genres:     genres,
		Sessions:   session.NewService(newFakeUsers(), tokens),
		Watchlists: watchlist.NewManager(newMemStore(), nil, genres),
		Validate:   validator.New(),
		Name:       "reelist-server-test",
		StartedAt:  time.Now(),
	}
	srv := New(d, Options{})
	return &env{handler: srv.Router(), catalog: catalog}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

func (e *env) signup(t *testing.T, name, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}
	token, _ := decode(t, rec)["token"].(string)
	if token == "" {
		t.Fatal("signup response missing token")
	}
	return token
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode(t, rec)["status"]; got != "ok" {
		t.Fatalf("status field = %v", got)
	}
}

func TestMoviesEndpoint(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/movies/popular", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["category"] != "popular" || body["total_pages"] != float64(3) {
		t.Fatalf("body = %v", body)
	}
	if items := body["items"].([]any); len(items) != 2 {
		t.Fatalf("items = %v", items)
	}

	// Second hit is served from cache.
	e.do(t, http.MethodGet, "/movies/popular", "", nil)
	if e.catalog.fetches != 1 {
		t.Fatalf("fetches = %d, want the repeat served from cache", e.catalog.fetches)
	}

	if rec := e.do(t, http.MethodGet, "/movies/bogus", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown category status = %d", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/movies/popular?page=0", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("page=0 status = %d", rec.Code)
	}
}

func TestMoviesUpstreamFailure(t *testing.T) {
	e := newEnv(t)
	e.catalog.fail = true

	rec := e.do(t, http.MethodGet, "/movies/popular", "", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	e := newEnv(t)

	if rec := e.do(t, http.MethodGet, "/search/movie", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing query status = %d", rec.Code)
	}

	rec := e.do(t, http.MethodGet, "/search/movie?q=matrix", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body := decode(t, rec); body["query"] != "matrix" {
		t.Fatalf("body = %v", body)
	}
}

func TestGenresEndpoint(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/genres", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if genres := decode(t, rec)["genres"].([]any); len(genres) == 0 {
		t.Fatal("genres list empty")
	}
}

func TestSignupLoginFlow(t *testing.T) {
	e := newEnv(t)
	e.signup(t, "Ada", "ada@example.com", "correct-horse")

	// Duplicate email.
	rec := e.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "correct-horse",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d", rec.Code)
	}

	// Wrong password.
	rec = e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "correct-horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["token"] == "" {
		t.Fatal("login response missing token")
	}
	user := body["user"].(map[string]any)
	if user["display_name"] != "Ada" {
		t.Fatalf("user = %v", user)
	}

	// Malformed body.
	rec = e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "not-an-email"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid login body status = %d", rec.Code)
	}
}

func TestWatchlistRequiresToken(t *testing.T) {
	e := newEnv(t)

	if rec := e.do(t, http.MethodGet, "/watchlist", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/watchlist", "garbage-token", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", rec.Code)
	}
}

func TestWatchlistFlow(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "Ada", "ada@example.com", "correct-horse")

	movie := model.MovieSummary{ID: 603, Title: "The Matrix", VoteAverage: 8.2, GenreIDs: []int64{28, 878}}
	rec := e.do(t, http.MethodPut, "/watchlist/603", token, movie)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Bookmarking again is idempotent.
	e.do(t, http.MethodPut, "/watchlist/603", token, movie)

	rec = e.do(t, http.MethodGet, "/watchlist", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["count"] != float64(1) || body["total"] != float64(1) {
		t.Fatalf("body = %v", body)
	}

	// Body id must match the path id.
	rec = e.do(t, http.MethodPut, "/watchlist/604", token, movie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("id mismatch status = %d", rec.Code)
	}

	rec = e.do(t, http.MethodDelete, "/watchlist/603", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	body = decode(t, e.do(t, http.MethodGet, "/watchlist", token, nil))
	if body["total"] != float64(0) {
		t.Fatalf("body after delete = %v", body)
	}

	// Deleting an absent id stays 200.
	if rec := e.do(t, http.MethodDelete, "/watchlist/603", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("repeat delete status = %d", rec.Code)
	}
}

func TestWatchlistProjectionParams(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "Ada", "ada@example.com", "correct-horse")

	add := func(id int64, title string, rating float64, genreIDs ...int64) {
		m := model.MovieSummary{ID: id, Title: title, VoteAverage: rating, GenreIDs: genreIDs}
		rec := e.do(t, http.MethodPut, fmt.Sprintf("/watchlist/%d", id), token, m)
		if rec.Code != http.StatusOK {
			t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
		}
	}
	add(1, "Alpha", 5.0, 28)
	add(2, "Beta", 9.0, 35)
	add(3, "Gamma", 2.0, 28)

	// First press of the rating sort control sorts ascending.
	body := decode(t, e.do(t, http.MethodGet, "/watchlist?sort=rating", token, nil))
	if body["sort"] != "asc" {
		t.Fatalf("sort = %v", body["sort"])
	}
	entries := body["entries"].([]any)
	first := entries[0].(map[string]any)["movie"].(map[string]any)
	if first["title"] != "Gamma" {
		t.Fatalf("ascending order starts with %v", first["title"])
	}

	// Second press flips to descending.
	body = decode(t, e.do(t, http.MethodGet, "/watchlist?sort=rating", token, nil))
	if body["sort"] != "desc" {
		t.Fatalf("sort = %v", body["sort"])
	}

	// Genre filter by display name.
	body = decode(t, e.do(t, http.MethodGet, "/watchlist?genre=Comedy", token, nil))
	if body["count"] != float64(1) || body["total"] != float64(3) {
		t.Fatalf("genre filter body = %v", body)
	}

	// Title substring filter.
	body = decode(t, e.do(t, http.MethodGet, "/watchlist?q=amm", token, nil))
	if body["count"] != float64(1) {
		t.Fatalf("text filter body = %v", body)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "Ada", "ada@example.com", "correct-horse")

	rec := e.do(t, http.MethodGet, "/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}

	e.do(t, http.MethodPut, "/watchlist/603", token, model.MovieSummary{ID: 603, Title: "The Matrix"})

	if rec := e.do(t, http.MethodPost, "/auth/logout", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	// The token is dead for the rest of the process lifetime.
	if rec := e.do(t, http.MethodGet, "/watchlist", token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("post-logout watchlist status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := e.do(t, http.MethodGet, "/auth/me", token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("post-logout me status = %d", rec.Code)
	}
}
