package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"reelist-server/internal/deps"
	"reelist-server/internal/model"
	"reelist-server/internal/watchlist"
	pkghttpx "reelist-server/pkg/httpx"
	pkgrequestctx "reelist-server/pkg/requestctx"
)

// viewFor resolves the caller's watchlist view from the session attached by
// the auth middleware.
func viewFor(d deps.ServerDeps, r *http.Request) (*watchlist.View, *pkghttpx.HTTPError) {
	jti := pkgrequestctx.SessionID(r.Context())
	p, ok := d.Sessions.ProviderByJTI(jti)
	if !ok {
		return nil, pkghttpx.Unauthorized("authentication required", nil)
	}
	v, err := d.Watchlists.ViewFor(r.Context(), jti, p)
	if err != nil {
		if errors.Is(err, model.ErrNoSession) {
			return nil, pkghttpx.Unauthorized("authentication required", err)
		}
		return nil, pkghttpx.ServiceUnavailable("watchlist store unavailable", err)
	}
	return v, nil
}

// WatchlistGet handles GET /watchlist. Query parameters select the derived
// projection: sort=rating presses the rating sort control (toggling the
// direction), genre filters by display name ("All Genres" passes all), and q
// is a case-insensitive title substring.
func WatchlistGet(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, he := viewFor(d, r)
		if he != nil {
			writeError(w, r, he)
			return
		}
		q := r.URL.Query()
		if q.Get("sort") == "rating" {
			v.ToggleSort()
		}
		entries := v.Projection(q.Get("genre"), q.Get("q"))
		writeJSON(w, http.StatusOK, map[string]any{
			"entries": entries,
			"count":   len(entries),
			"total":   len(v.Entries()),
			"genres":  v.Genres(),
			"sort":    sortName(v.SortDir()),
		})
	}
}

// WatchlistPut handles PUT /watchlist/{movieID} — bookmark a movie. The body
// carries the catalog snapshot to denormalize. Idempotent upsert.
func WatchlistPut(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movieID, ok := movieIDParam(w, r)
		if !ok {
			return
		}
		var movie model.MovieSummary
		if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid json", err))
			return
		}
		if movie.ID == 0 {
			movie.ID = movieID
		}
		if movie.ID != movieID {
			writeError(w, r, pkghttpx.BadRequest("movie id mismatch", nil))
			return
		}
		if movie.Title == "" {
			writeError(w, r, pkghttpx.BadRequest("missing movie title", nil))
			return
		}
		if movie.GenreIDs == nil {
			movie.GenreIDs = []int64{}
		}
		v, he := viewFor(d, r)
		if he != nil {
			writeError(w, r, he)
			return
		}
		if err := v.Add(r.Context(), movie); err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookmarked": true, "movie_id": movie.ID})
	}
}

// WatchlistDelete handles DELETE /watchlist/{movieID} — unbookmark. Removing
// an absent id is a no-op, not an error.
func WatchlistDelete(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movieID, ok := movieIDParam(w, r)
		if !ok {
			return
		}
		v, he := viewFor(d, r)
		if he != nil {
			writeError(w, r, he)
			return
		}
		if err := v.Remove(r.Context(), movieID); err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookmarked": false, "movie_id": movieID})
	}
}

func movieIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("movieID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, pkghttpx.BadRequest("invalid movie id", err))
		return 0, false
	}
	return id, true
}

func sortName(dir watchlist.SortDir) string {
	switch dir {
	case watchlist.Ascending:
		return "asc"
	case watchlist.Descending:
		return "desc"
	default:
		return "none"
	}
}
