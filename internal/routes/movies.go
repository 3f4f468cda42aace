package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"reelist-server/internal/browse"
	"reelist-server/internal/deps"
	"reelist-server/internal/jobs"
	"reelist-server/internal/model"
	pkghttpx "reelist-server/pkg/httpx"
	pkgtmdb "reelist-server/pkg/tmdb"
)

const browsePageTTL = 2 * time.Minute

// Movies handles GET /movies/{category} — one page of a browse category.
func Movies(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		category := r.PathValue("category")
		if _, ok := model.AllowedCategories[category]; !ok {
			writeError(w, r, pkghttpx.BadRequest("unknown category", nil))
			return
		}
		page, ok := pageParam(w, r)
		if !ok {
			return
		}

		cacheKey := "browse:" + category + ":page:" + strconv.Itoa(page)
		if cached, found := d.Cache.Get(ctx, cacheKey); found {
			writeRaw(w, []byte(cached))
			return
		}

		m := browse.NewModel(d.Catalog)
		_ = m.SetCategory(category)
		m.SetPage(page)
		snap := m.Load(ctx)
		if snap.Err != nil {
			writeDomainError(w, r, snap.Err)
			return
		}
		b, _ := json.Marshal(browseResponse(snap))
		_ = d.Cache.Set(ctx, cacheKey, string(b), browsePageTTL)
		writeRaw(w, b)
	}
}

// Trending handles GET /movies/trending — the banner list, normally served
// from the warmed cache.
func Trending(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if cached, found := d.Cache.Get(ctx, jobs.TrendingCacheKey); found {
			writeRaw(w, []byte(cached))
			return
		}
		page, err := d.Catalog.Trending(ctx)
		if err != nil {
			if errors.Is(err, pkgtmdb.ErrMissingAPIKey) {
				writeDomainError(w, r, fmt.Errorf("%w: %w", model.ErrMissingAPIKey, err))
			} else {
				writeDomainError(w, r, fmt.Errorf("%w: %v", model.ErrCatalogUnavailable, err))
			}
			return
		}
		items := make([]model.MovieSummary, 0, len(page.Results))
		for _, res := range page.Results {
			items = append(items, browse.ToSummary(res))
		}
		b, _ := json.Marshal(map[string]any{"items": items})
		_ = d.Cache.Set(ctx, jobs.TrendingCacheKey, string(b), jobs.TrendingTTL)
		writeRaw(w, b)
	}
}

func browseResponse(snap browse.Snapshot) map[string]any {
	resp := map[string]any{
		"items":         snap.Items,
		"page":          snap.Page,
		"total_pages":   snap.TotalPages,
		"total_results": snap.TotalResults,
	}
	if snap.Query != "" {
		resp["query"] = snap.Query
	} else {
		resp["category"] = snap.Category
	}
	return resp
}

func pageParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	pageStr := r.URL.Query().Get("page")
	if pageStr == "" {
		return 1, true
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		writeError(w, r, pkghttpx.BadRequest("invalid page", err))
		return 0, false
	}
	return page, true
}

func writeRaw(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
