package routes

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reelist-server/internal/browse"
	"reelist-server/internal/deps"
	pkghttpx "reelist-server/pkg/httpx"
)

const searchPageTTL = 1 * time.Minute

// Search handles GET /search/movie — full-text search, paginated.
func Search(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeError(w, r, pkghttpx.BadRequest("missing search query", nil))
			return
		}
		page, ok := pageParam(w, r)
		if !ok {
			return
		}

		cacheKey := "search:" + url.QueryEscape(query) + ":page:" + strconv.Itoa(page)
		if cached, found := d.Cache.Get(ctx, cacheKey); found {
			writeRaw(w, []byte(cached))
			return
		}

		m := browse.NewModel(d.Catalog)
		if err := m.SetQuery(query); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid search query", err))
			return
		}
		m.SetPage(page)
		snap := m.Load(ctx)
		if snap.Err != nil {
			writeDomainError(w, r, snap.Err)
			return
		}
		b, _ := json.Marshal(browseResponse(snap))
		_ = d.Cache.Set(ctx, cacheKey, string(b), searchPageTTL)
		writeRaw(w, b)
	}
}
