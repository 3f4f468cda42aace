package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"reelist-server/internal/browse"
	pkgcache "reelist-server/pkg/cache"
	pkgtmdb "reelist-server/pkg/tmdb"
)

// TrendingCacheKey is where the warmed banner payload lives.
const TrendingCacheKey = "trending:day"

// TrendingTTL keeps the banner fresh without hammering the catalog.
const TrendingTTL = 30 * time.Minute

// StartTrendingRefresh warms the trending banner cache immediately and then
// on a fixed interval, so the home view rarely pays the upstream round trip.
// No-op if the client is nil.
func StartTrendingRefresh(ctx context.Context, c *pkgtmdb.Client, cache pkgcache.Cache) {
	if c == nil {
		log.Warn().Msg("catalog client not configured; skipping trending refresh")
		return
	}
	go func() {
		refreshTrending(ctx, c, cache)
		ticker := time.NewTicker(TrendingTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshTrending(ctx, c, cache)
			}
		}
	}()
}

func refreshTrending(ctx context.Context, c *pkgtmdb.Client, cache pkgcache.Cache) {
	page, err := c.Trending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("trending refresh failed")
		return
	}
	items := make([]any, 0, len(page.Results))
	for _, r := range page.Results {
		items = append(items, browse.ToSummary(r))
	}
	b, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		log.Error().Err(err).Msg("trending encode failed")
		return
	}
	if err := cache.Set(ctx, TrendingCacheKey, string(b), TrendingTTL); err != nil {
		log.Error().Err(err).Msg("trending cache write failed")
		return
	}
	log.Info().Int("count", len(page.Results)).Msg("trending cache warmed")
}
