package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	pkgtmdb "reelist-server/pkg/tmdb"
)

// genreRefreshInterval is generous: the catalog's genre list changes rarely.
const genreRefreshInterval = 24 * time.Hour

// SeedGenreIndex refreshes the genre index from the catalog once at startup
// and keeps it fresh on a daily ticker. The compiled-in mapping stays in
// place if a fetch fails; no-op if the client is nil (no API key configured).
func SeedGenreIndex(ctx context.Context, idx *pkgtmdb.GenreIndex, c *pkgtmdb.Client) {
	if c == nil {
		return
	}
	refreshGenres(ctx, idx, c)
	go func() {
		ticker := time.NewTicker(genreRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshGenres(ctx, idx, c)
			}
		}
	}()
}

func refreshGenres(ctx context.Context, idx *pkgtmdb.GenreIndex, c *pkgtmdb.Client) {
	names, err := c.GenreList(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("genre list fetch failed, keeping current index")
		return
	}
	idx.Replace(names)
	log.Info().Int("count", len(names)).Msg("genre index refreshed from catalog")
}
