package deps

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"reelist-server/internal/session"
	"reelist-server/internal/watchlist"
	pkgcache "reelist-server/pkg/cache"
	pkgtmdb "reelist-server/pkg/tmdb"
)

// Catalog lists the catalog client methods the handlers rely on.
// *tmdb.Client satisfies this interface.
type Catalog interface {
	FetchPage(ctx context.Context, category string, page int) (pkgtmdb.Page, error)
	SearchPage(ctx context.Context, query string, page int) (pkgtmdb.Page, error)
	Trending(ctx context.Context) (pkgtmdb.Page, error)
}

// ServerDeps holds the dependencies required by handlers and server.
type ServerDeps struct {
	Cache      pkgcache.Cache
	Catalog    Catalog
	Genres     *pkgtmdb.GenreIndex
	Sessions   *session.Service
	Watchlists *watchlist.Manager
	Validate   *validator.Validate
	Name       string
	StartedAt  time.Time
}
