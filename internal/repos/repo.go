package repos

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository bundles the per-table repos behind one handle.
type Repository struct {
	db *pgxpool.Pool

	Users     *UsersRepo
	Watchlist *WatchlistRepo
}

func New(db *pgxpool.Pool) *Repository {
	r := &Repository{db: db}
	r.Users = &UsersRepo{db: db}
	r.Watchlist = &WatchlistRepo{db: db}
	return r
}
