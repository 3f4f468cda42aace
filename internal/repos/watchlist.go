package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"reelist-server/internal/model"
)

// WatchlistRepo is a document-style store: one row per (user, movie), movie
// snapshot kept as JSONB. Transport failures wrap ErrStoreUnavailable.
type WatchlistRepo struct {
	db *pgxpool.Pool
}

// List returns all entries for a user in insertion order. No entries is an
// empty slice, not an error.
func (r *WatchlistRepo) List(ctx context.Context, userID string) ([]model.WatchlistEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT snapshot, date_added FROM watchlist_entries
		 WHERE user_id = $1 ORDER BY date_added, movie_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", model.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := make([]model.WatchlistEntry, 0)
	for rows.Next() {
		var raw []byte
		var added time.Time
		if err := rows.Scan(&raw, &added); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", model.ErrStoreUnavailable, err)
		}
		var m model.MovieSummary
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: decode snapshot: %v", model.ErrStoreUnavailable, err)
		}
		out = append(out, model.WatchlistEntry{Movie: m, DateAdded: added})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", model.ErrStoreUnavailable, err)
	}
	return out, nil
}

// Put creates or replaces the entry for the movie. Idempotent: re-adding an
// already present id overwrites the stored snapshot.
func (r *WatchlistRepo) Put(ctx context.Context, userID string, movie model.MovieSummary) (model.WatchlistEntry, error) {
	raw, err := json.Marshal(movie)
	if err != nil {
		return model.WatchlistEntry{}, fmt.Errorf("encode snapshot: %w", err)
	}
	var added time.Time
	err = r.db.QueryRow(ctx,
		`INSERT INTO watchlist_entries (user_id, movie_id, snapshot)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, movie_id)
		 DO UPDATE SET snapshot = EXCLUDED.snapshot, date_added = now()
		 RETURNING date_added`,
		userID, movie.ID, raw,
	).Scan(&added)
	if err != nil {
		return model.WatchlistEntry{}, fmt.Errorf("%w: put: %v", model.ErrStoreUnavailable, err)
	}
	return model.WatchlistEntry{Movie: movie, DateAdded: added}, nil
}

// Delete removes the entry for the movie. Removing an absent id is a no-op.
func (r *WatchlistRepo) Delete(ctx context.Context, userID string, movieID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM watchlist_entries WHERE user_id = $1 AND movie_id = $2`,
		userID, movieID,
	)
	if err != nil {
		return fmt.Errorf("%w: delete: %v", model.ErrStoreUnavailable, err)
	}
	return nil
}
