package watchlist

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"reelist-server/internal/model"
	"reelist-server/pkg/tmdb"
)

// Store is the remote per-user entry collection, keyed by movie id.
type Store interface {
	List(ctx context.Context, userID string) ([]model.WatchlistEntry, error)
	Put(ctx context.Context, userID string, movie model.MovieSummary) (model.WatchlistEntry, error)
	Delete(ctx context.Context, userID string, movieID int64) error
}

// Mirror is an optional local durable copy of the snapshot, one key per user.
type Mirror interface {
	Put(userID string, entries []model.WatchlistEntry) error
	Get(userID string) ([]model.WatchlistEntry, bool)
}

// View holds the authoritative in-memory watchlist snapshot for one session
// and the parameters of its derived projections. Mutations are optimistic:
// the snapshot changes first, the store write follows, and a failed write
// restores the prior snapshot by value swap.
type View struct {
	mu      sync.Mutex
	store   Store
	mirror  Mirror
	genres  *tmdb.GenreIndex
	userID  string
	entries []model.WatchlistEntry
	sortDir SortDir
	loaded  bool
}

func NewView(store Store, mirror Mirror, genres *tmdb.GenreIndex, userID string) *View {
	return &View{store: store, mirror: mirror, genres: genres, userID: userID}
}

// Load fetches the snapshot from the store. When the store is unavailable and
// a mirror copy exists, the mirror serves as fallback and the error is
// swallowed: the view stays usable, writes will still hit the store.
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.userID == "" {
		return model.ErrNoSession
	}
	entries, err := v.store.List(ctx, v.userID)
	if err != nil {
		if v.mirror != nil {
			if cached, ok := v.mirror.Get(v.userID); ok {
				log.Warn().Err(err).Str("user_id", v.userID).Msg("watchlist store unavailable, serving mirror")
				v.entries = cached
				v.loaded = true
				return nil
			}
		}
		return err
	}
	v.entries = entries
	v.loaded = true
	v.writeMirror()
	return nil
}

// Entries returns the current raw snapshot in insertion order.
func (v *View) Entries() []model.WatchlistEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.WatchlistEntry, len(v.entries))
	copy(out, v.entries)
	return out
}

// Loaded reports whether the snapshot has been fetched for this session.
func (v *View) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Contains reports whether the movie id is bookmarked. Backs the card-level
// bookmark flag.
func (v *View) Contains(movieID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, e := range v.entries {
		if e.Movie.ID == movieID {
			return true
		}
	}
	return false
}

// Add bookmarks a movie: the snapshot gains the entry immediately, then the
// store write runs; on failure the prior snapshot is restored. Re-adding a
// present id is an idempotent upsert, not an error.
func (v *View) Add(ctx context.Context, movie model.MovieSummary) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.userID == "" {
		return model.ErrNoSession
	}
	prior := v.entries
	next := make([]model.WatchlistEntry, 0, len(prior)+1)
	for _, e := range prior {
		if e.Movie.ID != movie.ID {
			next = append(next, e)
		}
	}
	next = append(next, model.WatchlistEntry{Movie: movie, DateAdded: time.Now().UTC()})
	v.entries = next

	stored, err := v.store.Put(ctx, v.userID, movie)
	if err != nil {
		v.entries = prior
		return err
	}
	// Adopt the store's timestamp so a reload yields the same snapshot.
	v.entries[len(v.entries)-1] = stored
	v.writeMirror()
	return nil
}

// Remove unbookmarks a movie with the same optimistic/rollback shape as Add.
// Removing an absent id is a no-op.
func (v *View) Remove(ctx context.Context, movieID int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.userID == "" {
		return model.ErrNoSession
	}
	prior := v.entries
	next := make([]model.WatchlistEntry, 0, len(prior))
	for _, e := range prior {
		if e.Movie.ID != movieID {
			next = append(next, e)
		}
	}
	v.entries = next

	if err := v.store.Delete(ctx, v.userID, movieID); err != nil {
		v.entries = prior
		return err
	}
	v.writeMirror()
	return nil
}

// ToggleSort arms the rating sort: the first press sorts ascending and each
// following press alternates direction.
func (v *View) ToggleSort() SortDir {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sortDir == Ascending {
		v.sortDir = Descending
	} else {
		v.sortDir = Ascending
	}
	return v.sortDir
}

// SortDir returns the current sort direction.
func (v *View) SortDir() SortDir {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sortDir
}

// Projection applies the composed sort and filters to the snapshot.
func (v *View) Projection(genre, query string) []model.WatchlistEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Project(v.entries, v.genres, v.sortDir, genre, query)
}

// Genres derives the available genre filter values from the snapshot.
func (v *View) Genres() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return AvailableGenres(v.entries, v.genres)
}

// Clear drops the snapshot. Called when the session leaves Authenticated; the
// view must not reach the store again until a new session loads it.
func (v *View) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = nil
	v.loaded = false
	v.sortDir = Unsorted
	v.userID = ""
}

func (v *View) writeMirror() {
	if v.mirror == nil {
		return
	}
	if err := v.mirror.Put(v.userID, v.entries); err != nil {
		log.Warn().Err(err).Str("user_id", v.userID).Msg("watchlist mirror write failed")
	}
}
