package mirror

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"reelist-server/internal/model"
)

const keyPrefix = "watchlist:"

// Badger keeps a local durable copy of each user's watchlist under a single
// key. It is written through on every change and read back as a fallback
// when the remote store cannot be reached.
type Badger struct {
	db *badger.DB
}

// Open creates or opens the mirror at path. An empty path selects an
// in-memory database, useful for tests and for running without a data dir.
func Open(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open mirror: %w", err)
	}
	return &Badger{db: db}, nil
}

// Put replaces the mirrored snapshot for the user.
func (b *Badger) Put(userID string, entries []model.WatchlistEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal mirror entry: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+userID), data)
	})
}

// Get returns the mirrored snapshot for the user, if one was ever written.
func (b *Badger) Get(userID string) ([]model.WatchlistEntry, bool) {
	var entries []model.WatchlistEntry
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entries)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	return entries, true
}

// Delete drops the mirrored snapshot for the user.
func (b *Badger) Delete(userID string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + userID))
	})
}

// Close flushes and closes the underlying database.
func (b *Badger) Close() error { return b.db.Close() }
