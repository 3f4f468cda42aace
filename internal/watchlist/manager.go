package watchlist

import (
	"context"
	"sync"

	"reelist-server/internal/model"
	"reelist-server/internal/session"
	"reelist-server/pkg/tmdb"
)

// Manager materializes one View per session and keeps it subscribed to the
// session provider: when a session leaves Authenticated its view clears its
// snapshot and is dropped, so no further store operations can run on it.
type Manager struct {
	store  Store
	mirror Mirror
	genres *tmdb.GenreIndex

	mu    sync.Mutex
	views map[string]*View
}

func NewManager(store Store, mirror Mirror, genres *tmdb.GenreIndex) *Manager {
	return &Manager{store: store, mirror: mirror, genres: genres, views: make(map[string]*View)}
}

// ViewFor returns the view for the session, loading its snapshot on first
// use. The provider must be Authenticated; Unknown and Anonymous sessions are
// rejected before any store I/O.
func (m *Manager) ViewFor(ctx context.Context, jti string, p *session.Provider) (*View, error) {
	state, sess := p.Current()
	if state != session.Authenticated {
		return nil, model.ErrNoSession
	}

	m.mu.Lock()
	v, ok := m.views[jti]
	if !ok {
		v = NewView(m.store, m.mirror, m.genres, sess.UserID)
		m.views[jti] = v
	}
	m.mu.Unlock()
	if !ok {
		// Subscribe outside m.mu: the listener fires immediately with the
		// current state and may call back into drop.
		p.Subscribe(func(state session.State, _ model.Session) {
			if state != session.Authenticated {
				v.Clear()
				m.drop(jti)
			}
		})
	}

	if !v.Loaded() {
		if err := v.Load(ctx); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (m *Manager) drop(jti string) {
	m.mu.Lock()
	delete(m.views, jti)
	m.mu.Unlock()
}
