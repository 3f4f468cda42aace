package session

import (
	"sync"

	"reelist-server/internal/model"
)

// State of one client session.
type State int

const (
	// Unknown is the initial state: the session has not been resolved yet.
	// Session-dependent work must not run while here.
	Unknown State = iota
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Listener receives every state transition, in order.
type Listener func(state State, sess model.Session)

// Provider owns one session value and its lifecycle:
// Unknown -> Anonymous | Authenticated, Authenticated -> Anonymous on logout.
// It is the single writer; dependents subscribe and always observe the latest
// value after a transition.
type Provider struct {
	mu        sync.Mutex
	state     State
	sess      model.Session
	listeners []Listener
}

func NewProvider() *Provider { return &Provider{state: Unknown} }

// Current returns the state and session value as of now.
func (p *Provider) Current() (State, model.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.sess
}

// Subscribe registers a listener. It is invoked immediately with the current
// state so a late subscriber never misses the latest value, then on every
// transition.
func (p *Provider) Subscribe(l Listener) {
	p.mu.Lock()
	p.listeners = append(p.listeners, l)
	state, sess := p.state, p.sess
	p.mu.Unlock()
	l(state, sess)
}

// ResolveAuthenticated moves the provider out of Unknown into Authenticated.
func (p *Provider) ResolveAuthenticated(sess model.Session) {
	p.transition(Authenticated, sess)
}

// ResolveAnonymous moves the provider out of Unknown into Anonymous.
func (p *Provider) ResolveAnonymous() {
	p.transition(Anonymous, model.Session{})
}

// Logout forces the session to Anonymous from any state.
func (p *Provider) Logout() {
	p.transition(Anonymous, model.Session{})
}

func (p *Provider) transition(state State, sess model.Session) {
	p.mu.Lock()
	if p.state == state && p.sess == sess {
		p.mu.Unlock()
		return
	}
	p.state = state
	p.sess = sess
	listeners := make([]Listener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()
	for _, l := range listeners {
		l(state, sess)
	}
}
