package session

import (
	"testing"

	"reelist-server/internal/model"
)

type transition struct {
	state State
	sess  model.Session
}

func record(log *[]transition) Listener {
	return func(state State, sess model.Session) {
		*log = append(*log, transition{state, sess})
	}
}

func TestProviderStartsUnknown(t *testing.T) {
	p := NewProvider()
	state, sess := p.Current()
	if state != Unknown {
		t.Fatalf("state = %v, want Unknown", state)
	}
	if sess != (model.Session{}) {
		t.Fatalf("session should be zero before resolution: %+v", sess)
	}
}

func TestProviderSubscribeSeesCurrentValue(t *testing.T) {
	p := NewProvider()
	p.ResolveAuthenticated(model.Session{UserID: "u1", DisplayName: "Ada"})

	var log []transition
	p.Subscribe(record(&log))

	if len(log) != 1 {
		t.Fatalf("late subscriber must be invoked immediately, got %d calls", len(log))
	}
	if log[0].state != Authenticated || log[0].sess.UserID != "u1" {
		t.Fatalf("subscriber saw %+v", log[0])
	}
}

func TestProviderTransitionOrder(t *testing.T) {
	p := NewProvider()
	var log []transition
	p.Subscribe(record(&log))

	p.ResolveAuthenticated(model.Session{UserID: "u1"})
	p.Logout()

	want := []State{Unknown, Authenticated, Anonymous}
	if len(log) != len(want) {
		t.Fatalf("got %d transitions, want %d", len(log), len(want))
	}
	for i, s := range want {
		if log[i].state != s {
			t.Fatalf("transition %d = %v, want %v", i, log[i].state, s)
		}
	}
	if log[2].sess != (model.Session{}) {
		t.Fatalf("logout must drop the session value: %+v", log[2].sess)
	}
}

func TestProviderDedupesIdenticalTransitions(t *testing.T) {
	p := NewProvider()
	p.ResolveAnonymous()

	var log []transition
	p.Subscribe(record(&log))

	p.ResolveAnonymous()
	p.Logout()

	if len(log) != 1 {
		t.Fatalf("repeated identical transitions must not notify, got %d calls", len(log))
	}
}

func TestSessionAuthenticated(t *testing.T) {
	if (model.Session{}).Authenticated() {
		t.Fatal("zero session must not report authenticated")
	}
	if !(model.Session{UserID: "u1"}).Authenticated() {
		t.Fatal("session with a user id must report authenticated")
	}
}
