// Package session holds the process-wide authentication state of the client.
//
// A Session is an immutable snapshot. The State replaces it wholesale on
// login and logout and tells subscribers about every change. Profile
// results are tagged with the generation they were requested for, so an
// answer that arrives after the session moved on is dropped.
package session

import (
	"sync"

	"github.com/aiwave/aiwave/pkg/domain"
)

// Phase is where the session is in its lifecycle.
type Phase int

const (
	// PhaseInitializing lasts until the token store has been read once.
	PhaseInitializing Phase = iota
	// PhaseAnonymous means no token.
	PhaseAnonymous
	// PhaseAuthenticated means a token is present; the user may still be
	// loading or unavailable.
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Session is one snapshot of the authentication state.
// User is non-nil only when Token is non-empty.
type Session struct {
	Token      string
	User       *domain.User
	Phase      Phase
	Generation uint64
	// ProfileFailed is set when the profile fetch for this generation
	// failed. The token is still considered valid.
	ProfileFailed bool
}

// Authenticated reports token presence; it does not require the user.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// ProfileLoading reports a token whose profile has neither arrived nor failed.
func (s Session) ProfileLoading() bool {
	return s.Token != "" && s.User == nil && !s.ProfileFailed
}

type subscriber struct {
	id uint64
	fn func(Session)
}

// State is the mutable holder of the current Session.
//
// Subscribers are called in order of change, one change at a time, and
// must not mutate the State from inside the callback.
type State struct {
	// emit serializes change plus notification so subscribers never see
	// snapshots out of order.
	emit    sync.Mutex
	mu      sync.Mutex
	current Session
	subs    []subscriber
	nextSub uint64
}

// NewState returns a State in PhaseInitializing.
func NewState() *State {
	return &State{current: Session{Phase: PhaseInitializing}}
}

// Snapshot returns the current session without blocking on I/O.
func (s *State) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers fn to receive every new snapshot. The returned func
// removes the subscription.
func (s *State) Subscribe(fn func(Session)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Replace installs a new authenticated session for token and returns its
// generation. Any user from the previous session is dropped.
func (s *State) Replace(token string) uint64 {
	return s.swap(func(prev Session) Session {
		return Session{Token: token, Phase: PhaseAuthenticated, Generation: prev.Generation + 1}
	})
}

// Reset installs an empty anonymous session and returns its generation.
func (s *State) Reset() uint64 {
	return s.swap(func(prev Session) Session {
		return Session{Phase: PhaseAnonymous, Generation: prev.Generation + 1}
	})
}

// Expire resets the session to anonymous only if gen is still current. It
// is how a rejected token ends its own session without touching a newer one.
func (s *State) Expire(gen uint64) bool {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	if s.current.Generation != gen || s.current.Token == "" {
		s.mu.Unlock()
		return false
	}
	s.current = Session{Phase: PhaseAnonymous, Generation: gen + 1}
	snap, subs := s.current, s.subscribers()
	s.mu.Unlock()

	notify(subs, snap)
	return true
}

// SetUser attaches user to the session of generation gen. It reports false,
// changing nothing, when that session has been replaced.
func (s *State) SetUser(gen uint64, user *domain.User) bool {
	return s.update(gen, func(cur *Session) {
		cur.User = user
		cur.ProfileFailed = false
	})
}

// SetProfileFailed marks the profile of generation gen as unavailable.
func (s *State) SetProfileFailed(gen uint64) bool {
	return s.update(gen, func(cur *Session) {
		cur.User = nil
		cur.ProfileFailed = true
	})
}

func (s *State) swap(next func(prev Session) Session) uint64 {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	s.current = next(s.current)
	snap, subs := s.current, s.subscribers()
	s.mu.Unlock()

	notify(subs, snap)
	return snap.Generation
}

func (s *State) update(gen uint64, apply func(*Session)) bool {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	if s.current.Generation != gen || s.current.Token == "" {
		s.mu.Unlock()
		return false
	}
	apply(&s.current)
	snap, subs := s.current, s.subscribers()
	s.mu.Unlock()

	notify(subs, snap)
	return true
}

// subscribers copies the callbacks; callers hold s.mu.
func (s *State) subscribers() []func(Session) {
	fns := make([]func(Session), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	return fns
}

func notify(fns []func(Session), snap Session) {
	for _, fn := range fns {
		fn(snap)
	}
}
