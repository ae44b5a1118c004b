package sessions

import (
	"sync"

	"github.com/jrsteele09/go-admin-console/users"
)

// Phase is the coarse authentication state used for navigation decisions
type Phase string

const (
	PhaseLoading       Phase = "loading"
	PhaseAuthenticated Phase = "authenticated"
	PhaseAnonymous     Phase = "anonymous"
)

// State is the observable session. IsAuthenticated is set directly by login
// and refresh; it is never inferred from what happens to be in storage.
type State struct {
	User            *users.Profile
	IsAuthenticated bool
	IsLoading       bool
}

// Phase maps the state onto the gate's state machine
func (s State) Phase() Phase {
	switch {
	case s.IsLoading:
		return PhaseLoading
	case s.IsAuthenticated:
		return PhaseAuthenticated
	default:
		return PhaseAnonymous
	}
}

// Manager owns the session state for one process. It is created once and
// injected wherever the session is read or changed.
type Manager struct {
	mu     sync.RWMutex
	state  State
	subs   map[int]chan State
	nextID int
}

// NewManager returns a manager in the start-up state: loading, anonymous.
func NewManager() *Manager {
	return &Manager{
		state: State{IsLoading: true},
		subs:  make(map[int]chan State),
	}
}

// Snapshot returns a copy of the current state
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyState()
}

// Phase returns the current phase
func (m *Manager) Phase() Phase {
	return m.Snapshot().Phase()
}

// SetUser replaces the profile wholesale. A nil profile signs the session out.
func (m *Manager) SetUser(user *users.Profile) {
	m.update(func(s *State) {
		if user != nil {
			u := *user
			s.User = &u
		} else {
			s.User = nil
		}
		s.IsAuthenticated = user != nil
	})
}

// Authenticate marks the session as holding an accepted credential
func (m *Manager) Authenticate() {
	m.update(func(s *State) {
		s.IsAuthenticated = true
	})
}

// SetLoading sets the loading flag
func (m *Manager) SetLoading(loading bool) {
	m.update(func(s *State) {
		s.IsLoading = loading
	})
}

// Logout resets the session to logged-out defaults
func (m *Manager) Logout() {
	m.update(func(s *State) {
		*s = State{}
	})
}

// Subscribe returns a channel that receives the state after every change.
// Delivery is latest-wins: a slow subscriber only ever sees the most recent
// state. The returned function unsubscribes and closes the channel.
func (m *Manager) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
}

func (m *Manager) update(mutate func(*State)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mutate(&m.state)
	snapshot := m.copyState()
	for _, ch := range m.subs {
		publish(ch, snapshot)
	}
}

func (m *Manager) copyState() State {
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// publish replaces any undelivered state with the latest one
func publish(ch chan State, s State) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}
