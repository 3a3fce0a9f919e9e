// Package session tracks who is signed in and their profile. A Store follows
// the auth client's event stream for its whole lifetime.
package session

import (
	"context"
	"sync"
	"time"

	"storynest/pkg/client"
	"storynest/pkg/logger"
)

const resolveTimeout = 15 * time.Second

// AuthClient is the part of the SDK the store depends on.
type AuthClient interface {
	GetSession(ctx context.Context) (*client.Session, error)
	OnAuthStateChange(fn client.AuthListener) *client.Subscription
}

// ProfileResolver returns the profile for a session, creating the default
// one if it is missing.
type ProfileResolver interface {
	ProfileForSession(ctx context.Context, s *client.Session) (*client.Profile, error)
}

// State is an immutable snapshot of the store.
type State struct {
	User    *client.User
	Session *client.Session
	Profile *client.Profile
	Loading bool
}

func (s State) SignedIn() bool {
	return s.Session != nil
}

type Store struct {
	auth     AuthClient
	profiles ProfileResolver
	logger   *logger.Logger

	mu       sync.Mutex
	state    State
	gen      uint64
	sub      *client.Subscription
	watchers map[int]func(State)
	nextID   int
	closed   bool

	wg sync.WaitGroup
}

func NewStore(auth AuthClient, profiles ProfileResolver, log *logger.Logger) *Store {
	return &Store{
		auth:     auth,
		profiles: profiles,
		logger:   log,
		state:    State{Loading: true},
		watchers: make(map[int]func(State)),
	}
}

// Initialize loads the current session and starts following auth events.
// Profile failures are logged and leave the profile empty. Calling it again
// reloads the session without registering a second listener.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.sub == nil {
		s.sub = s.auth.OnAuthStateChange(s.listen)
	}
	s.mu.Unlock()

	session, err := s.auth.GetSession(ctx)
	if err != nil {
		s.logger.Warn("Failed to load session: %v", err)
		session = nil
	}
	s.OnSessionChange(ctx, client.EventSignedIn, session)
}

func (s *Store) listen(event client.AuthEvent, session *client.Session) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	// Events arrive in order; the generation is taken before resolving so the
	// latest event wins even if an older resolution finishes after it.
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()
		s.apply(ctx, gen, event, session)
	}()
}

// OnSessionChange applies an auth event. When several changes overlap, the
// one that started last wins and earlier results are discarded. Changes
// after Close are ignored.
func (s *Store) OnSessionChange(ctx context.Context, event client.AuthEvent, session *client.Session) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.apply(ctx, gen, event, session)
}

func (s *Store) apply(ctx context.Context, gen uint64, event client.AuthEvent, session *client.Session) {
	if session == nil {
		s.commit(gen, State{})
		return
	}

	s.update(gen, func(st *State) {
		st.Session = session
		st.User = &session.User
		st.Loading = true
		if st.Profile != nil && st.Profile.ID != session.User.ID {
			st.Profile = nil
		}
	})

	profile := session.Profile
	if profile == nil {
		var err error
		profile, err = s.profiles.ProfileForSession(ctx, session)
		if err != nil {
			s.logger.Warn("Failed to resolve profile for %s after %s: %v", session.User.ID, event, err)
			profile = nil
		}
	}

	s.commit(gen, State{
		User:    &session.User,
		Session: session,
		Profile: profile,
	})
}

func (s *Store) update(gen uint64, fn func(*State)) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	next := s.state
	fn(&next)
	s.state = next
	watchers := s.watchersLocked()
	s.mu.Unlock()

	notify(watchers, next)
}

func (s *Store) commit(gen uint64, st State) {
	s.update(gen, func(cur *State) { *cur = st })
}

func (s *Store) watchersLocked() []func(State) {
	out := make([]func(State), 0, len(s.watchers))
	for _, fn := range s.watchers {
		out = append(out, fn)
	}
	return out
}

func notify(watchers []func(State), st State) {
	for _, fn := range watchers {
		fn(st)
	}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Watch calls fn with every new state. The returned func stops it.
func (s *Store) Watch(fn func(State)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// Close releases the auth subscription and waits for in-flight profile
// resolutions. It is safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sub := s.sub
	s.sub = nil
	s.watchers = make(map[int]func(State))
	s.mu.Unlock()

	sub.Unsubscribe()
	s.wg.Wait()
}
