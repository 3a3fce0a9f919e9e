package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storynest/pkg/client"
	"storynest/pkg/logger"
	"storynest/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	mu         sync.Mutex
	session    *client.Session
	err        error
	listeners  map[int]client.AuthListener
	nextID     int
	subscribeN int
}

func newFakeAuth(session *client.Session) *fakeAuth {
	return &fakeAuth{session: session, listeners: make(map[int]client.AuthListener)}
}

func (f *fakeAuth) GetSession(ctx context.Context) (*client.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.err
}

func (f *fakeAuth) OnAuthStateChange(fn client.AuthListener) *client.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.subscribeN++
	id := f.nextID
	f.listeners[id] = fn
	return client.NewSubscription(func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	})
}

func (f *fakeAuth) emit(event client.AuthEvent, s *client.Session) {
	f.mu.Lock()
	listeners := make([]client.AuthListener, 0, len(f.listeners))
	for _, fn := range f.listeners {
		listeners = append(listeners, fn)
	}
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(event, s)
	}
}

func (f *fakeAuth) listenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

type MockProfileResolver struct {
	mock.Mock
}

func (m *MockProfileResolver) ProfileForSession(ctx context.Context, s *client.Session) (*client.Profile, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Profile), args.Error(1)
}

var _ ProfileResolver = (*MockProfileResolver)(nil)
var _ AuthClient = (*client.Client)(nil)
var _ ProfileResolver = (*client.Client)(nil)

func sessionFor(userID string) *client.Session {
	return &client.Session{
		AccessToken: "access-" + userID,
		User:        client.User{ID: userID, Email: userID + "@example.com"},
	}
}

func profileFor(userID string) *client.Profile {
	return &client.Profile{ID: userID, Name: userID, UserType: models.UserTypeChild}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestInitialize_NoSession(t *testing.T) {
	auth := newFakeAuth(nil)
	profiles := new(MockProfileResolver)
	store := NewStore(auth, profiles, logger.New())
	defer store.Close()

	assert.True(t, store.Snapshot().Loading)
	store.Initialize(context.Background())

	st := store.Snapshot()
	assert.False(t, st.Loading)
	assert.False(t, st.SignedIn())
	assert.Nil(t, st.Profile)
	profiles.AssertNotCalled(t, "ProfileForSession", mock.Anything, mock.Anything)
}

func TestInitialize_ResolvesProfile(t *testing.T) {
	session := sessionFor("u1")
	auth := newFakeAuth(session)
	profiles := new(MockProfileResolver)
	profiles.On("ProfileForSession", mock.Anything, session).Return(profileFor("u1"), nil)

	store := NewStore(auth, profiles, logger.New())
	defer store.Close()
	store.Initialize(context.Background())

	st := store.Snapshot()
	require.NotNil(t, st.Profile)
	assert.Equal(t, "u1", st.Profile.ID)
	assert.Equal(t, models.UserTypeChild, st.Profile.UserType)
	assert.Equal(t, "u1", st.User.ID)
	profiles.AssertExpectations(t)
}

func TestInitialize_FailsOpenOnProfileError(t *testing.T) {
	session := sessionFor("u1")
	auth := newFakeAuth(session)
	profiles := new(MockProfileResolver)
	profiles.On("ProfileForSession", mock.Anything, session).Return(nil, errors.New("boom"))

	store := NewStore(auth, profiles, logger.New())
	defer store.Close()
	store.Initialize(context.Background())

	st := store.Snapshot()
	assert.True(t, st.SignedIn())
	assert.Nil(t, st.Profile)
	assert.False(t, st.Loading)
}

func TestInitialize_FailsOpenOnSessionError(t *testing.T) {
	auth := newFakeAuth(nil)
	auth.err = errors.New("offline")
	store := NewStore(auth, new(MockProfileResolver), logger.New())
	defer store.Close()

	store.Initialize(context.Background())
	assert.False(t, store.Snapshot().SignedIn())
	assert.False(t, store.Snapshot().Loading)
}

func TestInitialize_RegistersOneListener(t *testing.T) {
	auth := newFakeAuth(nil)
	store := NewStore(auth, new(MockProfileResolver), logger.New())

	store.Initialize(context.Background())
	store.Initialize(context.Background())
	assert.Equal(t, 1, auth.subscribeN)
	assert.Equal(t, 1, auth.listenerCount())

	store.Close()
	store.Close()
	assert.Equal(t, 0, auth.listenerCount())
}

func TestAuthEvents_SignInThenSignOut(t *testing.T) {
	auth := newFakeAuth(nil)
	profiles := new(MockProfileResolver)
	session := sessionFor("u1")
	profiles.On("ProfileForSession", mock.Anything, session).Return(profileFor("u1"), nil)

	store := NewStore(auth, profiles, logger.New())
	defer store.Close()
	store.Initialize(context.Background())

	auth.emit(client.EventSignedIn, session)
	waitFor(t, func() bool { return store.Snapshot().Profile != nil })

	auth.emit(client.EventSignedOut, nil)
	waitFor(t, func() bool { return !store.Snapshot().SignedIn() })
	assert.Nil(t, store.Snapshot().Profile)
}

func TestOnSessionChange_LastEventWins(t *testing.T) {
	auth := newFakeAuth(nil)
	profiles := new(MockProfileResolver)

	slow := sessionFor("slow")
	fast := sessionFor("fast")
	release := make(chan time.Time)
	profiles.On("ProfileForSession", mock.Anything, slow).
		WaitUntil(release).
		Return(profileFor("slow"), nil)
	profiles.On("ProfileForSession", mock.Anything, fast).Return(profileFor("fast"), nil)

	store := NewStore(auth, profiles, logger.New())
	defer store.Close()
	store.Initialize(context.Background())

	auth.emit(client.EventSignedIn, slow)
	auth.emit(client.EventSignedIn, fast)
	waitFor(t, func() bool {
		p := store.Snapshot().Profile
		return p != nil && p.ID == "fast"
	})

	close(release)
	store.Close()

	st := store.Snapshot()
	require.NotNil(t, st.Profile)
	assert.Equal(t, "fast", st.Profile.ID)
	assert.Equal(t, "fast", st.User.ID)
}

func TestOnSessionChange_UsesEmbeddedProfile(t *testing.T) {
	store := NewStore(newFakeAuth(nil), new(MockProfileResolver), logger.New())
	defer store.Close()

	session := sessionFor("u1")
	session.Profile = profileFor("u1")
	store.OnSessionChange(context.Background(), client.EventSignedIn, session)

	assert.Equal(t, "u1", store.Snapshot().Profile.ID)
}

func TestOnSessionChange_IgnoredAfterClose(t *testing.T) {
	store := NewStore(newFakeAuth(nil), new(MockProfileResolver), logger.New())
	store.Close()

	session := sessionFor("u1")
	session.Profile = profileFor("u1")
	store.OnSessionChange(context.Background(), client.EventSignedIn, session)

	st := store.Snapshot()
	assert.False(t, st.SignedIn())
	assert.Nil(t, st.Profile)
}

func TestWatch(t *testing.T) {
	store := NewStore(newFakeAuth(nil), new(MockProfileResolver), logger.New())
	defer store.Close()

	var states []State
	stop := store.Watch(func(st State) { states = append(states, st) })

	session := sessionFor("u1")
	session.Profile = profileFor("u1")
	store.OnSessionChange(context.Background(), client.EventSignedIn, session)
	stop()
	store.OnSessionChange(context.Background(), client.EventSignedOut, nil)

	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].Loading)
	assert.Equal(t, "u1", states[1].Profile.ID)
}

func TestClose_IgnoresLateEvents(t *testing.T) {
	auth := newFakeAuth(nil)
	profiles := new(MockProfileResolver)
	store := NewStore(auth, profiles, logger.New())
	store.Initialize(context.Background())

	listener := auth.listeners[1]
	store.Close()

	listener(client.EventSignedIn, sessionFor("u1"))
	assert.False(t, store.Snapshot().SignedIn())
	profiles.AssertNotCalled(t, "ProfileForSession", mock.Anything, mock.Anything)
}
