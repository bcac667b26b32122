package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jikulumessu/api/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memorySessionStore is an in-memory SessionStore for tests.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]*models.Session)}
}

func (s *memorySessionStore) Create(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *memorySessionStore) Get(ctx context.Context, token string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, models.ErrNotFound
	}
	dup := *session
	return &dup, nil
}

func (s *memorySessionStore) Delete(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return false, nil
	}
	delete(s.sessions, token)
	return true, nil
}

func (s *memorySessionStore) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for token, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

func (s *memorySessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type staticUserDirectory struct {
	users map[string]*models.User
}

func (d *staticUserDirectory) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := d.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return user, nil
}

func activeUser(id string) *models.User {
	return &models.User{ID: id, FirstName: "Ana", LastName: "Paula", Role: models.RoleUser, Status: models.StatusActive}
}

func newTestSessionManager(ttl time.Duration, users ...*models.User) (*SessionManager, *memorySessionStore) {
	store := newMemorySessionStore()
	dir := &staticUserDirectory{users: make(map[string]*models.User)}
	for _, u := range users {
		dir.users[u.ID] = u
	}
	return NewSessionManager(store, dir, ttl, testLogger()), store
}

func TestSessionManager_CreateAndValidate(t *testing.T) {
	sm, _ := newTestSessionManager(time.Hour, activeUser("user1"))

	token, err := sm.Create(context.Background(), "user1")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	user, err := sm.Validate(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, "user1", user.ID)
}

func TestSessionManager_TokensAreUnique(t *testing.T) {
	sm, _ := newTestSessionManager(time.Hour, activeUser("user1"))

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := sm.Create(context.Background(), "user1")
		assert.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}

func TestSessionManager_EmptyTokenRejected(t *testing.T) {
	sm, _ := newTestSessionManager(time.Hour, activeUser("user1"))

	_, err := sm.Validate(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSessionManager_UnknownTokenRejected(t *testing.T) {
	sm, _ := newTestSessionManager(time.Hour, activeUser("user1"))

	_, err := sm.Validate(context.Background(), "forged-token")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSessionManager_ExpiredTokenRejectedAndReclaimed(t *testing.T) {
	sm, store := newTestSessionManager(-time.Minute, activeUser("user1"))

	token, err := sm.Create(context.Background(), "user1")
	assert.NoError(t, err)
	assert.Equal(t, 1, store.count())

	_, err = sm.Validate(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Equal(t, 0, store.count())
}

func TestSessionManager_DeletedUserRejected(t *testing.T) {
	sm, _ := newTestSessionManager(time.Hour, activeUser("user1"))

	token, err := sm.Create(context.Background(), "user1")
	assert.NoError(t, err)

	// Simulate account deletion after the session was issued.
	sm.users.(*staticUserDirectory).users = map[string]*models.User{}

	_, err = sm.Validate(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSessionManager_SuspendedUserStillResolves(t *testing.T) {
	// Status gating happens per endpoint, not in session validation.
	suspended := activeUser("user1")
	suspended.Status = models.StatusSuspended
	sm, _ := newTestSessionManager(time.Hour, suspended)

	token, err := sm.Create(context.Background(), "user1")
	assert.NoError(t, err)

	user, err := sm.Validate(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, user.Status)
}

func TestSessionManager_NoSlidingRenewal(t *testing.T) {
	sm, store := newTestSessionManager(time.Hour, activeUser("user1"))

	token, err := sm.Create(context.Background(), "user1")
	assert.NoError(t, err)

	before, err := store.Get(context.Background(), token)
	assert.NoError(t, err)

	_, err = sm.Validate(context.Background(), token)
	assert.NoError(t, err)

	after, err := store.Get(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, before.ExpiresAt, after.ExpiresAt)
}

func TestSessionManager_DestroyIsIdempotent(t *testing.T) {
	sm, _ := newTestSessionManager(time.Hour, activeUser("user1"))

	token, err := sm.Create(context.Background(), "user1")
	assert.NoError(t, err)

	removed, err := sm.Destroy(context.Background(), token)
	assert.NoError(t, err)
	assert.True(t, removed)

	removed, err = sm.Destroy(context.Background(), token)
	assert.NoError(t, err)
	assert.False(t, removed)

	_, err = sm.Validate(context.Background(), token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSessionManager_DestroyAllForUser(t *testing.T) {
	sm, store := newTestSessionManager(time.Hour, activeUser("user1"), activeUser("user2"))

	t1, _ := sm.Create(context.Background(), "user1")
	t2, _ := sm.Create(context.Background(), "user1")
	t3, _ := sm.Create(context.Background(), "user2")

	err := sm.DestroyAllForUser(context.Background(), "user1")
	assert.NoError(t, err)

	_, err = sm.Validate(context.Background(), t1)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	_, err = sm.Validate(context.Background(), t2)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	user, err := sm.Validate(context.Background(), t3)
	assert.NoError(t, err)
	assert.Equal(t, "user2", user.ID)
	assert.Equal(t, 1, store.count())
}
