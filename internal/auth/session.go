package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is a logged-in dashboard user.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore keeps bearer tokens in memory until they expire or are revoked.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store whose sessions live for ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create mints a session for email.
func (s *SessionStore) Create(email string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := Session{
		Token:     uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.sessions[sess.Token] = sess
	return sess
}

// Lookup returns the live session for token. Expired sessions are dropped.
func (s *SessionStore) Lookup(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, false
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		return Session{}, false
	}
	return sess, true
}

// Revoke removes token and returns the session it named.
func (s *SessionStore) Revoke(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	delete(s.sessions, token)
	return sess, ok
}

// Len prunes expired sessions and returns how many remain.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
	return len(s.sessions)
}
