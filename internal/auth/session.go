package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is an issued admin login
type Session struct {
	Token     string    `json:"-"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type sessionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]Session
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:   ttl,
		items: make(map[string]Session),
	}
}

func (s *sessionStore) create(username string, now time.Time) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(now)

	sess := Session{
		Token:     uuid.NewString(),
		Username:  username,
		ExpiresAt: now.Add(s.ttl),
	}
	s.items[sess.Token] = sess
	return sess
}

func (s *sessionStore) get(token string, now time.Time) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[token]
	if !ok {
		return Session{}, false
	}
	if now.After(v.ExpiresAt) {
		delete(s.items, token)
		return Session{}, false
	}
	return v, true
}

func (s *sessionStore) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *sessionStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.ExpiresAt) {
			delete(s.items, k)
		}
	}
}
