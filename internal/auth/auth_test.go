package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	opts.BcryptCost = bcrypt.MinCost
	m, err := NewManager(opts, nil)
	require.NoError(t, err)
	return m
}

func TestLogin_DefaultCredential(t *testing.T) {
	m := newTestManager(t, Options{})

	s, err := m.Login("10.0.0.1", "Admin", "Admin@123")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "Admin", s.Username)

	got, ok := m.Validate(s.Token)
	require.True(t, ok)
	assert.Equal(t, s.Token, got.Token)
}

func TestLogin_Rejects(t *testing.T) {
	m := newTestManager(t, Options{})

	cases := []struct{ user, pass string }{
		{"Admin", "admin@123"},
		{"admin", "Admin@123"},
		{"", ""},
	}
	for _, tc := range cases {
		_, err := m.Login("10.0.0.1", tc.user, tc.pass)
		assert.True(t, errors.Is(err, ErrInvalidCredentials), "user=%q pass=%q", tc.user, tc.pass)
	}
	_, ok := m.Validate("")
	assert.False(t, ok)
	_, ok = m.Validate("unknown")
	assert.False(t, ok)
}

func TestLogin_ConfiguredHash(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	m := newTestManager(t, Options{Username: "boss", PasswordHash: string(hash), Password: "ignored"})
	_, err = m.Login("ip", "boss", "s3cret")
	require.NoError(t, err)
	_, err = m.Login("ip", "boss", "ignored")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewManager_InvalidHash(t *testing.T) {
	_, err := NewManager(Options{PasswordHash: "not-bcrypt"}, nil)
	require.Error(t, err)
}

func TestLogout(t *testing.T) {
	m := newTestManager(t, Options{})
	s, err := m.Login("ip", DefaultUsername, DefaultPassword)
	require.NoError(t, err)

	m.Logout(s.Token)
	_, ok := m.Validate(s.Token)
	assert.False(t, ok)
	m.Logout("never-issued")
}

func TestSession_Expires(t *testing.T) {
	m := newTestManager(t, Options{SessionTTL: time.Minute})
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	s, err := m.Login("ip", DefaultUsername, DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), s.ExpiresAt)

	now = now.Add(59 * time.Second)
	_, ok := m.Validate(s.Token)
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = m.Validate(s.Token)
	assert.False(t, ok)
	assert.Equal(t, 0, m.sessions.len())
}

func TestLogin_RateLimitedPerClient(t *testing.T) {
	m := newTestManager(t, Options{LoginRatePerMinute: 2})
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_, err := m.Login("1.1.1.1", "Admin", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := m.Login("1.1.1.1", "Admin", "Admin@123")
	assert.ErrorIs(t, err, ErrRateLimited)

	// other clients keep their own budget
	_, err = m.Login("2.2.2.2", "Admin", "Admin@123")
	assert.NoError(t, err)

	now = now.Add(31 * time.Second)
	_, err = m.Login("1.1.1.1", "Admin", "Admin@123")
	assert.NoError(t, err)
}

func TestLogin_NegativeRateDisablesLimit(t *testing.T) {
	m := newTestManager(t, Options{LoginRatePerMinute: -1})
	for i := 0; i < 50; i++ {
		_, err := m.Login("ip", "Admin", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
}
