package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials means the username or password did not match
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRateLimited means the client exceeded its login budget
	ErrRateLimited = errors.New("too many login attempts")
)

// Viewer roles
const (
	RoleAdmin      = "admin"
	RoleRestricted = "restricted"
)

// Defaults for the single admin credential
const (
	DefaultUsername   = "Admin"
	DefaultPassword   = "Admin@123"
	DefaultSessionTTL = 12 * time.Hour
	DefaultLoginRate  = 10 // attempts per minute per client
)

// Options configures the Manager
type Options struct {
	Username           string
	Password           string // plain password; hashed at startup, ignored when PasswordHash is set
	PasswordHash       string // bcrypt hash
	SessionTTL         time.Duration
	LoginRatePerMinute int
	BcryptCost         int // 0 means bcrypt.DefaultCost
}

// Manager checks the admin credential and tracks sessions in memory.
type Manager struct {
	username string
	hash     []byte
	sessions *sessionStore
	limiter  *loginLimiter
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager builds a Manager, hashing the plain password when no hash is set
func NewManager(opts Options, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Username == "" {
		opts.Username = DefaultUsername
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.LoginRatePerMinute == 0 {
		opts.LoginRatePerMinute = DefaultLoginRate
	}

	hash := []byte(opts.PasswordHash)
	if len(hash) == 0 {
		password := opts.Password
		if password == "" {
			password = DefaultPassword
		}
		var err error
		hash, err = HashPassword(password, opts.BcryptCost)
		if err != nil {
			return nil, err
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}

	return &Manager{
		username: opts.Username,
		hash:     hash,
		sessions: newSessionStore(opts.SessionTTL),
		limiter:  newLoginLimiter(opts.LoginRatePerMinute),
		logger:   logger,
		now:      time.Now,
	}, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) ([]byte, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// Login checks the credential and opens a session. clientIP keys the rate limiter.
func (m *Manager) Login(clientIP, username, password string) (Session, error) {
	if !m.limiter.allow(clientIP, m.now()) {
		m.logger.Warn("login rate limited", zap.String("client_ip", clientIP))
		return Session{}, ErrRateLimited
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(m.hash, []byte(password))
	if !userOK || passErr != nil {
		m.logger.Info("login rejected", zap.String("client_ip", clientIP))
		return Session{}, ErrInvalidCredentials
	}

	s := m.sessions.create(username, m.now())
	m.logger.Info("admin login", zap.String("client_ip", clientIP))
	return s, nil
}

// Logout drops the session; unknown tokens are ignored.
func (m *Manager) Logout(token string) {
	m.sessions.delete(token)
}

// Validate returns the live session for token.
func (m *Manager) Validate(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	return m.sessions.get(token, m.now())
}

// SessionTTL is the lifetime of new sessions.
func (m *Manager) SessionTTL() time.Duration {
	return m.sessions.ttl
}
