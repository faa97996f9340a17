package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Jirawatp058/random-buddy/internal/dependencies/clock"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

const defaultSessionDuration = 12 * time.Hour

// Session is an admin login. Token is what clients present afterwards.
type Session struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Config holds the shared admin password and how long a login lasts.
// An empty AdminPassword turns admin login off.
type Config struct {
	AdminPassword   string
	SessionDuration time.Duration
}

func DefaultConfig() Config {
	return Config{SessionDuration: defaultSessionDuration}
}

// Service checks the admin password and keeps the issued sessions in
// memory; a restart logs every admin out.
type Service struct {
	clock    clock.Clock
	digest   [sha256.Size]byte
	enabled  bool
	lifetime time.Duration

	mu       sync.Mutex
	sessions map[string]Session
}

func New(clk clock.Clock, cfg Config) *Service {
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = defaultSessionDuration
	}
	return &Service{
		clock:    clk,
		digest:   sha256.Sum256([]byte(cfg.AdminPassword)),
		enabled:  cfg.AdminPassword != "",
		lifetime: cfg.SessionDuration,
		sessions: make(map[string]Session),
	}
}

// CheckAdminPassword compares fixed-size digests so timing reveals
// neither content nor length of the configured password.
func (s *Service) CheckAdminPassword(password string) bool {
	got := sha256.Sum256([]byte(password))
	return s.enabled && subtle.ConstantTimeCompare(got[:], s.digest[:]) == 1
}

// AdminLogin starts a session when password is the admin password.
func (s *Service) AdminLogin(password string) (*Session, error) {
	if !s.CheckAdminPassword(password) {
		return nil, ErrInvalidCredentials
	}

	now := s.clock.Now()
	sess := Session{
		Token:     "sess_" + uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.lifetime),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()
	return &sess, nil
}

// ValidateSession returns the live session for token. An expired session
// is dropped on sight.
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrInvalidSession
	}
	if sess.Expired(s.clock.Now()) {
		delete(s.sessions, token)
		return nil, ErrInvalidSession
	}
	return &sess, nil
}

// InvalidateSession logs a session out. Unknown tokens are ignored.
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CleanExpiredSessions drops every expired session and returns how many
// went. The server calls it on a timer.
func (s *Service) CleanExpiredSessions() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.sessions)
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
		}
	}
	return before - len(s.sessions)
}
