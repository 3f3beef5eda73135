// Package session holds the bearer token of the signed-in user and persists
// it between invocations of the CLI.
package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/keydesk/keydesk/api"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/model"
	"gopkg.in/yaml.v3"
)

// ErrNotAuthenticated is returned when no token is held.
var ErrNotAuthenticated = errors.New("no hay sesión activa")

// User is the identity decoded from the token.
type User struct {
	ID    string `yaml:"id"`
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
	Role  string `yaml:"role,omitempty"`
}

// Claims are the token claims keydesk cares about.
type Claims struct {
	User
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type file struct {
	Token string `yaml:"token"`
	User  *User  `yaml:"user,omitempty"`
}

// Poster sends a JSON POST. *api.Client implements it.
type Poster interface {
	Post(ctx context.Context, path string, payload any, response any) error
}

// Session is safe for concurrent use. It implements api.TokenSource.
type Session struct {
	mu    sync.RWMutex
	path  string
	token string
	user  *User
	now   func() time.Time
}

var _ api.TokenSource = (*Session)(nil)

// New returns an empty session persisted at path. An empty path keeps the
// session in memory only.
func New(path string) *Session {
	return &Session{path: path, now: time.Now}
}

// Load reads the session file at path if it exists.
func Load(path string) (*Session, error) {
	s := New(path)
	if path == "" {
		return s, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "error reading session file %s", path)
	}
	var f file
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return nil, errors.Wrapf(err, "error parsing session file %s", path)
	}
	s.token, s.user = f.Token, f.User
	return s, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// SetToken stores token, decodes the user from its claims and persists both.
func (s *Session) SetToken(token, fallbackEmail string) error {
	claims, err := parseClaims(token)
	if err != nil {
		return err
	}
	u := claims.User
	if u.Email == "" {
		u.Email = fallbackEmail
	}
	if u.Name == "" {
		u.Name = "User"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user = token, &u
	return s.saveLocked()
}

// Login exchanges credentials for a token via POST /auth/login.
func (s *Session) Login(ctx context.Context, client Poster, email, password string) error {
	if err := form.Signin.Validate(map[string]any{"email": email, "password": password}); err != nil {
		return err
	}
	var resp model.AuthResponse
	if err := client.Post(ctx, "/auth/login", model.Credentials{Email: email, Password: password}, &resp); err != nil {
		return api.Wrap(err, "Error al iniciar sesión")
	}
	if resp.Token == "" {
		return errors.New("el servidor no devolvió un token")
	}
	return s.SetToken(resp.Token, email)
}

// Logout forgets the token and removes the session file.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user = "", nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "error removing session file")
	}
	return nil
}

// User returns the signed-in user.
func (s *Session) User() (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.user == nil {
		return User{}, ErrNotAuthenticated
	}
	return *s.user, nil
}

// Claims decodes the held token. The signature is not verified; the backend
// does that on every request.
func (s *Session) Claims() (Claims, error) {
	token := s.Token()
	if token == "" {
		return Claims{}, ErrNotAuthenticated
	}
	return parseClaims(token)
}

// Expired reports whether the held token carries an expiry in the past.
func (s *Session) Expired() bool {
	c, err := s.Claims()
	if err != nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !s.now().Before(c.ExpiresAt)
}

// MaskedToken returns the token with all but its last four characters hidden.
func (s *Session) MaskedToken() string {
	return Mask(s.Token())
}

func Mask(token string) string {
	if token == "" {
		return "(empty)"
	}
	if len(token) <= 8 {
		return "********"
	}
	return "********" + token[len(token)-4:]
}

func (s *Session) saveLocked() error {
	if s.path == "" {
		return nil
	}
	buf, err := yaml.Marshal(file{Token: s.token, User: s.user})
	if err != nil {
		return errors.Wrap(err, "error encoding session")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "error creating session directory")
	}
	if err := os.WriteFile(s.path, buf, 0o600); err != nil {
		return errors.Wrap(err, "error writing session file")
	}
	return nil
}

func parseClaims(token string) (Claims, error) {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return Claims{}, errors.Wrap(err, "error decoding token")
	}
	id := tc.UserID
	if id == "" {
		id = tc.Subject
	}
	c := Claims{User: User{ID: id, Email: tc.Email, Name: tc.Name, Role: tc.Role}}
	if tc.IssuedAt != nil {
		c.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}
