package auth

import (
	"errors"
	"strings"
	"sync"
)

// ErrInvalidCredentials is returned when no credential matches on login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserExists is returned when a registration email is already taken.
var ErrUserExists = errors.New("user already exists")

// builtinUsers is the fixed demo credential table checked before the
// volatile registry. Plain-text by design of the mock; not a security
// boundary.
var builtinUsers = map[string]string{
	"admin@smartattend.ai":      "admin123",
	"instructor@smartattend.ai": "instructor123",
	"student@smartattend.ai":    "student123",
}

type registeredUser struct {
	name     string
	password string
}

// Store holds the mock credentials: the fixed built-in table plus a
// process-lifetime registry of signups. The registry is guarded so
// simultaneous registrations of one email cannot both succeed.
type Store struct {
	mu         sync.Mutex
	registered map[string]registeredUser
}

// NewStore creates an empty registry over the built-in table.
func NewStore() *Store {
	return &Store{registered: make(map[string]registeredUser)}
}

// Login checks the built-in table first, then the registry. On success it
// returns the user's display name.
func (s *Store) Login(email, password string) (string, error) {
	if pw, ok := builtinUsers[email]; ok && pw == password {
		return DisplayName(email), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.registered[email]; ok && u.password == password {
		return u.name, nil
	}
	return "", ErrInvalidCredentials
}

// Register stores a new credential in the volatile registry. An email already
// present in either table is rejected.
func (s *Store) Register(name, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := builtinUsers[email]; ok {
		return ErrUserExists
	}
	if _, ok := s.registered[email]; ok {
		return ErrUserExists
	}
	s.registered[email] = registeredUser{name: name, password: password}
	return nil
}

// DisplayName derives a name from an email: the local part, capitalized.
func DisplayName(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	if local == "" {
		return ""
	}
	return strings.ToUpper(local[:1]) + local[1:]
}
