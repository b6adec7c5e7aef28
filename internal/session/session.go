// Package session holds the logged-in identity for a client session,
// persisted to disk between runs the way a browser keeps it in local
// storage. Authorization itself lives server-side in the signed token;
// the role here only drives what the client shows.
package session

import (
	"encoding/json"
	"os"

	"maison/internal/models"
)

// Identity is the stored login record: the account fields returned by
// the login endpoint plus the session token.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// Session is the client-side auth state.
type Session struct {
	path    string
	current *Identity
}

// Open hydrates a session from path. Malformed stored data is discarded
// silently and the session starts logged out.
func Open(path string) *Session {
	s := &Session{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil || id.Email == "" {
		_ = os.Remove(path)
		return s
	}
	s.current = &id
	return s
}

// Login stores the identity in memory and on disk.
func (s *Session) Login(id Identity) error {
	s.current = &id
	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// Logout clears the identity from memory and disk.
func (s *Session) Logout() error {
	s.current = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Current returns the logged-in identity, or nil.
func (s *Session) Current() *Identity { return s.current }

// IsLoggedIn reports whether an identity is present.
func (s *Session) IsLoggedIn() bool { return s.current != nil }

// IsAdmin reports whether the stored identity carries the admin role.
func (s *Session) IsAdmin() bool {
	return s.current != nil && s.current.Role == models.RoleAdmin
}
