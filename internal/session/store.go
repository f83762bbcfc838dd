// Package session persists the signed-in principal and its token for the
// portal, and loads the live session the guards decide on.
package session

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"admissions/internal/model"
)

const contextKey = "portal.session"

// Store is the session store of one request. The authentication facade is its
// only writer; everything else reads.
type Store struct {
	medium Medium
}

// NewStore creates a store over m.
func NewStore(m Medium) *Store {
	return &Store{medium: m}
}

// Snapshot returns the persisted pair. See ReadSnapshot for error semantics.
func (s *Store) Snapshot() (model.Snapshot, error) {
	return ReadSnapshot(s.medium)
}

// User returns the persisted principal, or nil when missing or malformed.
func (s *Store) User() *model.Principal {
	snap, _ := s.Snapshot()
	return snap.Principal
}

// Token returns the persisted token or "".
func (s *Store) Token() string {
	token, _ := s.medium.Get(TokenKey)
	return token
}

// SetUser persists p and token together.
func (s *Store) SetUser(p *model.Principal, token string) error {
	if p == nil {
		return errors.New("session: nil principal")
	}
	if token == "" {
		return errors.New("session: empty token")
	}
	raw, err := EncodePrincipal(p)
	if err != nil {
		return fmt.Errorf("encode principal: %w", err)
	}
	s.medium.Set(UserKey, raw)
	s.medium.Set(TokenKey, token)
	return nil
}

// Clear removes both keys. Safe to call repeatedly.
func (s *Store) Clear() {
	s.medium.Delete(TokenKey)
	s.medium.Delete(UserKey)
}

// IsAuthenticated is true iff a non-empty token is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// HasRole is true iff a principal is present and holds role.
func (s *Store) HasRole(role model.RoleName) bool {
	return s.User().HasRole(role)
}

// Attach stores s on the echo context for downstream handlers.
func Attach(c echo.Context, s *Store) {
	c.Set(contextKey, s)
}

// FromContext returns the store attached to c, if any.
func FromContext(c echo.Context) (*Store, bool) {
	s, ok := c.Get(contextKey).(*Store)
	return s, ok
}
