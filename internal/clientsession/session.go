// Package clientsession keeps a non-authoritative copy of a resolved identity
// for user interfaces. Server-side authorization never reads it: every
// request is still verified from its bearer credential.
package clientsession

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/newstrnt/admin-authz/internal/auth"
)

const (
	// DefaultLifetime applies to identities saved without an expiry.
	DefaultLifetime = 8 * time.Hour

	// DefaultIdleTimeout ends a session without activity.
	DefaultIdleTimeout = 30 * time.Minute

	keyPrefix = "client_session:"
)

var (
	// ErrNoSession is returned when nothing is stored under the key.
	ErrNoSession = errors.New("no client session")
	// ErrExpired is returned once the absolute expiry has passed.
	ErrExpired = errors.New("client session expired")
	// ErrIdle is returned when the idle timeout elapsed since the last activity.
	ErrIdle = errors.New("client session idle for too long")
	// ErrStorageNil is returned when the manager is built without storage.
	ErrStorageNil = errors.New("client session storage is nil")
	// ErrKeyEmpty is returned for an empty session key.
	ErrKeyEmpty = errors.New("client session key cannot be empty")
)

// Manager stores identity snapshots in a fiber.Storage.
type Manager struct {
	storage fiber.Storage
	idle    time.Duration
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdleTimeout overrides DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idle = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager returns a manager over storage.
func NewManager(storage fiber.Storage, opts ...Option) (*Manager, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	m := &Manager{
		storage: storage,
		idle:    DefaultIdleTimeout,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Save stores a copy of id under key and marks it active now. An identity
// without an expiry gets DefaultLifetime.
func (m *Manager) Save(key string, id *auth.Identity) (*auth.Identity, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}

	if id == nil {
		return nil, auth.ErrUnauthenticated
	}

	now := m.now()

	s := *id
	s.Permissions = append([]string(nil), id.Permissions...)
	s.LastActivityAt = now

	if s.IssuedAt.IsZero() {
		s.IssuedAt = now
	}

	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = now.Add(DefaultLifetime)
	}

	if !now.Before(s.ExpiresAt) {
		return nil, ErrExpired
	}

	if err := m.write(key, &s, now); err != nil {
		return nil, err
	}

	return &s, nil
}

// Current returns the stored identity and refreshes its last activity.
// Expired or idle sessions are removed.
func (m *Manager) Current(key string) (*auth.Identity, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}

	b, err := m.storage.Get(keyPrefix + key)
	if err != nil {
		return nil, fmt.Errorf("read client session: %w", err)
	}

	if len(b) == 0 {
		return nil, ErrNoSession
	}

	var s auth.Identity
	if err := json.Unmarshal(b, &s); err != nil {
		_ = m.storage.Delete(keyPrefix + key)

		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	now := m.now()

	switch {
	case now.After(s.ExpiresAt):
		_ = m.storage.Delete(keyPrefix + key)

		return nil, ErrExpired
	case now.Sub(s.LastActivityAt) > m.idle:
		_ = m.storage.Delete(keyPrefix + key)

		return nil, ErrIdle
	}

	s.LastActivityAt = now

	if err := m.write(key, &s, now); err != nil {
		return nil, err
	}

	return &s, nil
}

func (m *Manager) write(key string, s *auth.Identity, now time.Time) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode client session: %w", err)
	}

	if err := m.storage.Set(keyPrefix+key, b, s.ExpiresAt.Sub(now)); err != nil {
		return fmt.Errorf("write client session: %w", err)
	}

	return nil
}

// Can reports whether the current session holds tag.
func (m *Manager) Can(key, tag string) bool {
	s, err := m.Current(key)
	if err != nil {
		return false
	}

	return s.Super || s.Can(tag)
}

// CanAny reports whether the current session holds at least one of tags.
func (m *Manager) CanAny(key string, tags ...string) bool {
	s, err := m.Current(key)
	if err != nil {
		return false
	}

	return auth.RequireAnyPermission(s, tags...) == nil
}

// CanAll reports whether the current session holds every tag.
func (m *Manager) CanAll(key string, tags ...string) bool {
	s, err := m.Current(key)
	if err != nil {
		return false
	}

	for _, tag := range tags {
		if auth.RequirePermission(s, tag) != nil {
			return false
		}
	}

	return true
}

// AtLeast reports whether the current session is at level or above.
func (m *Manager) AtLeast(key string, level int) bool {
	s, err := m.Current(key)
	if err != nil {
		return false
	}

	return auth.RequireMinLevel(s, level) == nil
}

// Logout removes the session.
func (m *Manager) Logout(key string) error {
	if key == "" {
		return ErrKeyEmpty
	}

	if err := m.storage.Delete(keyPrefix + key); err != nil {
		return fmt.Errorf("delete client session: %w", err)
	}

	return nil
}
