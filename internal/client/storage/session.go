package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrSessionChanged is returned by Update when the slot no longer holds the
// session the caller started from.
var ErrSessionChanged = errors.New("session changed")

// SessionStore owns the session slot. Every read and write goes through mu,
// so a compare-and-write from one caller cannot interleave with another
// caller's logout.
type SessionStore struct {
	backend Backend
	log     *zap.Logger

	mu sync.Mutex
}

// NewSessionStore returns a store over backend. A nil logger disables logging.
func NewSessionStore(backend Backend, log *zap.Logger) *SessionStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionStore{backend: backend, log: log}
}

// Get returns the current session. It never fails: an empty slot, a backend
// error and corrupt data all read as absent. Corrupt or tokenless records are
// removed so the next read does not hit them again.
func (s *SessionStore) Get(ctx context.Context) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(ctx)
}

func (s *SessionStore) get(ctx context.Context) (Session, bool) {
	data, err := s.backend.Load(ctx, SessionSlot)
	if errors.Is(err, ErrNotFound) {
		return Session{}, false
	}
	if errors.Is(err, ErrCorrupt) {
		s.heal(ctx, err)
		return Session{}, false
	}
	if err != nil {
		s.log.Warn("failed to read session", zap.Error(err))
		return Session{}, false
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.heal(ctx, fmt.Errorf("%w: %v", ErrCorrupt, err))
		return Session{}, false
	}
	if !sess.LoggedIn() {
		s.heal(ctx, fmt.Errorf("%w: session without token", ErrCorrupt))
		return Session{}, false
	}
	return sess, true
}

// Present reports whether a session with a token is stored.
func (s *SessionStore) Present(ctx context.Context) bool {
	_, ok := s.Get(ctx)
	return ok
}

// Replace overwrites the slot. Replacing with a tokenless session clears it.
func (s *SessionStore) Replace(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(ctx, sess)
}

func (s *SessionStore) replace(ctx context.Context, sess Session) error {
	if !sess.LoggedIn() {
		return s.clear(ctx)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.backend.Store(ctx, SessionSlot, data); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Clear removes the session.
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clear(ctx)
}

// Update rewrites the stored session with fn, but only while the slot still
// holds a session with token. Otherwise it returns ErrSessionChanged and
// writes nothing.
func (s *SessionStore) Update(ctx context.Context, token string, fn func(Session) Session) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.get(ctx)
	if !ok || cur.Token != token {
		return Session{}, ErrSessionChanged
	}
	next := fn(cur)
	if err := s.replace(ctx, next); err != nil {
		return Session{}, err
	}
	return next, nil
}

// ClearIf removes the session only while it still carries token. cleared
// reports whether anything was removed.
func (s *SessionStore) ClearIf(ctx context.Context, token string) (cleared bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.get(ctx)
	if !ok || cur.Token != token {
		return false, nil
	}
	if err := s.clear(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SessionStore) clear(ctx context.Context) error {
	if err := s.backend.Remove(ctx, SessionSlot); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) heal(ctx context.Context, cause error) {
	s.log.Warn("discarding persisted session", zap.Error(cause))
	if err := s.backend.Remove(ctx, SessionSlot); err != nil {
		s.log.Error("failed to clear corrupt session", zap.Error(err))
	}
}
