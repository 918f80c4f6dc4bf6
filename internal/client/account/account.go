// Package account implements the user-facing flows on top of the API client:
// login, signup, logout, profile refresh, plan changes and content
// generation. It is the only place besides the entitlement guard that writes
// the session store, and every write is followed by a publish on the bus.
package account

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/client/api"
	"github.com/atinyakov/ContentAI/internal/client/storage"
)

// ErrNoToken is wrapped in a request failure when login succeeds without
// returning a token.
var ErrNoToken = errors.New("login response carries no token")

// DefaultSubscriptionDays is the plan length used when none is given.
const DefaultSubscriptionDays = 30

// Backend is the subset of the API client the flows use.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) (api.LoginResponse, error)
	Signup(ctx context.Context, req api.SignupRequest) (api.SignupResponse, error)
	UserInfo(ctx context.Context) (api.UserInfo, error)
	UpdateSubscription(ctx context.Context, req api.UpdateSubscriptionRequest) (api.SubscriptionStatus, error)
	Generate(ctx context.Context, req api.GenerateRequest) (api.GenerateResponse, error)
	Trends(ctx context.Context, req api.TrendsRequest) (api.TrendsResponse, error)
}

// Sessions is the session store. Conditional writes are compared and applied
// by the store under its own lock, which the entitlement guard shares.
type Sessions interface {
	Get(ctx context.Context) (storage.Session, bool)
	Replace(ctx context.Context, sess storage.Session) error
	Clear(ctx context.Context) error
	Update(ctx context.Context, token string, fn func(storage.Session) storage.Session) (storage.Session, error)
	ClearIf(ctx context.Context, token string) (bool, error)
}

type Results interface {
	Save(ctx context.Context, res storage.GenerationResult) error
	Load(ctx context.Context) (storage.GenerationResult, bool)
}

type Publisher interface {
	Publish()
}

// Service runs the account and content flows.
type Service struct {
	backend  Backend
	sessions Sessions
	results  Results
	bus      Publisher
	log      *zap.Logger
}

func NewService(backend Backend, sessions Sessions, results Results, bus Publisher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		backend:  backend,
		sessions: sessions,
		results:  results,
		bus:      bus,
		log:      log,
	}
}

// Login authenticates and stores the returned session.
func (s *Service) Login(ctx context.Context, creds api.Credentials) (storage.Session, error) {
	resp, err := s.backend.Login(ctx, creds)
	if err != nil {
		return storage.Session{}, err
	}
	sess := resp.Session()
	if !sess.LoggedIn() {
		return storage.Session{}, &api.Error{Kind: api.ErrRequestFailed, Endpoint: api.PathLogin, Err: ErrNoToken}
	}

	if err := s.sessions.Replace(ctx, sess); err != nil {
		return storage.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	s.log.Info("logged in", zap.Int64("user_id", sess.UserID))
	s.bus.Publish()
	return sess, nil
}

// Signup registers a new account. The caller logs in afterwards.
func (s *Service) Signup(ctx context.Context, req api.SignupRequest) (api.SignupResponse, error) {
	resp, err := s.backend.Signup(ctx, req)
	if err != nil {
		return api.SignupResponse{}, err
	}
	s.log.Info("signed up", zap.Int64("user_id", resp.UserID))
	return resp, nil
}

// Logout removes the stored session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.log.Info("logged out")
	s.bus.Publish()
	return nil
}

// Refresh reloads identity and entitlement from the backend. The token is kept.
func (s *Service) Refresh(ctx context.Context) (storage.Session, error) {
	sess, ok := s.sessions.Get(ctx)
	if !ok {
		return storage.Session{}, api.ErrLoginRequired
	}
	info, err := s.backend.UserInfo(ctx)
	if err != nil {
		return storage.Session{}, s.handle(ctx, sess.Token, err)
	}
	return s.merge(ctx, sess.Token, info.Apply)
}

// Subscribe changes the plan. days <= 0 means DefaultSubscriptionDays.
func (s *Service) Subscribe(ctx context.Context, plan string, days int) (storage.Session, error) {
	sess, ok := s.sessions.Get(ctx)
	if !ok {
		return storage.Session{}, api.ErrLoginRequired
	}
	if days <= 0 {
		days = DefaultSubscriptionDays
	}
	status, err := s.backend.UpdateSubscription(ctx, api.UpdateSubscriptionRequest{
		SubscriptionType: plan,
		Duration:         days,
	})
	if err != nil {
		return storage.Session{}, s.handle(ctx, sess.Token, err)
	}
	s.log.Info("subscription updated", zap.String("plan", status.SubscriptionType))
	return s.merge(ctx, sess.Token, status.Apply)
}

// merge rewrites the stored session with fn while it still holds token.
func (s *Service) merge(ctx context.Context, token string, fn func(storage.Session) storage.Session) (storage.Session, error) {
	next, err := s.sessions.Update(ctx, token, fn)
	if errors.Is(err, storage.ErrSessionChanged) {
		return storage.Session{}, api.ErrLoginRequired
	}
	if err != nil {
		return storage.Session{}, fmt.Errorf("failed to store session: %w", err)
	}
	s.bus.Publish()
	return next, nil
}

// handle logs the user out when the backend rejected token and returns err.
func (s *Service) handle(ctx context.Context, token string, err error) error {
	if !errors.Is(err, api.ErrSessionExpired) {
		return err
	}
	cleared, clearErr := s.sessions.ClearIf(ctx, token)
	if clearErr != nil {
		s.log.Error("failed to clear expired session", zap.Error(clearErr))
		return err
	}
	if cleared {
		s.log.Info("session expired, logged out")
		s.bus.Publish()
	}
	return err
}
