package account

import (
	"context"

	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/client/api"
	"github.com/atinyakov/ContentAI/internal/client/storage"
)

// Redirect tells the caller where to send the user instead of the results view.
type Redirect int

const (
	RedirectNone Redirect = iota
	RedirectLogin
	RedirectGenerate
)

func (r Redirect) String() string {
	switch r {
	case RedirectLogin:
		return "login"
	case RedirectGenerate:
		return "generate"
	default:
		return "none"
	}
}

// Generate requests content ideas and stores them for the results view.
func (s *Service) Generate(ctx context.Context, req api.GenerateRequest) (storage.GenerationResult, error) {
	sess, ok := s.sessions.Get(ctx)
	if !ok {
		return storage.GenerationResult{}, api.ErrLoginRequired
	}
	resp, err := s.backend.Generate(ctx, req)
	if err != nil {
		return storage.GenerationResult{}, s.handle(ctx, sess.Token, err)
	}
	s.save(ctx, resp.Content)
	return resp.Content, nil
}

// Trends requests trending hashtags and topics and stores them for the
// results view.
func (s *Service) Trends(ctx context.Context, req api.TrendsRequest) (storage.GenerationResult, error) {
	sess, ok := s.sessions.Get(ctx)
	if !ok {
		return storage.GenerationResult{}, api.ErrLoginRequired
	}
	resp, err := s.backend.Trends(ctx, req)
	if err != nil {
		return storage.GenerationResult{}, s.handle(ctx, sess.Token, err)
	}
	res := resp.Result()
	s.save(ctx, res)
	return res, nil
}

// Results returns what the last generation produced, or where to go instead.
func (s *Service) Results(ctx context.Context) (storage.GenerationResult, Redirect) {
	if _, ok := s.sessions.Get(ctx); !ok {
		return storage.GenerationResult{}, RedirectLogin
	}
	res, ok := s.results.Load(ctx)
	if !ok {
		return storage.GenerationResult{}, RedirectGenerate
	}
	return res, RedirectNone
}

func (s *Service) save(ctx context.Context, res storage.GenerationResult) {
	if res.Empty() {
		return
	}
	if err := s.results.Save(ctx, res); err != nil {
		s.log.Error("failed to store results", zap.Error(err))
	}
}
