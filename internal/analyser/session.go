package analyser

import (
	"context"
	"sync"

	"StockAnalyser/internal/model"
)

// Session keeps the last successful result of an interactive user.
type Session struct {
	Service *Service

	mu   sync.RWMutex
	last *model.Result
}

// NewSession creates an empty session.
func NewSession(svc *Service) *Session {
	return &Session{Service: svc}
}

// Submit runs a request. The stored result is replaced only on success.
func (s *Session) Submit(ctx context.Context, req Request) (*model.Result, error) {
	res, err := s.Service.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	return res, nil
}

// Last returns the most recent successful result, or nil.
func (s *Session) Last() *model.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Ready reports whether a result is available for display.
func (s *Session) Ready() bool { return s.Last() != nil }
