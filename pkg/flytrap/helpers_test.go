package flytrap

import (
	"context"
	"runtime/debug"
	"sync"
)

func currentStack() string {
	return string(debug.Stack())
}

// recordingSink keeps written reports in memory.
type recordingSink struct {
	mu      sync.Mutex
	reports []Report
	err     error
	flushes int
	closed  bool
}

func (s *recordingSink) Write(ctx context.Context, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.reports = append(s.reports, r)
	return nil
}

func (s *recordingSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) Reports() []Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Report, len(s.reports))
	copy(out, s.reports)
	return out
}
