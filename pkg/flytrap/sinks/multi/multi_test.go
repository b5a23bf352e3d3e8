package multi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/strongdm/ai-flytrap-go/pkg/flytrap"
)

// mockSink tracks calls and can return errors.
type mockSink struct {
	mu       sync.Mutex
	reports  []flytrap.Report
	writeErr error
	flushErr error
	closeErr error
	closed   bool
}

func (s *mockSink) Write(ctx context.Context, r flytrap.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.reports = append(s.reports, r)
	return nil
}

func (s *mockSink) Flush(ctx context.Context) error {
	return s.flushErr
}

func (s *mockSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.closeErr
}

func (s *mockSink) getReports() []flytrap.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]flytrap.Report, len(s.reports))
	copy(result, s.reports)
	return result
}

func (s *mockSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func TestMultiSink_Write_CallsAllSinks(t *testing.T) {
	sink1 := &mockSink{}
	sink2 := &mockSink{}
	sink3 := &mockSink{}
	multi := NewMultiSink(sink1, sink2, sink3)

	err := multi.Write(context.Background(), flytrap.Report{EventID: "evt-123"})
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	for i, sink := range []*mockSink{sink1, sink2, sink3} {
		reports := sink.getReports()
		if len(reports) != 1 {
			t.Errorf("sink%d: expected 1 report, got %d", i+1, len(reports))
		}
		if len(reports) > 0 && reports[0].EventID != "evt-123" {
			t.Errorf("sink%d: wrong event ID", i+1)
		}
	}
}

func TestMultiSink_Write_AggregatesErrorsAndContinues(t *testing.T) {
	err1 := errors.New("sink1 error")
	err2 := errors.New("sink2 error")
	sink3 := &mockSink{}
	multi := NewMultiSink(&mockSink{writeErr: err1}, &mockSink{writeErr: err2}, sink3)

	err := multi.Write(context.Background(), flytrap.Report{})

	if !errors.Is(err, err1) || !errors.Is(err, err2) {
		t.Errorf("Write should aggregate all errors, got: %v", err)
	}
	if len(sink3.getReports()) != 1 {
		t.Error("sink3 should still receive the report after earlier sinks fail")
	}
}

func TestMultiSink_Flush_AggregatesErrors(t *testing.T) {
	err1 := errors.New("flush error 1")
	err2 := errors.New("flush error 2")
	multi := NewMultiSink(&mockSink{flushErr: err1}, &mockSink{flushErr: err2})

	err := multi.Flush(context.Background())

	if !errors.Is(err, err1) || !errors.Is(err, err2) {
		t.Errorf("Flush should aggregate all errors, got: %v", err)
	}
}

func TestMultiSink_Close_CallsAllSinks(t *testing.T) {
	err1 := errors.New("close error 1")
	sink1 := &mockSink{closeErr: err1}
	sink2 := &mockSink{}
	multi := NewMultiSink(sink1, sink2)

	err := multi.Close()

	if !errors.Is(err, err1) {
		t.Errorf("Close should return sink1's error, got: %v", err)
	}
	if !sink1.isClosed() || !sink2.isClosed() {
		t.Error("all sinks should be closed")
	}
}

func TestMultiSink_EmptySinks(t *testing.T) {
	multi := NewMultiSink()

	if err := multi.Write(context.Background(), flytrap.Report{}); err != nil {
		t.Errorf("Write with no sinks should return nil, got: %v", err)
	}
	if err := multi.Flush(context.Background()); err != nil {
		t.Errorf("Flush with no sinks should return nil, got: %v", err)
	}
	if err := multi.Close(); err != nil {
		t.Errorf("Close with no sinks should return nil, got: %v", err)
	}
}

func TestMultiSink_HTTPAndLocalSendsOneRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	httpSink, err := flytrap.NewHTTPSink(flytrap.HTTPSinkConfig{URL: srv.URL + "/api/errors", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewHTTPSink failed: %v", err)
	}
	local := &mockSink{}
	multi := NewMultiSink(httpSink, local)

	if err := multi.Write(context.Background(), flytrap.Report{EventID: "evt-1", CodeContexts: []flytrap.CodeContext{}}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("expected exactly 1 request, got %d", got)
	}
	if len(local.getReports()) != 1 {
		t.Error("local sink should receive the report")
	}
}
