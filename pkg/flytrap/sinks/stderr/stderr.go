// Package stderr provides a sink that prints reports in human-readable form.
// Useful during development, alone or next to the HTTP sink via multi.
package stderr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/strongdm/ai-flytrap-go/pkg/flytrap"
)

// Option configures the stderr sink.
type Option func(*config)

type config struct {
	verbose bool
	out     io.Writer
}

// WithVerbose adds stack traces and code context to the output.
func WithVerbose() Option {
	return func(c *config) {
		c.verbose = true
	}
}

// WithOutput redirects output away from os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.out = w
	}
}

type stderrSink struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewStderrSink creates a sink that writes to stderr.
func NewStderrSink(opts ...Option) flytrap.Sink {
	cfg := &config{out: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}
	return &stderrSink{out: cfg.out, verbose: cfg.verbose}
}

// Write prints one report. Lines of a report are never interleaved with
// another report's.
func (s *stderrSink) Write(ctx context.Context, r flytrap.Report) error {
	var b strings.Builder

	// [FLYTRAP] <timestamp> <KIND> <name> (handled|unhandled) <method> <path>
	status := "unhandled"
	if r.Handled {
		status = "handled"
	}
	parts := []string{
		"[FLYTRAP]",
		r.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		strings.ToUpper(string(r.Kind)),
	}
	if r.Error != nil {
		parts = append(parts, r.Error.Name)
	}
	parts = append(parts, "("+status+")")
	if r.Method != "" {
		parts = append(parts, r.Method, r.Path)
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteByte('\n')

	if r.Error != nil {
		fmt.Fprintf(&b, "        Message: %s\n", r.Error.Message)
	} else {
		fmt.Fprintf(&b, "        Value: %v\n", r.Value)
	}
	if r.Fingerprint != "" {
		fmt.Fprintf(&b, "        Fingerprint: %s\n", r.Fingerprint)
	}
	if r.ProjectID != "" {
		fmt.Fprintf(&b, "        Project: %s\n", r.ProjectID)
	}

	if s.verbose {
		if r.Error != nil && r.Error.Stack != "" {
			b.WriteString("        Stack trace:\n")
			for _, line := range strings.Split(r.Error.Stack, "\n") {
				fmt.Fprintf(&b, "          %s\n", line)
			}
		}
		for _, cc := range r.CodeContexts {
			fmt.Fprintf(&b, "        at %s:%d %s\n", cc.File, cc.Line, cc.Function)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.out, b.String())
	return err
}

// Flush is a no-op for stderr sink.
func (s *stderrSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op for stderr sink.
func (s *stderrSink) Close() error {
	return nil
}
