// Package noop provides a sink that discards every report.
// Useful in tests and to switch reporting off without touching call sites.
package noop

import (
	"context"

	"github.com/strongdm/ai-flytrap-go/pkg/flytrap"
)

type noopSink struct{}

// NewNoopSink creates a sink whose methods do nothing and return nil.
func NewNoopSink() flytrap.Sink {
	return noopSink{}
}

func (noopSink) Write(ctx context.Context, r flytrap.Report) error { return nil }

func (noopSink) Flush(ctx context.Context) error { return nil }

func (noopSink) Close() error { return nil }
