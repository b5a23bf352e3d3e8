// sink.go defines the Sink interface for report destinations.

package flytrap

import "context"

// Sink is the destination for reports.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Write delivers one report. Called once per captured event; the
	// report is never retried or persisted when Write fails.
	Write(ctx context.Context, report Report) error

	// Flush ensures any buffered reports are delivered.
	// For synchronous sinks, this may be a no-op.
	Flush(ctx context.Context) error

	// Close releases resources held by the sink.
	Close() error
}
