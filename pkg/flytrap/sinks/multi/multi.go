// Package multi provides a sink that fans out to multiple sinks.
// All sinks receive all reports; errors are aggregated.
//
// Combine at most one network sink with local ones such as stderr: each
// report must still produce a single delivery request.
package multi

import (
	"context"
	"errors"

	"github.com/strongdm/ai-flytrap-go/pkg/flytrap"
)

type multiSink struct {
	sinks []flytrap.Sink
}

// NewMultiSink creates a sink that writes to every given sink in order.
func NewMultiSink(sinks ...flytrap.Sink) flytrap.Sink {
	return &multiSink{sinks: sinks}
}

// Write sends the report to all sinks, even after one has failed.
func (s *multiSink) Write(ctx context.Context, r flytrap.Report) error {
	return s.each(func(sink flytrap.Sink) error {
		return sink.Write(ctx, r)
	})
}

func (s *multiSink) Flush(ctx context.Context) error {
	return s.each(func(sink flytrap.Sink) error {
		return sink.Flush(ctx)
	})
}

func (s *multiSink) Close() error {
	return s.each(flytrap.Sink.Close)
}

func (s *multiSink) each(fn func(flytrap.Sink) error) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := fn(sink); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
