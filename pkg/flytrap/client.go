// client.go provides the Client and its manual capture API.

package flytrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Client assembles and delivers reports. It is safe for concurrent use.
type Client struct {
	cfg       Config
	sink      Sink
	assembler *Assembler
	logger    *slog.Logger

	// pending tracks detached deliveries started by the hook dispatcher.
	pending inflight

	mu          sync.Mutex
	unsubscribe func()

	exit func(code int)
}

// New validates cfg and creates a Client. Without WithSink, reports are
// posted to cfg.APIEndpoint + "/api/errors".
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = defaultLogger()
	}
	logger := o.logger.With(slog.String("component", "flytrap"))

	if o.reader == nil {
		o.reader = NewFileReader()
	}

	sink := o.sink
	if sink == nil {
		httpSink, err := NewHTTPSink(HTTPSinkConfig{
			URL:            cfg.reportURL(),
			APIKey:         cfg.APIKey,
			Client:         o.httpClient,
			Logger:         logger,
			ResponseSchema: o.responseSchema,
		})
		if err != nil {
			return nil, err
		}
		sink = httpSink
	}

	return &Client{
		cfg:       cfg,
		sink:      sink,
		assembler: NewAssembler(cfg, o.reader, o.scrubber),
		logger:    logger,
		exit:      os.Exit,
	}, nil
}

// Config returns the configuration the client was created with.
func (c *Client) Config() Config {
	return c.cfg
}

// LogError reports err from inside a caught block. The stack is captured at
// the call site. req may be nil, in which case a request attached with
// WithRequest is used. Delivery failures are returned as *Error.
func (c *Client) LogError(ctx context.Context, err error, handled bool, req Request) error {
	if err == nil {
		return nil
	}
	return c.capture(ctx, NewErrorEvent(err, captureStack()), handled, req)
}

// LogRejection reports a non-error failure value. Delivery failures are
// returned as *Error.
func (c *Client) LogRejection(ctx context.Context, value any, handled bool, req Request) error {
	if err, ok := value.(error); ok {
		return c.LogError(ctx, err, handled, req)
	}
	return c.capture(ctx, NewRejectionEvent(value), handled, req)
}

// LogEvent reports a prepared event, e.g. an error carrying a stack trace
// obtained elsewhere. Delivery failures are returned as *Error.
func (c *Client) LogEvent(ctx context.Context, event CapturedEvent, handled bool, req Request) error {
	return c.capture(ctx, event, handled, req)
}

// capture assembles and delivers one report, logging the outcome.
func (c *Client) capture(ctx context.Context, event CapturedEvent, handled bool, req Request) error {
	if req == nil {
		req, _ = RequestFromContext(ctx)
	}

	report := c.assembler.Assemble(ctx, event, handled, req)
	what := "error"
	if report.Kind == EventKindRejection {
		what = "rejection"
	}

	c.logger.Info("sending "+what+" to backend",
		slog.String("event_id", report.EventID),
		slog.Bool("handled", handled))

	if err := c.sink.Write(ctx, report); err != nil {
		c.logger.Error("failed to send "+what+" data",
			slog.String("event_id", report.EventID),
			slog.Any("error", err))
		return newError("an error occurred logging "+what+" data", err)
	}
	return nil
}

// Flush waits for in-flight automatic deliveries, then flushes the sink.
func (c *Client) Flush(ctx context.Context) error {
	select {
	case <-c.pending.idle():
		return c.sink.Flush(ctx)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close uninstalls the client's hooks and closes the sink. In-flight
// deliveries are not awaited; call Flush first for that.
func (c *Client) Close() error {
	c.Uninstall()
	return c.sink.Close()
}
