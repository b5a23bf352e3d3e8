// config.go holds the process-wide SDK configuration and client options.

package flytrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvProjectID      = "FLYTRAP_PROJECT_ID"
	EnvAPIEndpoint    = "FLYTRAP_API_ENDPOINT"
	EnvAPIKey         = "FLYTRAP_API_KEY"
	EnvIncludeContext = "FLYTRAP_INCLUDE_CONTEXT"
)

// Config is set once when the client is created and never mutated afterwards.
type Config struct {
	// ProjectID identifies the project reports belong to.
	ProjectID string

	// APIEndpoint is the base URL of the collection backend, without the
	// /api/errors suffix.
	APIEndpoint string

	// APIKey is sent in the x-api-key header.
	APIKey string

	// IncludeContext enables source-code context for each stack frame.
	IncludeContext bool

	// ContextLines is the window size around each frame's line
	// (default: DefaultContextLines).
	ContextLines int

	// ExitOnFatal makes the hook dispatcher exit the process with status 1
	// after delivering a report for an uncaught panic. Off by default: the
	// host decides whether to terminate.
	ExitOnFatal bool
}

// Validate checks that all required fields are present and the endpoint is
// an absolute http(s) URL.
func (c Config) Validate() error {
	var errs []error
	if c.ProjectID == "" {
		errs = append(errs, errors.New("project id is required"))
	}
	if c.APIKey == "" {
		errs = append(errs, errors.New("api key is required"))
	}
	if c.APIEndpoint == "" {
		errs = append(errs, errors.New("api endpoint is required"))
	} else if u, err := url.Parse(c.APIEndpoint); err != nil {
		errs = append(errs, fmt.Errorf("api endpoint: %w", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api endpoint %q must be an absolute http(s) URL", c.APIEndpoint))
	}
	if c.ContextLines < 0 {
		errs = append(errs, fmt.Errorf("context lines must not be negative, got %d", c.ContextLines))
	}
	return errors.Join(errs...)
}

// contextLines returns the effective window size.
func (c Config) contextLines() int {
	if c.ContextLines == 0 {
		return DefaultContextLines
	}
	return c.ContextLines
}

// reportURL returns the URL reports are posted to.
func (c Config) reportURL() string {
	return strings.TrimRight(c.APIEndpoint, "/") + "/api/errors"
}

// ConfigFromEnv builds a Config from FLYTRAP_* environment variables.
// The result is not validated.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		ProjectID:   os.Getenv(EnvProjectID),
		APIEndpoint: os.Getenv(EnvAPIEndpoint),
		APIKey:      os.Getenv(EnvAPIKey),
	}
	if v := os.Getenv(EnvIncludeContext); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", EnvIncludeContext, err)
		}
		cfg.IncludeContext = include
	}
	return cfg, nil
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	sink           Sink
	logger         *slog.Logger
	reader         SourceReader
	httpClient     *http.Client
	scrubber       *Scrubber
	responseSchema string
}

// WithSink replaces the default HTTP sink.
func WithSink(sink Sink) Option {
	return func(o *clientOptions) {
		o.sink = sink
	}
}

// WithLogger sets the logger for send/success/failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithSourceReader replaces the file-system source reader.
func WithSourceReader(reader SourceReader) Option {
	return func(o *clientOptions) {
		o.reader = reader
	}
}

// WithHTTPClient sets the HTTP client used by the default sink.
// No timeout is imposed unless the given client has one.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithResponseSchema overrides the JSON Schema used to validate backend
// responses for the default sink.
func WithResponseSchema(schema string) Option {
	return func(o *clientOptions) {
		o.responseSchema = schema
	}
}

// WithScrubber configures the client with a custom scrubber configuration.
func WithScrubber(cfg ScrubberConfig) Option {
	return func(o *clientOptions) {
		o.scrubber = NewScrubber(cfg)
	}
}

// WithDefaultScrubbing enables scrubbing with production-safe defaults.
func WithDefaultScrubbing() Option {
	return func(o *clientOptions) {
		o.scrubber = NewScrubber(DefaultScrubberConfig())
	}
}

// defaultLogger writes text logs to stderr.
func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
