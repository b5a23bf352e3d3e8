// deliver.go implements the HTTP sink that posts reports to the collection backend.

package flytrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultResponseSchema describes the response the backend is expected to
// send: a 2xx status and a JSON object with a string message.
const DefaultResponseSchema = `{
  "type": "object",
  "required": ["status", "data"],
  "properties": {
    "status": {"type": "integer", "minimum": 200, "maximum": 299},
    "data": {
      "type": "object",
      "required": ["message"],
      "properties": {"message": {"type": "string"}}
    }
  }
}`

const (
	apiKeyHeader    = "x-api-key"
	maxResponseBody = 64 << 10
)

// HTTPSinkConfig configures an HTTPSink.
type HTTPSinkConfig struct {
	// URL is the full report URL, e.g. https://api.example.com/api/errors.
	URL string

	// APIKey is sent in the x-api-key header.
	APIKey string

	// Client performs the request (default: a client without timeout).
	Client *http.Client

	// Logger receives success and validation diagnostics.
	Logger *slog.Logger

	// ResponseSchema overrides DefaultResponseSchema.
	ResponseSchema string
}

// HTTPSink delivers each report with a single authenticated POST.
// It never retries and never persists failed reports.
type HTTPSink struct {
	url    string
	apiKey string
	client *http.Client
	logger *slog.Logger
	schema *jsonschema.Schema
}

// envelope is the request body: {"data": report}.
type envelope struct {
	Data Report `json:"data"`
}

// NewHTTPSink creates an HTTPSink. It fails only when the response schema
// does not compile.
func NewHTTPSink(cfg HTTPSinkConfig) (*HTTPSink, error) {
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = defaultLogger()
	}
	if cfg.ResponseSchema == "" {
		cfg.ResponseSchema = DefaultResponseSchema
	}

	schema, err := jsonschema.CompileString("response.json", cfg.ResponseSchema)
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}

	return &HTTPSink{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: cfg.Client,
		logger: cfg.Logger,
		schema: schema,
	}, nil
}

// Write posts the report. Transport failures and non-2xx statuses are
// returned; a response that does not match the schema is only logged, since
// the backend may have accepted the report anyway.
func (s *HTTPSink) Write(ctx context.Context, report Report) error {
	body, err := json.Marshal(envelope{Data: report})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := s.validate(resp.StatusCode, respBody); err != nil {
		s.logger.Warn("response validation error",
			slog.String("event_id", report.EventID),
			slog.Any("error", err))
		return nil
	}

	s.logger.Info("report delivered",
		slog.String("event_id", report.EventID),
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(respBody)))
	return nil
}

// validate checks {status, data} against the response schema.
func (s *HTTPSink) validate(status int, body []byte) error {
	var data any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		// Keep the raw text so the schema reports a type mismatch.
		data = string(body)
	}

	doc := map[string]any{
		"status": json.Number(strconv.Itoa(status)),
		"data":   data,
	}

	if err := s.schema.Validate(doc); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}

// Flush is a no-op; writes are synchronous.
func (s *HTTPSink) Flush(ctx context.Context) error {
	return nil
}

// Close releases idle connections.
func (s *HTTPSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
