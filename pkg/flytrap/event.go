// event.go defines captured events and the report payload sent to the backend.

package flytrap

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayout matches ISO-8601 with millisecond precision in UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// EventKind tags a CapturedEvent.
type EventKind string

const (
	// EventKindError is a captured Go error (or a panic converted to one).
	EventKindError EventKind = "error"

	// EventKindRejection is a non-error value a background task failed with.
	EventKindRejection EventKind = "rejection"
)

// ErrorData is the serialised form of a captured error.
type ErrorData struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// CapturedEvent is the thing that was caught: either an error or a rejection value.
// It is immutable once constructed.
type CapturedEvent struct {
	Kind EventKind

	// Error is set when Kind is EventKindError.
	Error ErrorData

	// Value is set when Kind is EventKindRejection. It may be nil.
	Value any
}

// NewErrorEvent captures err with the given stack trace.
// An empty stack means no code context can be resolved.
func NewErrorEvent(err error, stack string) CapturedEvent {
	return CapturedEvent{
		Kind: EventKindError,
		Error: ErrorData{
			Name:    errorName(err),
			Message: err.Error(),
			Stack:   stack,
		},
	}
}

// NewRejectionEvent captures a non-error rejection value.
func NewRejectionEvent(value any) CapturedEvent {
	return CapturedEvent{Kind: EventKindRejection, Value: value}
}

// errorName mirrors a class name: PanicError reports "panic", types with a
// Name method report that, everything else reports its dynamic type.
func errorName(err error) string {
	switch e := err.(type) {
	case *PanicError:
		return "panic"
	case interface{ Name() string }:
		if n := e.Name(); n != "" {
			return n
		}
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

// CodeContext is the source snippet surrounding one stack frame.
type CodeContext struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Function string `json:"function,omitempty"`
	Context  string `json:"context"`
}

// SystemState captures process metrics at the time of an error.
type SystemState struct {
	MemoryBytes    int64  `json:"memory_bytes"`
	GoroutineCount int    `json:"goroutine_count"`
	UptimeMs       int64  `json:"uptime_ms"`
	HostName       string `json:"host_name,omitempty"`
}

// EnvironmentInfo describes where a report was produced.
type EnvironmentInfo struct {
	Runtime string
	OS      string
	IP      string
}

// Report is the payload delivered for one captured event.
// Exactly one of Error and Value is meaningful, selected by Kind.
type Report struct {
	EventID      string
	Kind         EventKind
	Error        *ErrorData
	Value        any
	CodeContexts []CodeContext
	Handled      bool
	Timestamp    time.Time
	ProjectID    string
	Fingerprint  string

	// Request metadata, empty when no request was supplied.
	Method string
	Path   string
	IP     string

	OS      string
	Runtime string
	System  *SystemState
}

type reportJSON struct {
	EventID      string          `json:"event_id,omitempty"`
	Error        *ErrorData      `json:"error,omitempty"`
	Value        json.RawMessage `json:"value,omitempty"`
	CodeContexts []CodeContext   `json:"codeContexts"`
	Handled      bool            `json:"handled"`
	Timestamp    string          `json:"timestamp"`
	ProjectID    string          `json:"project_id"`
	Fingerprint  string          `json:"fingerprint,omitempty"`
	Method       string          `json:"method,omitempty"`
	Path         string          `json:"path,omitempty"`
	IP           string          `json:"ip,omitempty"`
	OS           string          `json:"os,omitempty"`
	Runtime      string          `json:"runtime,omitempty"`
	System       *SystemState    `json:"system,omitempty"`
}

// MarshalJSON emits either "error" or "value" depending on Kind. A nil
// rejection value is emitted as "value": null.
func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		EventID:      r.EventID,
		CodeContexts: r.CodeContexts,
		Handled:      r.Handled,
		Timestamp:    r.Timestamp.UTC().Format(timestampLayout),
		ProjectID:    r.ProjectID,
		Fingerprint:  r.Fingerprint,
		Method:       r.Method,
		Path:         r.Path,
		IP:           r.IP,
		OS:           r.OS,
		Runtime:      r.Runtime,
		System:       r.System,
	}
	if out.CodeContexts == nil {
		out.CodeContexts = []CodeContext{}
	}

	switch r.Kind {
	case EventKindRejection:
		out.Value = marshalRejectionValue(r.Value)
	default:
		out.Error = r.Error
	}

	return json.Marshal(out)
}

// marshalRejectionValue encodes v, falling back to its %v form for values
// JSON cannot represent (channels, funcs, cyclic structures).
func marshalRejectionValue(v any) json.RawMessage {
	if err, ok := v.(error); ok {
		v = err.Error()
	}
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(fmt.Sprintf("%v", v))
	}
	return b
}
