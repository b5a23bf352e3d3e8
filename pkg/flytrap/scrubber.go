// scrubber.go redacts secrets and personal data from reports before delivery.

package flytrap

import (
	"regexp"
)

// ScrubberConfig controls scrubbing behavior.
type ScrubberConfig struct {
	// ExtraPatterns contains additional regular expressions whose matches are redacted.
	ExtraPatterns []string

	// MaxMessageSize is the maximum length for error messages (default: 4096).
	MaxMessageSize int

	// MaxStackTraceSize is the maximum length for stack traces (default: 32768).
	MaxStackTraceSize int

	// NormalizePaths replaces user home directories in stack traces and
	// code context file names (default: true).
	NormalizePaths bool
}

// DefaultScrubberConfig returns production-safe defaults.
func DefaultScrubberConfig() ScrubberConfig {
	return ScrubberConfig{
		MaxMessageSize:    4096,
		MaxStackTraceSize: 32768,
		NormalizePaths:    true,
	}
}

// Compiled once at package init
var messageScrubPatterns = []*regexp.Regexp{
	// API keys and tokens
	regexp.MustCompile(`(?i)(api[_-]?key|token)[=:\s]+['"]?[\w\-\.]+['"]?`),
	regexp.MustCompile(`(?i)bearer\s+[\w\-\.=]+`),
	regexp.MustCompile(`(?i)sk-[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`(?i)gh[po]_[a-zA-Z0-9]{36}`),
	regexp.MustCompile(`(?i)xox[baprs]-[a-zA-Z0-9\-]{10,}`),
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`), // JWT

	// Credentials
	regexp.MustCompile(`(?i)(password|passwd|secret|credential)[=:\s]+['"]?[^\s'",]+['"]?`),

	// PII
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), // email
	regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),         // card number
}

var homeDirPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/home/[^/\s]+/`),
	regexp.MustCompile(`/Users/[^/\s]+/`),
	regexp.MustCompile(`C:\\Users\\[^\\\s]+\\`),
}

// Scrubber redacts sensitive data from reports.
type Scrubber struct {
	cfg   ScrubberConfig
	extra []*regexp.Regexp
}

// NewScrubber creates a scrubber. Extra patterns that fail to compile are ignored.
func NewScrubber(cfg ScrubberConfig) *Scrubber {
	s := &Scrubber{cfg: cfg}
	for _, p := range cfg.ExtraPatterns {
		if re, err := regexp.Compile(p); err == nil {
			s.extra = append(s.extra, re)
		}
	}
	return s
}

// ScrubMessage truncates msg and redacts sensitive patterns.
func (s *Scrubber) ScrubMessage(msg string) string {
	if s.cfg.MaxMessageSize > 0 && len(msg) > s.cfg.MaxMessageSize {
		msg = truncateWithMarker(msg, s.cfg.MaxMessageSize)
	}
	return s.redact(msg)
}

func (s *Scrubber) redact(text string) string {
	for _, pattern := range messageScrubPatterns {
		text = pattern.ReplaceAllString(text, "[REDACTED]")
	}
	for _, pattern := range s.extra {
		text = pattern.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}

func (s *Scrubber) normalizePaths(text string) string {
	if !s.cfg.NormalizePaths {
		return text
	}
	for _, pattern := range homeDirPatterns {
		text = pattern.ReplaceAllString(text, "/[PATH]/")
	}
	return text
}

// ScrubStackTrace normalizes home directories and limits stack trace size.
// Paths are rewritten after code context has been resolved, so frames keep
// pointing at readable files.
func (s *Scrubber) ScrubStackTrace(trace string) string {
	if trace == "" {
		return trace
	}
	trace = s.normalizePaths(trace)
	if s.cfg.MaxStackTraceSize > 0 && len(trace) > s.cfg.MaxStackTraceSize {
		trace = truncateWithMarker(trace, s.cfg.MaxStackTraceSize)
	}
	return trace
}

// ScrubReport applies message and stack scrubbing to a report in place.
// String rejection values are scrubbed like messages. Code context lines are
// redacted without truncation and their file names normalized.
func (s *Scrubber) ScrubReport(r *Report) {
	if r.Error != nil {
		scrubbed := *r.Error
		scrubbed.Message = s.ScrubMessage(scrubbed.Message)
		scrubbed.Stack = s.ScrubStackTrace(scrubbed.Stack)
		r.Error = &scrubbed
	}
	if v, ok := r.Value.(string); ok {
		r.Value = s.ScrubMessage(v)
	}
	if len(r.CodeContexts) > 0 {
		contexts := make([]CodeContext, len(r.CodeContexts))
		for i, cc := range r.CodeContexts {
			cc.File = s.normalizePaths(cc.File)
			cc.Context = s.redact(cc.Context)
			contexts[i] = cc
		}
		r.CodeContexts = contexts
	}
}

// truncateWithMarker truncates a string and adds a truncation marker.
func truncateWithMarker(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	marker := "...[TRUNCATED]"
	if maxLen <= len(marker) {
		return marker[:maxLen]
	}
	return s[:maxLen-len(marker)] + marker
}
