// fingerprint.go generates stable hashes for grouping similar reports.

package flytrap

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
)

// fingerprintFrames is how many leading frames contribute to a fingerprint.
const fingerprintFrames = 3

// Match Go closure suffixes like ".func1" or ".func2.3"
var closureSuffixPattern = regexp.MustCompile(`\.func\d+(\.\d+)*$`)

// Fingerprint generates a hash for grouping similar events.
// It is based on the event kind, the error name and the first three frames
// (function names, or file base names when the function is unknown).
// Messages, line numbers, columns and rejection values are ignored.
func Fingerprint(event CapturedEvent, frames []StackFrame) string {
	parts := []string{string(event.Kind)}
	if event.Kind == EventKindError {
		parts = append(parts, event.Error.Name)
	}

	for i, frame := range frames {
		if i >= fingerprintFrames {
			break
		}
		parts = append(parts, normalizeFrame(frame))
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))

	// Hex-encoded first 16 bytes (32 hex chars)
	return hex.EncodeToString(hash[:16])
}

func normalizeFrame(frame StackFrame) string {
	if frame.Function != "" {
		return closureSuffixPattern.ReplaceAllString(frame.Function, "")
	}
	return filepath.Base(frame.File)
}
