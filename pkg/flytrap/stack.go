// stack.go parses raw stack traces into structured frames.

package flytrap

import (
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// StackFrame is one parsed location from a stack trace.
// Column is 0 when the trace format carries no column (Go traces).
type StackFrame struct {
	File     string
	Line     int
	Column   int
	Function string
}

var (
	// Go runtime location line: "\t/app/main.go:42 +0x1d"
	goLocationPattern = regexp.MustCompile(`^\t(.+?):(\d+)(?: \+0x[0-9a-fA-F]+)?\s*$`)

	// "created by main.main in goroutine 1"
	goCreatedByPattern = regexp.MustCompile(`^created by (.+?)(?: in goroutine \d+)?$`)

	// V8 style: "at fn (file:line:col)"
	v8CallPattern = regexp.MustCompile(`^at\s+(.+?)\s+\((.+?):(\d+)(?::(\d+))?\)$`)

	// V8 style without function name: "at file:line:col"
	v8LocationPattern = regexp.MustCompile(`^at\s+(.+?):(\d+)(?::(\d+))?$`)

	// Bare "file:line:col"
	bareLocationPattern = regexp.MustCompile(`^(.+?):(\d+):(\d+)$`)
)

// ParseStackTrace turns a multi-line stack trace into frames in source order.
// It understands Go runtime traces and V8-style "at ..." traces. Lines that
// cannot be parsed, and frames without a real file (native, <anonymous>,
// <autogenerated>, node: internals), are skipped. An empty trace returns nil.
func ParseStackTrace(stack string) []StackFrame {
	if strings.TrimSpace(stack) == "" {
		return nil
	}

	var frames []StackFrame
	pendingFunc := ""

	for _, raw := range strings.Split(stack, "\n") {
		raw = strings.TrimRight(raw, "\r")

		if m := goLocationPattern.FindStringSubmatch(raw); m != nil {
			line, _ := strconv.Atoi(m[2])
			if frame, ok := newFrame(m[1], line, 0, pendingFunc); ok {
				frames = append(frames, frame)
			}
			pendingFunc = ""
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if frame, ok, matched := parseV8Line(line); matched {
			if ok {
				frames = append(frames, frame)
			}
			pendingFunc = ""
			continue
		}

		if strings.HasPrefix(line, "goroutine ") {
			pendingFunc = ""
			continue
		}
		pendingFunc = goFunctionName(line)
	}

	return frames
}

// parseV8Line reports matched=true when line has a V8 frame shape, and ok=true
// when that frame points at a real file.
func parseV8Line(line string) (frame StackFrame, ok bool, matched bool) {
	if strings.HasPrefix(line, "at ") && strings.HasSuffix(line, "(native)") {
		return StackFrame{}, false, true
	}

	if m := v8CallPattern.FindStringSubmatch(line); m != nil {
		frame, ok = newFrame(m[2], atoi(m[3]), atoi(m[4]), m[1])
		return frame, ok, true
	}
	if m := v8LocationPattern.FindStringSubmatch(line); m != nil {
		frame, ok = newFrame(m[1], atoi(m[2]), atoi(m[3]), "")
		return frame, ok, true
	}
	if m := bareLocationPattern.FindStringSubmatch(line); m != nil {
		frame, ok = newFrame(m[1], atoi(m[2]), atoi(m[3]), "")
		return frame, ok, true
	}
	return StackFrame{}, false, false
}

func newFrame(file string, line, column int, function string) (StackFrame, bool) {
	file = strings.TrimSpace(file)
	if !isFileLocation(file) || line <= 0 {
		return StackFrame{}, false
	}
	if function == "<anonymous>" {
		function = ""
	}
	return StackFrame{File: file, Line: line, Column: column, Function: function}, true
}

// isFileLocation rejects locations that can never be read from disk.
func isFileLocation(file string) bool {
	switch {
	case file == "", file == "native":
		return false
	case strings.HasPrefix(file, "<"):
		return false
	case strings.HasPrefix(file, "node:"):
		return false
	}
	return true
}

// goFunctionName strips call arguments and the "created by" prefix from a
// Go trace function line.
func goFunctionName(line string) string {
	if m := goCreatedByPattern.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	if strings.HasSuffix(line, ")") {
		if idx := strings.LastIndex(line, "("); idx > 0 {
			return line[:idx]
		}
	}
	return line
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

const maxCapturedFrames = 64

// sdkPackage is the import path of this package; its frames are not part
// of the caller's stack.
var sdkPackage = reflect.TypeFor[Guard]().PkgPath()

// captureStack returns the calling goroutine's stack in Go trace format,
// starting at the first frame outside this package and the runtime. For a
// recovered panic that is the frame that panicked.
func captureStack() string {
	pcs := make([]uintptr, maxCapturedFrames)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	leading := true
	for {
		frame, more := frames.Next()
		if leading && isInternalFrame(frame) {
			if !more {
				break
			}
			continue
		}
		leading = false
		fmt.Fprintf(&b, "%s(...)\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// isInternalFrame reports frames of the runtime and of this package's own
// capture paths. Test files of this package count as caller code.
func isInternalFrame(frame runtime.Frame) bool {
	if strings.HasPrefix(frame.Function, "runtime.") {
		return true
	}
	return strings.HasPrefix(frame.Function, sdkPackage+".") &&
		!strings.HasSuffix(frame.File, "_test.go")
}
