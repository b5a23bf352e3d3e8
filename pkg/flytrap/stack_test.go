package flytrap

import (
	"strings"
	"testing"
)

func TestParseStackTrace_GoTrace(t *testing.T) {
	trace := `goroutine 1 [running]:
main.doSomething()
	/app/main.go:42 +0x123
main.(*Server).handle(0xc000010000)
	/app/server.go:30 +0x456
created by main.main in goroutine 1
	/app/main.go:10 +0x789`

	frames := ParseStackTrace(trace)

	want := []StackFrame{
		{File: "/app/main.go", Line: 42, Column: 0, Function: "main.doSomething"},
		{File: "/app/server.go", Line: 30, Column: 0, Function: "main.(*Server).handle"},
		{File: "/app/main.go", Line: 10, Column: 0, Function: "main.main"},
	}
	if len(frames) != len(want) {
		t.Fatalf("Expected %d frames, got %d: %+v", len(want), len(frames), frames)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame[%d] = %+v, want %+v", i, frames[i], want[i])
		}
	}
}

func TestParseStackTrace_V8Trace(t *testing.T) {
	trace := `Error: boom
    at getText (/srv/app/index.js:12:5)
    at /srv/app/util.js:3:17
    at Array.map (native)
    at process.processTicksAndRejections (node:internal/process/task_queues:95:5)
    at Object.<anonymous> (/srv/app/main.js:1:1)`

	frames := ParseStackTrace(trace)

	want := []StackFrame{
		{File: "/srv/app/index.js", Line: 12, Column: 5, Function: "getText"},
		{File: "/srv/app/util.js", Line: 3, Column: 17},
		{File: "/srv/app/main.js", Line: 1, Column: 1, Function: "Object.<anonymous>"},
	}
	if len(frames) != len(want) {
		t.Fatalf("Expected %d frames, got %d: %+v", len(want), len(frames), frames)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame[%d] = %+v, want %+v", i, frames[i], want[i])
		}
	}
}

func TestParseStackTrace_MissingColumnDefaultsToZero(t *testing.T) {
	frames := ParseStackTrace("    at load (/srv/app/config.js:7)")

	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if frames[0].Line != 7 || frames[0].Column != 0 {
		t.Errorf("frame = %+v, want line 7 column 0", frames[0])
	}
}

func TestParseStackTrace_SkipsAutogeneratedFrames(t *testing.T) {
	trace := `goroutine 7 [running]:
main.(*T).Run(...)
	<autogenerated>:1
main.run()
	/app/run.go:5 +0x10`

	frames := ParseStackTrace(trace)

	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d: %+v", len(frames), frames)
	}
	if frames[0].File != "/app/run.go" {
		t.Errorf("File = %q, want %q", frames[0].File, "/app/run.go")
	}
}

func TestParseStackTrace_EmptyInput(t *testing.T) {
	if frames := ParseStackTrace(""); frames != nil {
		t.Errorf("Expected nil for empty trace, got %+v", frames)
	}
	if frames := ParseStackTrace("   \n\t\n"); frames != nil {
		t.Errorf("Expected nil for blank trace, got %+v", frames)
	}
}

func TestParseStackTrace_UnparseableLinesSkipped(t *testing.T) {
	trace := "something went wrong\nno frames here\n\tnot-a-location\n"

	frames := ParseStackTrace(trace)

	if len(frames) != 0 {
		t.Errorf("Expected 0 frames, got %d: %+v", len(frames), frames)
	}
}

func TestParseStackTrace_WindowsLineEndings(t *testing.T) {
	trace := "main.main()\r\n\t/app/main.go:3 +0x1\r\n"

	frames := ParseStackTrace(trace)

	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if frames[0].Line != 3 || frames[0].Function != "main.main" {
		t.Errorf("frame = %+v", frames[0])
	}
}

func TestParseStackTrace_RealStack(t *testing.T) {
	frames := ParseStackTrace(currentStack())

	if len(frames) == 0 {
		t.Fatal("Expected frames from a real stack trace")
	}
	found := false
	for _, f := range frames {
		if f.Function == "github.com/strongdm/ai-flytrap-go/pkg/flytrap.currentStack" {
			found = true
		}
		if f.Line <= 0 {
			t.Errorf("frame %+v has non-positive line", f)
		}
	}
	if !found {
		t.Errorf("Expected currentStack frame in %+v", frames)
	}
}

func TestCaptureStack_StartsAtCaller(t *testing.T) {
	frames := ParseStackTrace(captureStack())

	if len(frames) == 0 {
		t.Fatal("Expected frames from captureStack")
	}
	want := "github.com/strongdm/ai-flytrap-go/pkg/flytrap.TestCaptureStack_StartsAtCaller"
	if frames[0].Function != want {
		t.Errorf("first frame = %q, want %q", frames[0].Function, want)
	}
	if !strings.HasSuffix(frames[0].File, "stack_test.go") {
		t.Errorf("first frame file = %q", frames[0].File)
	}
}
