package flytrap

import (
	"errors"
	"testing"
)

func TestFingerprint_Stability(t *testing.T) {
	event := NewErrorEvent(errors.New("connection timed out"), "")
	frames := []StackFrame{
		{File: "/app/main.go", Line: 42, Function: "main.doSomething"},
		{File: "/app/main.go", Line: 30, Function: "main.helper"},
	}

	fp1 := Fingerprint(event, frames)
	fp2 := Fingerprint(event, frames)

	if fp1 != fp2 {
		t.Errorf("Same event produced different fingerprints: %q vs %q", fp1, fp2)
	}
	if len(fp1) != 32 {
		t.Errorf("Fingerprint length = %d, want 32", len(fp1))
	}
}

func TestFingerprint_IgnoresLinesAndMessages(t *testing.T) {
	e1 := NewErrorEvent(errors.New("user 1 not found"), "")
	e2 := NewErrorEvent(errors.New("user 2 not found"), "")

	f1 := []StackFrame{{File: "/app/main.go", Line: 42, Column: 3, Function: "main.lookup"}}
	f2 := []StackFrame{{File: "/app/main.go", Line: 99, Column: 8, Function: "main.lookup"}}

	if Fingerprint(e1, f1) != Fingerprint(e2, f2) {
		t.Error("Line numbers and messages should not affect the fingerprint")
	}
}

func TestFingerprint_DifferentFunctions(t *testing.T) {
	event := NewErrorEvent(errors.New("x"), "")

	fp1 := Fingerprint(event, []StackFrame{{File: "/a.go", Line: 1, Function: "main.a"}})
	fp2 := Fingerprint(event, []StackFrame{{File: "/a.go", Line: 1, Function: "main.b"}})

	if fp1 == fp2 {
		t.Error("Different functions should produce different fingerprints")
	}
}

func TestFingerprint_OnlyFirstThreeFrames(t *testing.T) {
	event := NewErrorEvent(errors.New("x"), "")
	base := []StackFrame{
		{File: "/a.go", Function: "main.a"},
		{File: "/a.go", Function: "main.b"},
		{File: "/a.go", Function: "main.c"},
	}

	fp1 := Fingerprint(event, append(base, StackFrame{File: "/a.go", Function: "main.d"}))
	fp2 := Fingerprint(event, append(base, StackFrame{File: "/a.go", Function: "main.e"}))

	if fp1 != fp2 {
		t.Error("Frames beyond the third should not affect the fingerprint")
	}
}

func TestFingerprint_NormalizesClosures(t *testing.T) {
	event := NewErrorEvent(errors.New("x"), "")

	fp1 := Fingerprint(event, []StackFrame{{File: "/a.go", Function: "main.run.func1"}})
	fp2 := Fingerprint(event, []StackFrame{{File: "/a.go", Function: "main.run.func2.3"}})

	if fp1 != fp2 {
		t.Error("Closure suffixes should be normalized")
	}
}

func TestFingerprint_RejectionIgnoresValue(t *testing.T) {
	if Fingerprint(NewRejectionEvent("a"), nil) != Fingerprint(NewRejectionEvent(7), nil) {
		t.Error("Rejection values should not affect the fingerprint")
	}
}
