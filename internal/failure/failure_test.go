package failure

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestArgumentSyntax_Message(t *testing.T) {
	err := ArgumentSyntax(errors.New("unknown flag: --nope"))
	if err.Kind != KindArgumentSyntax {
		t.Errorf("kind = %v, want %v", err.Kind, KindArgumentSyntax)
	}
	if want := "Error parsing command line options: unknown flag: --nope"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestOutputIO_Message(t *testing.T) {
	err := OutputIO(errors.New("open /nope/out.json: no such file or directory"))
	if want := "Error creating output file: open /nope/out.json: no such file or directory"; err.Message != want {
		t.Errorf("message = %q, want %q", err.Message, want)
	}
	if err.Trace != "" {
		t.Errorf("trace = %q, want empty", err.Trace)
	}
}

func TestValidation_Verbatim(t *testing.T) {
	msg := "Could not find a valid browser binary"
	err := Validation(msg, nil)
	if err.Message != msg {
		t.Errorf("message = %q, want %q", err.Message, msg)
	}
}

func TestUnknown_PreambleAndTrace(t *testing.T) {
	cause := errors.New("socket closed")
	err := Unknown(fmt.Errorf("collecting timings: %w", cause))

	if !strings.HasPrefix(err.Message, "An unknown error occurred!") {
		t.Errorf("message = %q, want bug report preamble", err.Message)
	}
	if !strings.Contains(err.Message, BugReportURL) {
		t.Errorf("message = %q, missing %s", err.Message, BugReportURL)
	}
	if !strings.Contains(err.Trace, "collecting timings: socket closed") {
		t.Errorf("trace missing outer error: %q", err.Trace)
	}
	if !strings.Contains(err.Trace, "  *errors.errorString: socket closed") {
		t.Errorf("trace missing wrapped cause: %q", err.Trace)
	}
	if !strings.Contains(err.Trace, "goroutine") {
		t.Errorf("trace missing stack: %q", err.Trace)
	}
	if !errors.Is(err, cause) {
		t.Error("Unknown should unwrap to its cause")
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}

	classified := OutputIO(errors.New("disk full"))
	wrapped := fmt.Errorf("serializing: %w", classified)
	if got := Classify(wrapped); got != classified {
		t.Errorf("Classify(wrapped) = %v, want the wrapped *Error", got)
	}

	got := Classify(errors.New("boom"))
	if got.Kind != KindUnknown {
		t.Errorf("kind = %v, want %v", got.Kind, KindUnknown)
	}
}

func TestPanic(t *testing.T) {
	err := Panic("index out of range", []byte("goroutine 1 [running]:\n"))
	if err.Kind != KindUnknown {
		t.Errorf("kind = %v, want %v", err.Kind, KindUnknown)
	}
	if !strings.Contains(err.Trace, "panic: index out of range") {
		t.Errorf("trace = %q, missing panic value", err.Trace)
	}
	if !strings.Contains(err.Trace, "goroutine 1 [running]") {
		t.Errorf("trace = %q, missing stack", err.Trace)
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Validation("nope", nil))
	if !Is(err, KindValidation) {
		t.Error("Is(validation) = false, want true")
	}
	if Is(err, KindOutputIO) {
		t.Error("Is(output io) = true, want false")
	}
	if Is(errors.New("plain"), KindUnknown) {
		t.Error("unclassified errors carry no kind")
	}
}
