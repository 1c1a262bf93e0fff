// Package failure defines the closed set of failure kinds an invocation can
// end with. Collaborators raise these kinds; the dispatcher only ever hands
// *Error values to the reporter.
package failure

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// Kind classifies a failure. The order of the constants is the priority in
// which they are checked.
type Kind int

const (
	KindArgumentSyntax Kind = iota + 1
	KindOutputIO
	KindValidation
	KindUnknown
)

// BugReportURL is where users are asked to report unknown failures.
const BugReportURL = "https://github.com/tobli/browsertime/issues"

const bugReportPreamble = "An unknown error occurred!\nPlease attach the following information to a bug report at " + BugReportURL

func (k Kind) String() string {
	switch k {
	case KindArgumentSyntax:
		return "argument syntax"
	case KindOutputIO:
		return "output io"
	case KindValidation:
		return "validation"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a failure that has been classified into one Kind.
type Error struct {
	Kind    Kind
	Message string // user-facing line, already formatted for Kind
	Trace   string // diagnostic trace, only for KindUnknown
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// ArgumentSyntax classifies malformed command-line input.
func ArgumentSyntax(err error) *Error {
	return &Error{
		Kind:    KindArgumentSyntax,
		Message: "Error parsing command line options: " + detail(err),
		Cause:   err,
	}
}

// OutputIO classifies a failure to create or write the output destination.
func OutputIO(err error) *Error {
	return &Error{
		Kind:    KindOutputIO,
		Message: "Error creating output file: " + detail(err),
		Cause:   err,
	}
}

// Validation classifies a configuration the automation backend refused.
// The message is shown verbatim.
func Validation(message string, cause error) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: message,
		Cause:   cause,
	}
}

// Unknown classifies anything else. The trace holds the error chain and the
// stack at the point of classification.
func Unknown(err error) *Error {
	return &Error{
		Kind:    KindUnknown,
		Message: bugReportPreamble,
		Trace:   trace(err, debug.Stack()),
		Cause:   err,
	}
}

// Panic classifies a recovered panic value with the stack it was raised on.
func Panic(v any, stack []byte) *Error {
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", v)
	}
	return &Error{
		Kind:    KindUnknown,
		Message: bugReportPreamble,
		Trace:   trace(err, stack),
		Cause:   err,
	}
}

// Classify returns the *Error in err's chain, or wraps err as KindUnknown.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return Unknown(err)
}

// Is reports whether err carries a failure of the given kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}

func detail(err error) string {
	if err == nil {
		return "unknown cause"
	}
	return err.Error()
}

func trace(err error, stack []byte) string {
	var b strings.Builder
	if err == nil {
		b.WriteString("<nil error>\n")
	}
	for depth := 0; err != nil; depth++ {
		fmt.Fprintf(&b, "%s%T: %s\n", strings.Repeat("  ", depth), err, err)
		err = errors.Unwrap(err)
	}
	b.WriteString("\n")
	b.Write(stack)
	return b.String()
}
