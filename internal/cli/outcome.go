package cli

import "github.com/sznuper/browsertime/internal/failure"

// ExitStatus is the process exit code of an invocation.
type ExitStatus int

const (
	ExitOK    ExitStatus = 0
	ExitError ExitStatus = 1
)

// Outcome is the single result of an invocation. A nil Err is success.
// ShowUsage is set for command-line errors and for explicit help.
type Outcome struct {
	Err       *failure.Error
	ShowUsage bool
}

// Failed reports whether the invocation failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Status is the exit status for the outcome.
func (o Outcome) Status() ExitStatus {
	if o.Failed() {
		return ExitError
	}
	return ExitOK
}

func failed(err *failure.Error) Outcome {
	return Outcome{Err: err, ShowUsage: err.Kind == failure.KindArgumentSyntax}
}
