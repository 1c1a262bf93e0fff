// Package cli implements the invocation lifecycle: parsing the command
// line, dispatching to help, version or a timing run, and reporting the
// single outcome of the invocation.
package cli

import "github.com/sznuper/browsertime/internal/config"

// Action is what an invocation was asked to do.
type Action int

const (
	ActionRun Action = iota
	ActionHelp
	ActionVersion
)

func (a Action) String() string {
	switch a {
	case ActionHelp:
		return "help"
	case ActionVersion:
		return "version"
	default:
		return "run"
	}
}

// Intent is the parsed command line. Request is only set for ActionRun.
type Intent struct {
	Action  Action
	Request *Request
}

// Request is a timing run as typed on the command line, before the config
// file is read or anything is validated.
type Request struct {
	Target     string
	ConfigPath string
	Verbose    bool

	// Overrides holds the option flags; only keys in Changed were given.
	Overrides config.Options
	Changed   map[string]bool
}

// Set reports whether the option with config key was given on the command
// line.
func (r *Request) Set(key string) bool {
	return r.Changed[key]
}
