package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// Parser turns raw arguments into an Intent and renders usage text.
type Parser interface {
	Parse(args []string) (Intent, error)
	Usage(w io.Writer)
}

const usageTemplate = `{{.Long}}

Usage:
  {{.UseLine}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
`

// CommandParser parses the browsertime command line with cobra. A fresh
// command is built for every call, so parsing keeps no state between
// invocations.
type CommandParser struct{}

// NewParser returns the command-line parser.
func NewParser() *CommandParser {
	return &CommandParser{}
}

type parsed struct {
	help       bool
	version    bool
	configPath string
	verbose    bool
	request    Request
}

func (p *CommandParser) command() (*cobra.Command, *parsed) {
	var v parsed
	cmd := &cobra.Command{
		Use:           "browsertime [flags] <url>",
		Short:         "Time page loads in a real browser",
		Long:          "browsertime loads a URL in a browser driven over WebDriver, collects\nnavigation and user timings, and writes a report with per-metric statistics.",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetUsageTemplate(usageTemplate)

	fs := cmd.Flags()
	fs.SortFlags = false
	fs.BoolVarP(&v.help, "help", "h", false, "show this help")
	fs.BoolVarP(&v.version, "version", "V", false, "print the version and exit")
	fs.StringVarP(&v.configPath, "config", "c", "", "config file path")
	fs.BoolVarP(&v.verbose, "verbose", "v", false, "log every stage of the run")
	registerOptionFlags(fs, &v.request.Overrides)

	return cmd, &v
}

// Parse reads flags and the target URL. Help wins over version, and both
// win over a missing or extra URL argument.
func (p *CommandParser) Parse(args []string) (Intent, error) {
	cmd, v := p.command()
	if err := cmd.ParseFlags(args); err != nil {
		return Intent{}, err
	}

	switch {
	case v.help:
		return Intent{Action: ActionHelp}, nil
	case v.version:
		return Intent{Action: ActionVersion}, nil
	}

	rest := cmd.Flags().Args()
	if err := cmd.ValidateArgs(rest); err != nil {
		return Intent{}, err
	}

	req := v.request
	req.Target = rest[0]
	req.ConfigPath = v.configPath
	req.Verbose = v.verbose
	req.Changed = changedOptions(cmd.Flags())
	return Intent{Action: ActionRun, Request: &req}, nil
}

// Usage writes the usage text to w.
func (p *CommandParser) Usage(w io.Writer) {
	cmd, _ := p.command()
	_, _ = io.WriteString(w, cmd.UsageString())
}
