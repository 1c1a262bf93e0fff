package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/sznuper/browsertime/internal/failure"
)

// Reporter renders an Outcome for the user and picks the exit status.
type Reporter struct {
	Stderr io.Writer
	Usage  func(w io.Writer)
	// Color styles the failure message line when the terminal supports it.
	// Traces and usage stay plain.
	Color bool
}

// Report writes the outcome to the error stream: the failure message, the
// diagnostic trace for unknown failures, then usage when requested.
func (r *Reporter) Report(o Outcome) ExitStatus {
	if o.Err != nil {
		msg := o.Err.Message
		if r.Color {
			msg = r.style(o.Err.Kind).Render(msg)
		}
		fmt.Fprintln(r.Stderr, msg)
		if o.Err.Kind == failure.KindUnknown && o.Err.Trace != "" {
			fmt.Fprintln(r.Stderr, o.Err.Trace)
		}
	}
	if o.ShowUsage && r.Usage != nil {
		if o.Err != nil {
			fmt.Fprintln(r.Stderr)
		}
		r.Usage(r.Stderr)
	}
	return o.Status()
}

func (r *Reporter) style(kind failure.Kind) lipgloss.Style {
	renderer := lipgloss.NewRenderer(r.Stderr)
	switch kind {
	case failure.KindUnknown:
		return renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	case failure.KindValidation:
		return renderer.NewStyle().Foreground(lipgloss.Color("11"))
	default:
		return renderer.NewStyle().Foreground(lipgloss.Color("9"))
	}
}
