// Package notify sends a one-line run summary through shoutrrr service URLs.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/sznuper/browsertime/internal/ctxlog"
	"github.com/sznuper/browsertime/internal/report"
	"github.com/sznuper/browsertime/internal/runner"
)

// DefaultTemplate is the summary sent when Sender has no template.
const DefaultTemplate = `browsertime {{.URL}} ({{.Browser.Name}} {{.Browser.Version}}): ` +
	`pageLoadTime median {{ms (stat "pageLoadTime").Median}}, p90 {{ms (stat "pageLoadTime").P90}} over {{.Iterations}} runs`

// Sender delivers run summaries.
type Sender struct {
	// Template renders the message from a report.Document.
	Template string
	// Params are passed to every service, e.g. a title.
	Params map[string]string
}

// Message renders the summary for s.
func (n *Sender) Message(s *runner.Session) (string, error) {
	tmpl := n.Template
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	return report.Render(tmpl, report.NewDocument(s, false))
}

// Notify sends the summary of s to every URL. Each URL is tried even when
// an earlier one fails; the failures are returned together.
func (n *Sender) Notify(ctx context.Context, urls []string, s *runner.Session) error {
	if len(urls) == 0 {
		return nil
	}
	log := ctxlog.FromContext(ctx)

	msg, err := n.Message(s)
	if err != nil {
		return fmt.Errorf("rendering notification: %w", err)
	}

	var errs []error
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := send(u, msg, n.Params); err != nil {
			errs = append(errs, err)
			continue
		}
		log.Debug("notification sent", "service", service(u))
	}
	return errors.Join(errs...)
}

func send(rawURL, msg string, params map[string]string) error {
	sender, err := shoutrrr.CreateSender(rawURL)
	if err != nil {
		return fmt.Errorf("creating sender for %s: %w", service(rawURL), err)
	}

	p := make(types.Params, len(params))
	for k, v := range params {
		p[k] = v
	}
	for _, e := range sender.Send(msg, &p) {
		if e != nil {
			return fmt.Errorf("sending to %s: %w", service(rawURL), e)
		}
	}
	return nil
}

// Validate checks that every URL names a known service with a valid
// configuration, without sending anything.
func Validate(urls []string) error {
	for _, u := range urls {
		if u == "" {
			return fmt.Errorf("notify URL is empty")
		}
		if _, err := shoutrrr.CreateSender(u); err != nil {
			return fmt.Errorf("invalid notify URL for %s: %w", service(u), err)
		}
	}
	return nil
}
