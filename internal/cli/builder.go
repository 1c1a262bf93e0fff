package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/sznuper/browsertime/internal/config"
	"github.com/sznuper/browsertime/internal/ctxlog"
	"github.com/sznuper/browsertime/internal/failure"
	"github.com/sznuper/browsertime/internal/notify"
	"github.com/sznuper/browsertime/internal/report"
)

// Builder turns a parsed Request into a validated Run.
type Builder interface {
	Build(ctx context.Context, req *Request) (*Run, error)
}

// Run is a fully validated timing run with its output destination open.
type Run struct {
	URL        *url.URL
	Options    config.Options
	ConfigPath string
	Output     *config.Destination
}

// Timeout is the page load timeout.
func (r *Run) Timeout() time.Duration {
	return time.Duration(r.Options.Timeout) * time.Second
}

// ReportOptions selects the serializer for the run.
func (r *Run) ReportOptions() report.Options {
	return report.Options{
		Format:      r.Options.Format,
		Pretty:      r.Options.Pretty,
		IncludeRuns: r.Options.Raw,
		Template:    r.Options.Template,
	}
}

// ConfigBuilder layers defaults, the config file and the command line, then
// validates the result. The output destination is opened last, so an
// invalid configuration never creates a file.
type ConfigBuilder struct {
	Stdout io.Writer
}

func (b *ConfigBuilder) Build(ctx context.Context, req *Request) (*Run, error) {
	log := ctxlog.FromContext(ctx)

	opts, path, err := config.Resolve(req.ConfigPath)
	if err != nil {
		return nil, failure.ArgumentSyntax(err)
	}
	if path != "" {
		log.Debug("config loaded", "path", path)
	}
	config.Overlay(&opts, req.Overrides, req.Set)

	if err := config.Validate(opts); err != nil {
		return nil, failure.ArgumentSyntax(err)
	}

	target, err := parseTarget(req.Target)
	if err != nil {
		return nil, failure.ArgumentSyntax(err)
	}

	if opts.Format == report.FormatTemplate {
		if err := report.CheckTemplate(opts.Template); err != nil {
			return nil, failure.ArgumentSyntax(fmt.Errorf("invalid template: %w", err))
		}
	}
	if err := notify.Validate(opts.Notify); err != nil {
		return nil, failure.ArgumentSyntax(err)
	}

	out, err := config.OpenOutput(opts.Output, b.Stdout)
	if err != nil {
		return nil, failure.OutputIO(err)
	}

	log.Debug("run configured",
		"url", target.String(),
		"browser", opts.Browser,
		"iterations", opts.Iterations,
		"timeout", opts.Timeout,
		"format", opts.Format,
	)
	return &Run{URL: target, Options: opts, ConfigPath: path, Output: out}, nil
}

func parseTarget(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid URL %q: must be an absolute http or https URL", raw)
	}
	return u, nil
}
