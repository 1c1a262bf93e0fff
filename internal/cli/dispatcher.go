package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"runtime/debug"
	"slices"
	"time"

	"github.com/sznuper/browsertime/internal/ctxlog"
	"github.com/sznuper/browsertime/internal/failure"
	"github.com/sznuper/browsertime/internal/report"
	"github.com/sznuper/browsertime/internal/runner"
)

// Backend times page loads.
type Backend interface {
	Run(ctx context.Context, target *url.URL, iterations int, timeout time.Duration) (*runner.Session, error)
}

// BackendFactory builds the backend for a validated run.
type BackendFactory func(run *Run) (Backend, error)

// SerializerFactory builds the report serializer writing to w.
type SerializerFactory func(w io.Writer, opts report.Options) (report.Serializer, error)

// Notifier sends a run summary to notification services.
type Notifier interface {
	Notify(ctx context.Context, urls []string, s *runner.Session) error
}

// Dispatcher runs one invocation: it acts on exactly one of help, version
// or a timing run and classifies every failure into a failure.Kind. It
// holds no state between calls to Execute.
type Dispatcher struct {
	Parser      Parser
	Builder     Builder
	Backends    BackendFactory
	Serializers SerializerFactory
	Notifier    Notifier // optional

	Version string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Execute runs the invocation described by args. It never panics; a panic
// in a collaborator becomes a KindUnknown outcome.
func (d *Dispatcher) Execute(ctx context.Context, args []string) (out Outcome) {
	defer func() {
		if v := recover(); v != nil {
			out = failed(failure.Panic(v, debug.Stack()))
		}
	}()

	intent, err := d.Parser.Parse(args)
	if err != nil {
		return failed(argumentSyntax(err))
	}

	switch intent.Action {
	case ActionHelp:
		return Outcome{ShowUsage: true}
	case ActionVersion:
		if _, err := fmt.Fprintln(d.Stdout, d.Version); err != nil {
			return failed(failure.Unknown(fmt.Errorf("writing version: %w", err)))
		}
		return Outcome{}
	}

	if intent.Request == nil {
		return failed(failure.Unknown(errors.New("run requested without a request")))
	}
	ctx = ctxlog.WithLogger(ctx, newLogger(d.Stderr, intent.Request.Verbose))
	if err := d.run(ctx, intent.Request); err != nil {
		return failed(err)
	}
	return Outcome{}
}

func (d *Dispatcher) run(ctx context.Context, req *Request) *failure.Error {
	log := ctxlog.FromContext(ctx)

	// Stage 1: Build and validate the configuration, opening the output.
	run, err := d.Builder.Build(ctx, req)
	if err != nil {
		return failure.Classify(err)
	}
	defer func() {
		if err := run.Output.Close(); err != nil {
			log.Warn("closing output failed", "error", err)
		}
	}()

	serializer, err := d.Serializers(run.Output, run.ReportOptions())
	if err != nil {
		return restrict(fmt.Errorf("creating serializer: %w", err), failure.KindArgumentSyntax, failure.KindOutputIO)
	}

	// Stage 2: Time the page.
	backend, err := d.Backends(run)
	if err != nil {
		return restrict(fmt.Errorf("creating backend: %w", err), failure.KindValidation)
	}
	session, err := backend.Run(ctx, run.URL, run.Options.Iterations, run.Timeout())
	if err != nil {
		log.Debug("timing run failed", "error", err)
		return restrict(err, failure.KindValidation)
	}

	// Stage 3: Write the report.
	if err := serializer.Serialize(session); err != nil {
		return restrict(err, failure.KindOutputIO)
	}
	if err := run.Output.Commit(); err != nil {
		return failure.OutputIO(err)
	}
	if run.Output.Path != "" {
		log.Info("report written", "path", run.Output.Path)
	}

	// Stage 4: Notify. Delivery is best effort.
	if d.Notifier != nil && len(run.Options.Notify) > 0 {
		if err := d.Notifier.Notify(ctx, run.Options.Notify, session); err != nil {
			log.Warn("notification failed", "error", err)
		}
	}
	return nil
}

// restrict classifies err, keeping its kind only when the stage that raised
// it may produce that kind. Anything else is unknown.
func restrict(err error, allowed ...failure.Kind) *failure.Error {
	fe := failure.Classify(err)
	if fe.Kind == failure.KindUnknown || slices.Contains(allowed, fe.Kind) {
		return fe
	}
	return failure.Unknown(err)
}

func argumentSyntax(err error) *failure.Error {
	var fe *failure.Error
	if errors.As(err, &fe) && fe.Kind == failure.KindArgumentSyntax {
		return fe
	}
	return failure.ArgumentSyntax(err)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
