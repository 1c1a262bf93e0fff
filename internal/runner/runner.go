package runner

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sznuper/browsertime/internal/ctxlog"
)

const loadEventScript = `return window.performance.timing.loadEventEnd > 0;`

const collectScript = `
var timing = window.performance.timing;
var entries = function (type) {
  if (!window.performance.getEntriesByType) {
    return [];
  }
  return window.performance.getEntriesByType(type).map(function (e) {
    return {name: e.name, startTime: e.startTime, duration: e.duration};
  });
};
return {
  timing: timing.toJSON ? timing.toJSON() : timing,
  marks: entries('mark'),
  measures: entries('measure'),
  userAgent: window.navigator.userAgent
};`

// Driver opens browser pages.
type Driver interface {
	Open(ctx context.Context) (Page, error)
}

// Page is one browser session. It is opened fresh for every iteration so
// no cache or connection state carries over between page loads.
type Page interface {
	Load(ctx context.Context, url string, timeout time.Duration) error
	Eval(ctx context.Context, script string, out any) error
	Browser() (name, version string)
	Close(ctx context.Context) error
}

// Runner orchestrates the open → load → collect → close cycle for each
// iteration of a timing session.
type Runner struct {
	driver Driver
	now    func() time.Time
	poll   time.Duration
}

// New creates a Runner that opens pages with driver.
func New(driver Driver) *Runner {
	return &Runner{driver: driver, now: time.Now, poll: 100 * time.Millisecond}
}

type collected struct {
	Timing    NavigationTiming `json:"timing"`
	Marks     []UserTiming     `json:"marks"`
	Measures  []UserTiming     `json:"measures"`
	UserAgent string           `json:"userAgent"`
}

// Run loads target iterations times, one page load at a time, and returns
// the completed session. Any failed iteration fails the session.
func (r *Runner) Run(ctx context.Context, target *url.URL, iterations int, timeout time.Duration) (*Session, error) {
	log := ctxlog.FromContext(ctx).With("url", target.String())
	start := r.now()

	session := &Session{
		ID:        uuid.NewString(),
		URL:       target.String(),
		StartedAt: start.UTC(),
	}

	for n := 1; n <= iterations; n++ {
		it, browser, err := r.iteration(ctx, log.With("iteration", n), target.String(), n, timeout)
		if err != nil {
			return nil, fmt.Errorf("iteration %d of %d: %w", n, iterations, err)
		}
		if n == 1 {
			session.Browser = browser
		}
		session.Iterations = append(session.Iterations, it)
	}

	session.Duration = r.now().Sub(start)
	session.Statistics = Summarize(session.Iterations)
	log.Info("session completed", "iterations", iterations, "duration", session.Duration)
	return session, nil
}

func (r *Runner) iteration(ctx context.Context, log *slog.Logger, target string, n int, timeout time.Duration) (Iteration, Browser, error) {
	var browser Browser

	// Stage 1: Start the browser.
	log.Info("starting browser")
	page, err := r.driver.Open(ctx)
	if err != nil {
		log.Debug("browser start failed", "error", err)
		return Iteration{}, browser, err
	}
	defer func() {
		if err := page.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn("closing browser failed", "error", err)
		}
	}()
	browser.Name, browser.Version = page.Browser()
	log.Debug("browser started", "browser", browser.Name, "version", browser.Version)

	// Stage 2: Load the page and wait for the load event to finish.
	log.Info("loading page", "timeout", timeout)
	if err := page.Load(ctx, target, timeout); err != nil {
		log.Debug("page load failed", "error", err)
		return Iteration{}, browser, fmt.Errorf("loading %s: %w", target, err)
	}
	if err := r.waitForLoadEvent(ctx, page, timeout); err != nil {
		log.Debug("load event wait failed", "error", err)
		return Iteration{}, browser, fmt.Errorf("waiting for load event: %w", err)
	}

	// Stage 3: Collect navigation and user timings.
	log.Info("collecting timings")
	var raw collected
	if err := page.Eval(ctx, collectScript, &raw); err != nil {
		log.Debug("timing collection failed", "error", err)
		return Iteration{}, browser, fmt.Errorf("collecting timings: %w", err)
	}
	if raw.Timing.NavigationStart == 0 {
		return Iteration{}, browser, fmt.Errorf("collecting timings: page reported no navigation timing")
	}
	browser.UserAgent = raw.UserAgent

	it := Iteration{
		Number:   n,
		Timing:   raw.Timing,
		Metrics:  raw.Timing.Metrics(),
		Marks:    raw.Marks,
		Measures: raw.Measures,
	}
	log.Debug("timings collected", "page_load_ms", it.Metrics[MetricPageLoadTime], "marks", len(it.Marks), "measures", len(it.Measures))
	return it, browser, nil
}

func (r *Runner) waitForLoadEvent(ctx context.Context, page Page, timeout time.Duration) error {
	deadline := r.now().Add(timeout)
	for {
		var done bool
		if err := page.Eval(ctx, loadEventScript, &done); err != nil {
			return err
		}
		if done {
			return nil
		}
		if r.now().After(deadline) {
			return fmt.Errorf("load event did not finish within %s", timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.poll):
		}
	}
}
