package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sznuper/browsertime/internal/cli"
	"github.com/sznuper/browsertime/internal/notify"
	"github.com/sznuper/browsertime/internal/report"
	"github.com/sznuper/browsertime/internal/runner"
	"github.com/sznuper/browsertime/internal/webdriver"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// sessionStartSlack covers browser startup on top of the page load timeout
// for every WebDriver request.
const sessionStartSlack = 30 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns its exit status.
func run(args []string, stdout, stderr io.Writer) int {
	parser := cli.NewParser()
	d := &cli.Dispatcher{
		Parser:      parser,
		Builder:     &cli.ConfigBuilder{Stdout: stdout},
		Backends:    newBackend,
		Serializers: report.New,
		Notifier:    &notify.Sender{},
		Version:     version,
		Stdout:      stdout,
		Stderr:      stderr,
	}
	r := &cli.Reporter{
		Stderr: stderr,
		Usage:  parser.Usage,
		Color:  isTerminal(stderr),
	}
	return int(r.Report(d.Execute(context.Background(), args)))
}

func newBackend(run *cli.Run) (cli.Backend, error) {
	hc := &http.Client{Timeout: run.Timeout() + sessionStartSlack}
	client := webdriver.New(run.Options.WebDriverURL, webdriver.WithHTTPClient(hc))
	return runner.New(&runner.WebDriver{
		Client:       client,
		Capabilities: runner.Capabilities(run.Options),
	}), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
