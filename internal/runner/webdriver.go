package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sznuper/browsertime/internal/config"
	"github.com/sznuper/browsertime/internal/failure"
	"github.com/sznuper/browsertime/internal/webdriver"
)

// WebDriver opens pages as W3C WebDriver sessions.
type WebDriver struct {
	Client       *webdriver.Client
	Capabilities webdriver.Capabilities
}

// Open starts a browser session. A driver that refuses the requested
// browser or capabilities yields a validation failure carrying the
// driver's message.
func (d *WebDriver) Open(ctx context.Context) (Page, error) {
	s, err := d.Client.NewSession(ctx, d.Capabilities)
	if err != nil {
		var we *webdriver.Error
		if webdriver.IsInvalidConfiguration(err) && errors.As(err, &we) {
			msg := we.Message
			if msg == "" {
				msg = we.Error()
			}
			return nil, failure.Validation(msg, err)
		}
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	return &webDriverPage{session: s}, nil
}

type webDriverPage struct {
	session *webdriver.Session
}

func (p *webDriverPage) Load(ctx context.Context, url string, timeout time.Duration) error {
	if err := p.session.SetTimeouts(ctx, webdriver.Timeouts{PageLoad: timeout, Script: timeout}); err != nil {
		return fmt.Errorf("setting timeouts: %w", err)
	}
	err := p.session.Navigate(ctx, url)
	var we *webdriver.Error
	if errors.As(err, &we) && we.Code == webdriver.CodeTimeout {
		return fmt.Errorf("page load timed out after %s: %w", timeout, err)
	}
	return err
}

func (p *webDriverPage) Eval(ctx context.Context, script string, out any) error {
	return p.session.ExecuteScript(ctx, script, nil, out)
}

func (p *webDriverPage) Browser() (string, string) {
	return p.session.BrowserName(), p.session.BrowserVersion()
}

func (p *webDriverPage) Close(ctx context.Context) error {
	return p.session.Delete(ctx)
}

// Capabilities translates run options into WebDriver capabilities. Safari
// has no headless mode and ignores the window size and user agent options.
func Capabilities(opts config.Options) webdriver.Capabilities {
	caps := webdriver.Capabilities{"pageLoadStrategy": "normal"}
	width, height, sized := opts.Window()

	switch opts.Browser {
	case "chrome", "edge":
		var args []string
		if opts.Headless {
			args = append(args, "--headless=new")
		}
		if sized {
			args = append(args, fmt.Sprintf("--window-size=%d,%d", width, height))
		}
		if opts.UserAgent != "" {
			args = append(args, "--user-agent="+opts.UserAgent)
		}

		caps["browserName"] = "chrome"
		key := "goog:chromeOptions"
		if opts.Browser == "edge" {
			caps["browserName"] = "MicrosoftEdge"
			key = "ms:edgeOptions"
		}
		if len(args) > 0 {
			caps[key] = map[string]any{"args": args}
		}

	case "safari":
		caps["browserName"] = "safari"

	default:
		caps["browserName"] = "firefox"
		ff := map[string]any{}
		var args []string
		if opts.Headless {
			args = append(args, "-headless")
		}
		if sized {
			args = append(args, fmt.Sprintf("--width=%d", width), fmt.Sprintf("--height=%d", height))
		}
		if len(args) > 0 {
			ff["args"] = args
		}
		if opts.UserAgent != "" {
			ff["prefs"] = map[string]any{"general.useragent.override": opts.UserAgent}
		}
		if len(ff) > 0 {
			caps["moz:firefoxOptions"] = ff
		}
	}
	return caps
}
