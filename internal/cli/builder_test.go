package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sznuper/browsertime/internal/failure"
)

// isolateConfig keeps Build from finding a config file on the host.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func build(t *testing.T, stdout *bytes.Buffer, args ...string) (*Run, error) {
	t.Helper()
	intent, err := NewParser().Parse(args)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	b := &ConfigBuilder{Stdout: stdout}
	return b.Build(context.Background(), intent.Request)
}

func TestBuild_Defaults(t *testing.T) {
	isolateConfig(t)
	var stdout bytes.Buffer
	run, err := build(t, &stdout, "https://example.com/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer run.Output.Close()

	if run.URL.Host != "example.com" || run.URL.Path != "/page" {
		t.Errorf("url = %v", run.URL)
	}
	if run.Options.Iterations != 3 || run.Timeout() != 60*time.Second || run.Options.Browser != "firefox" {
		t.Errorf("options = %+v", run.Options)
	}
	if run.ConfigPath != "" {
		t.Errorf("config path = %q, want none", run.ConfigPath)
	}
	if run.Output.Path != "" {
		t.Errorf("output = %q, want stdout", run.Output.Path)
	}
	if opts := run.ReportOptions(); opts.Format != "json" || opts.IncludeRuns || opts.Pretty {
		t.Errorf("report options = %+v", opts)
	}
}

func TestBuild_Precedence(t *testing.T) {
	dir := isolateConfig(t)
	t.Setenv("BT_GRID", "http://grid:4444")
	path := filepath.Join(dir, "bt.yaml")
	cfg := "iterations: 7\nbrowser: chrome\nwebdriver_url: ${BT_GRID}\nraw: true\n"
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	run, err := build(t, &stdout, "-c", path, "--browser", "edge", "https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer run.Output.Close()

	if run.Options.Iterations != 7 {
		t.Errorf("iterations = %d, want 7 from the file", run.Options.Iterations)
	}
	if run.Options.Browser != "edge" {
		t.Errorf("browser = %q, want the flag to win", run.Options.Browser)
	}
	if run.Options.WebDriverURL != "http://grid:4444" {
		t.Errorf("webdriver url = %q, want env expanded", run.Options.WebDriverURL)
	}
	if run.Options.Timeout != 60 {
		t.Errorf("timeout = %d, want the default", run.Options.Timeout)
	}
	if !run.ReportOptions().IncludeRuns {
		t.Error("raw from the file should include runs")
	}
	if run.ConfigPath != path {
		t.Errorf("config path = %q, want %q", run.ConfigPath, path)
	}
}

func TestBuild_DefaultConfigLocation(t *testing.T) {
	dir := isolateConfig(t)
	if err := os.MkdirAll(filepath.Join(dir, "browsertime"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "browsertime", "config.yaml"), []byte("timeout: 15\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	run, err := build(t, &stdout, "https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer run.Output.Close()
	if run.Timeout() != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", run.Timeout())
	}
}

func TestBuild_ArgumentSyntax(t *testing.T) {
	dir := isolateConfig(t)
	badConfig := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badConfig, []byte("iterations: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	unknownKey := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknownKey, []byte("browsers: chrome\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "report.json")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"zero iterations", []string{"-n", "0"}, "iterations must be at least 1"},
		{"unknown browser", []string{"-b", "netscape"}, "browser must be one of firefox, chrome, edge, safari"},
		{"bad window size", []string{"-w", "big"}, "window_size must be WIDTHxHEIGHT"},
		{"unknown format", []string{"-f", "xml"}, "format must be one of json, yaml, template"},
		{"template without template", []string{"-f", "template"}, "template is required"},
		{"broken template", []string{"-f", "template", "--template", "{{.URL"}, "invalid template"},
		{"unknown template func", []string{"-f", "template", "--template", "{{nope .URL}}"}, `function "nope" not defined`},
		{"bad webdriver url", []string{"--webdriver-url", "not a url"}, "webdriver_url must be a URL"},
		{"bad notify url", []string{"--notify", "nope://x"}, "invalid notify URL for nope"},
		{"missing config", []string{"-c", filepath.Join(dir, "none.yaml")}, "config file not found"},
		{"malformed config", []string{"-c", badConfig}, "parsing config"},
		{"unknown config key", []string{"-c", unknownKey}, `unknown key "browsers"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			args := append(append([]string{"-o", out}, tt.args...), "https://example.com/")
			_, err := build(t, &stdout, args...)
			if !failure.Is(err, failure.KindArgumentSyntax) {
				t.Fatalf("error = %v, want argument syntax", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
			assertNoFiles(t, out)
		})
	}
}

func TestBuild_TemplateCheckedForSyntaxOnly(t *testing.T) {
	isolateConfig(t)
	var stdout bytes.Buffer
	for _, tmpl := range []string{"{{(index .Runs 0).Number}}", "{{div 1000 .Iterations}}"} {
		run, err := build(t, &stdout, "-f", "template", "--raw", "--template", tmpl, "https://example.com/")
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tmpl, err)
			continue
		}
		_ = run.Output.Close()
	}
}

func TestBuild_InvalidTarget(t *testing.T) {
	isolateConfig(t)
	for _, target := range []string{"example.com", "/index.html", "ftp://example.com/", "https://"} {
		var stdout bytes.Buffer
		_, err := build(t, &stdout, target)
		if !failure.Is(err, failure.KindArgumentSyntax) {
			t.Errorf("%q: error = %v, want argument syntax", target, err)
		}
	}
}

func TestBuild_OutputIO(t *testing.T) {
	dir := isolateConfig(t)
	var stdout bytes.Buffer
	_, err := build(t, &stdout, "-o", filepath.Join(dir, "missing", "r.json"), "https://example.com/")
	if !failure.Is(err, failure.KindOutputIO) {
		t.Fatalf("error = %v, want output io", err)
	}
	_, err = build(t, &stdout, "-o", dir, "https://example.com/")
	if !failure.Is(err, failure.KindOutputIO) {
		t.Fatalf("error = %v, want output io for a directory", err)
	}
}

func assertNoFiles(t *testing.T, path string) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), filepath.Base(path)) {
			t.Errorf("found %s, want no output file", e.Name())
		}
	}
}
