package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/sznuper/browsertime/internal/failure"
	"github.com/sznuper/browsertime/internal/runner"
)

func testSession() *runner.Session {
	return &runner.Session{
		ID:        "3f1c2b4e-0000-4000-8000-000000000001",
		URL:       "https://example.com/",
		Browser:   runner.Browser{Name: "firefox", Version: "128.0", UserAgent: "test-agent"},
		StartedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Duration:  2500 * time.Millisecond,
		Iterations: []runner.Iteration{
			{Number: 1, Metrics: map[string]float64{runner.MetricPageLoadTime: 500}},
			{Number: 2, Metrics: map[string]float64{runner.MetricPageLoadTime: 700}},
		},
		Statistics: map[string]runner.Statistic{
			runner.MetricPageLoadTime: {Samples: 2, Min: 500, Max: 700, Mean: 600, Median: 600, P90: 700},
		},
	}
}

func serialize(t *testing.T, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	s, err := New(&buf, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Serialize(testSession()); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	return buf.String()
}

func TestJSON_Compact(t *testing.T) {
	out := serialize(t, Options{Format: FormatJSON})

	if strings.Count(out, "\n") != 1 || !strings.HasSuffix(out, "}\n") {
		t.Errorf("compact output should be a single line, got %q", out)
	}
	if strings.Contains(out, `"runs"`) {
		t.Error("runs should be omitted without IncludeRuns")
	}

	var doc Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.DurationMs != 2500 {
		t.Errorf("durationMs = %d, want 2500", doc.DurationMs)
	}
	if doc.Iterations != 2 {
		t.Errorf("iterations = %d, want 2", doc.Iterations)
	}
	want := runner.Statistic{Samples: 2, Min: 500, Max: 700, Mean: 600, Median: 600, P90: 700}
	if diff := cmp.Diff(want, doc.Statistics[runner.MetricPageLoadTime]); diff != "" {
		t.Errorf("statistic mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_PrettyWithRuns(t *testing.T) {
	out := serialize(t, Options{Format: FormatJSON, Pretty: true, IncludeRuns: true})

	if !strings.HasPrefix(out, "{\n  \"id\": ") {
		t.Errorf("pretty output should be indented, got %q", out[:min(len(out), 40)])
	}

	var doc Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(doc.Runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(doc.Runs))
	}
	if got := doc.Runs[1].Metrics[runner.MetricPageLoadTime]; got != 700 {
		t.Errorf("run 2 pageLoadTime = %v, want 700", got)
	}
}

func TestYAML(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		out := serialize(t, Options{Format: FormatYAML, Pretty: pretty})

		var doc Document
		if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatalf("pretty=%v: invalid YAML: %v\n%s", pretty, err, out)
		}
		if doc.URL != "https://example.com/" {
			t.Errorf("pretty=%v: url = %q", pretty, doc.URL)
		}
		if got := doc.Statistics[runner.MetricPageLoadTime].Median; got != 600 {
			t.Errorf("pretty=%v: median = %v, want 600", pretty, got)
		}
	}

	if out := serialize(t, Options{Format: FormatYAML}); !strings.HasPrefix(out, "{") {
		t.Errorf("compact YAML should use flow style, got %q", out)
	}
	if out := serialize(t, Options{Format: FormatYAML, Pretty: true}); !strings.HasPrefix(out, "id: ") {
		t.Errorf("pretty YAML should use block style, got %q", out)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := `{{.URL}} {{.Browser.Name | upper}} median={{ms (stat "pageLoadTime").Median}} runs={{len .Runs}}`
	out := serialize(t, Options{Format: FormatTemplate, Template: tmpl, IncludeRuns: true})

	want := "https://example.com/ FIREFOX median=600ms runs=2"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestNew_RejectsBadTemplates(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		wantErr string
	}{
		{"empty", "", "template is empty"},
		{"syntax", "{{.URL", "parsing template"},
		{"unknown func", "{{nope .URL}}", `function "nope" not defined`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&bytes.Buffer{}, Options{Format: FormatTemplate, Template: tt.tmpl})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNew_AcceptsDataDependentTemplates(t *testing.T) {
	for _, tmpl := range []string{
		"{{(index .Runs 0).Number}}",
		"{{div 1000 .Iterations}}",
		"{{.Nope}}",
	} {
		if _, err := New(&bytes.Buffer{}, Options{Format: FormatTemplate, Template: tmpl}); err != nil {
			t.Errorf("%s: unexpected error: %v", tmpl, err)
		}
	}
}

func TestTemplate_DataDependent(t *testing.T) {
	out := serialize(t, Options{Format: FormatTemplate, Template: "{{(index .Runs 1).Number}} {{div 1000 .Iterations}}", IncludeRuns: true})
	if out != "2 500" {
		t.Errorf("output = %q, want %q", out, "2 500")
	}
}

func TestSerialize_TemplateExecutionIsOutputIO(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(&buf, Options{Format: FormatTemplate, Template: "{{(index .Runs 5).Number}}", IncludeRuns: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = s.Serialize(testSession())
	if !failure.Is(err, failure.KindOutputIO) {
		t.Fatalf("error = %v, want output io failure", err)
	}
	if !strings.Contains(err.Error(), "executing template") {
		t.Errorf("error = %q, want the template error", err.Error())
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q, want nothing", buf.String())
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("no space left on device") }

func TestSerialize_WriteFailureIsOutputIO(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML, FormatTemplate} {
		s, err := New(failingWriter{}, Options{Format: format, Template: "{{.URL}}"})
		if err != nil {
			t.Fatalf("%s: New: %v", format, err)
		}
		err = s.Serialize(testSession())
		if !failure.Is(err, failure.KindOutputIO) {
			t.Errorf("%s: error = %v, want output io failure", format, err)
		}
	}
}
