package report

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/sznuper/browsertime/internal/runner"
)

// Render executes a Go text/template string with Sprig functions against
// doc. Besides the document fields, templates can call stat to look up a
// statistic by name ({{(stat "pageLoadTime").Median}}) and ms to format a
// value in milliseconds.
func Render(tmplStr string, doc Document) (string, error) {
	t, err := parseTemplate(tmplStr, doc.Statistics)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// CheckTemplate reports whether tmplStr parses. Field and index errors
// depend on the measured data and only surface when the report is rendered.
func CheckTemplate(tmplStr string) error {
	if tmplStr == "" {
		return fmt.Errorf("template is empty")
	}
	_, err := parseTemplate(tmplStr, nil)
	return err
}

func parseTemplate(tmplStr string, stats map[string]runner.Statistic) (*template.Template, error) {
	funcMap := sprig.TxtFuncMap()
	funcMap["stat"] = func(name string) runner.Statistic { return stats[name] }
	funcMap["ms"] = func(v float64) string { return fmt.Sprintf("%.0fms", v) }

	t, err := template.New("report").Funcs(funcMap).Parse(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return t, nil
}
