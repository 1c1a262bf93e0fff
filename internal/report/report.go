// Package report serializes a completed timing session.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/sznuper/browsertime/internal/failure"
	"github.com/sznuper/browsertime/internal/runner"
)

// Formats understood by New.
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatTemplate = "template"
)

// Options selects how a session is written.
type Options struct {
	Format      string
	Pretty      bool
	IncludeRuns bool
	Template    string
}

// Serializer writes a session to its destination.
type Serializer interface {
	Serialize(s *runner.Session) error
}

// Document is the serialized form of a session.
type Document struct {
	ID         string                      `json:"id" yaml:"id"`
	URL        string                      `json:"url" yaml:"url"`
	Browser    runner.Browser              `json:"browser" yaml:"browser"`
	StartedAt  time.Time                   `json:"startedAt" yaml:"startedAt"`
	DurationMs int64                       `json:"durationMs" yaml:"durationMs"`
	Iterations int                         `json:"iterations" yaml:"iterations"`
	Statistics map[string]runner.Statistic `json:"statistics" yaml:"statistics"`
	Runs       []runner.Iteration          `json:"runs,omitempty" yaml:"runs,omitempty"`
}

// NewDocument builds the document for s. Per-iteration runs are only
// included when includeRuns is set.
func NewDocument(s *runner.Session, includeRuns bool) Document {
	doc := Document{
		ID:         s.ID,
		URL:        s.URL,
		Browser:    s.Browser,
		StartedAt:  s.StartedAt,
		DurationMs: s.Duration.Milliseconds(),
		Iterations: len(s.Iterations),
		Statistics: s.Statistics,
	}
	if includeRuns {
		doc.Runs = s.Iterations
	}
	return doc
}

// New returns the Serializer for opts.Format writing to w. A template that
// does not parse is rejected here, before anything is written.
func New(w io.Writer, opts Options) (Serializer, error) {
	switch opts.Format {
	case "", FormatJSON:
		return &jsonSerializer{w: w, opts: opts}, nil
	case FormatYAML:
		return &yamlSerializer{w: w, opts: opts}, nil
	case FormatTemplate:
		if err := CheckTemplate(opts.Template); err != nil {
			return nil, err
		}
		return &templateSerializer{w: w, opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", opts.Format)
	}
}

type jsonSerializer struct {
	w    io.Writer
	opts Options
}

func (s *jsonSerializer) Serialize(session *runner.Session) error {
	doc := NewDocument(session, s.opts.IncludeRuns)

	var (
		data []byte
		err  error
	)
	if s.opts.Pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return write(s.w, append(data, '\n'))
}

type yamlSerializer struct {
	w    io.Writer
	opts Options
}

func (s *yamlSerializer) Serialize(session *runner.Session) error {
	doc := NewDocument(session, s.opts.IncludeRuns)

	var encOpts []yaml.EncodeOption
	if !s.opts.Pretty {
		encOpts = append(encOpts, yaml.Flow(true))
	}
	data, err := yaml.MarshalWithOptions(doc, encOpts...)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return write(s.w, data)
}

type templateSerializer struct {
	w    io.Writer
	opts Options
}

func (s *templateSerializer) Serialize(session *runner.Session) error {
	out, err := Render(s.opts.Template, NewDocument(session, s.opts.IncludeRuns))
	if err != nil {
		return failure.OutputIO(fmt.Errorf("rendering report: %w", err))
	}
	return write(s.w, []byte(out))
}

func write(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return failure.OutputIO(fmt.Errorf("writing report: %w", err))
	}
	return nil
}
