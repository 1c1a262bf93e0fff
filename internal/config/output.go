package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Destination is where a report is written. A file destination is staged in
// a temporary file next to the target and only renamed into place by Commit,
// so a failed run never leaves a partial report behind.
type Destination struct {
	Path string // empty when writing to stdout

	w    io.Writer
	tmp  *os.File
	done bool
}

// OpenOutput prepares the report destination. An empty path or "-" selects
// stdout.
func OpenOutput(path string, stdout io.Writer) (*Destination, error) {
	if path == "" || path == "-" {
		return &Destination{w: stdout}, nil
	}

	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}
		// An existing report is replaced on commit; it must be writable.
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return nil, err
		}
		_ = f.Close()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, err
	}
	return &Destination{Path: path, w: tmp, tmp: tmp}, nil
}

func (d *Destination) Write(p []byte) (int, error) {
	if d.done {
		return 0, os.ErrClosed
	}
	return d.w.Write(p)
}

// Commit publishes the written report.
func (d *Destination) Commit() error {
	if d.done {
		return os.ErrClosed
	}
	d.done = true
	if d.tmp == nil {
		return nil
	}

	if err := d.tmp.Chmod(0o644); err != nil {
		return d.abort(err)
	}
	if err := d.tmp.Close(); err != nil {
		return d.abort(err)
	}
	if err := os.Rename(d.tmp.Name(), d.Path); err != nil {
		_ = os.Remove(d.tmp.Name())
		return err
	}
	return nil
}

// Close discards an uncommitted report. It is safe to call after Commit.
func (d *Destination) Close() error {
	if d.done {
		return nil
	}
	d.done = true
	if d.tmp == nil {
		return nil
	}
	return d.abort(nil)
}

func (d *Destination) abort(cause error) error {
	closeErr := d.tmp.Close()
	if errors.Is(closeErr, os.ErrClosed) {
		closeErr = nil
	}
	removeErr := os.Remove(d.tmp.Name())
	return errors.Join(cause, closeErr, removeErr)
}
