// Package driver opens the configured inputs, drives the window
// coordinator to EOF, and routes every finding to the printer
// (spec.md §2 item 6, §7).
package driver

import (
	"context"
	"errors"
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"

	"github.com/rclone/stringsext/internal/finding"
	"github.com/rclone/stringsext/internal/logging"
	"github.com/rclone/stringsext/internal/printer"
	"github.com/rclone/stringsext/internal/scanner"
	"github.com/rclone/stringsext/internal/strconfig"
	"github.com/rclone/stringsext/internal/window"
)

// IOError is a spec.md §7 class 2 error: an input read failed. It
// carries the path so the CLI can report it without a second layer of
// wrapping.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return "I/O error reading " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

// OutputError is a spec.md §7 class 4 error: fatal, writing the output
// stream failed.
type OutputError struct {
	Err error
}

func (e *OutputError) Error() string { return "writing output: " + e.Err.Error() }

func (e *OutputError) Unwrap() error { return e.Err }

// openInputs opens every path in order ("-" means stdin, an empty list
// means stdin too) and returns a single concatenated reader plus a
// closer for all of them (spec.md §2 item 6 "opens inputs as one
// concatenated stream").
func openInputs(paths []string) (io.Reader, func() error, error) {
	if len(paths) == 0 {
		return os.Stdin, func() error { return nil }, nil
	}
	readers := make([]io.Reader, 0, len(paths))
	files := make([]*os.File, 0, len(paths))
	for _, p := range paths {
		if p == "-" {
			readers = append(readers, os.Stdin)
			continue
		}
		f, err := os.Open(p)
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			return nil, nil, &IOError{Path: p, Err: err}
		}
		files = append(files, f)
		readers = append(readers, f)
	}
	closeAll := func() error {
		var first error
		for _, f := range files {
			if err := f.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	return io.MultiReader(readers...), closeAll, nil
}

// Run builds one scanner per configured encoding, opens the inputs,
// drives the coordinator to EOF, and writes every merged finding
// through p. Returned errors are always *IOError, *OutputError, or
// *strconfig.ConfigError (spec.md §7's three non-decoding classes).
func Run(ctx context.Context, cfg strconfig.Config, p printer.Printer) error {
	scanners := make([]window.Scanner, len(cfg.Scanners))
	for i, sc := range cfg.Scanners {
		s, err := scanner.New(i+1, scanner.Config{
			Label:       sc.Label,
			MinChars:    sc.MinChars,
			ASCIIFilter: sc.ASCIIFilter,
			BlockFilter: sc.BlockFilter,
			GrepChar:    sc.GrepChar,
			SameBlock:   sc.SameBlock,
		}, cfg.OutputLineLen)
		if err != nil {
			return &strconfig.ConfigError{Msg: err.Error()}
		}
		logging.Debugf("scanner %c built: encoding=%s min_chars=%d", 'a'+byte(i), sc.Label, sc.MinChars)
		scanners[i] = s
	}

	r, closeInputs, err := openInputs(cfg.Inputs)
	if err != nil {
		return err
	}
	defer closeInputs()

	coord := window.New(scanners, cfg.OutputLineLen)
	runErr := coord.Run(ctx, r, cfg.CounterOffset, func(f finding.Finding) error {
		if err := p.Print(f); err != nil {
			return &OutputError{Err: err}
		}
		return nil
	})
	if runErr == nil {
		return nil
	}

	var outErr *OutputError
	if errors.As(runErr, &outErr) {
		return outErr
	}
	return &IOError{Path: inputPathHint(cfg.Inputs), Err: pkgerrors.Wrap(runErr, "reading input")}
}

func inputPathHint(paths []string) string {
	if len(paths) == 0 {
		return "<stdin>"
	}
	return paths[len(paths)-1]
}
