// Package window implements the bulk-synchronous step loop of
// spec.md §4.1: read a 2*Q-byte window, hand an identical copy to
// every scanner concurrently, wait for all of them, merge, advance by
// Q bytes (the window's last Q bytes become the next window's first Q
// bytes), repeat until EOF.
package window

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/rclone/stringsext/internal/finding"
	"github.com/rclone/stringsext/internal/logging"
	"github.com/rclone/stringsext/internal/merge"
)

// Scanner is the subset of scanner.Scanner the coordinator depends on,
// named here so tests can supply fakes without touching the decoder
// machinery.
type Scanner interface {
	ID() int
	Step(win []byte, absStart int64, atEOF bool) []finding.Finding
}

// Coordinator drives one input stream through a fixed set of scanners.
type Coordinator struct {
	scanners []Scanner
	q        int64 // FINISH_BUF; overlap length; half the window length
}

// New builds a coordinator. q is the configured output-line-length /
// FINISH_BUF value shared by every scanner (spec.md §4.1: "Q is fixed
// for the whole run").
func New(scanners []Scanner, q int) *Coordinator {
	return &Coordinator{scanners: scanners, q: int64(q)}
}

// Run reads r to completion, step by step, and calls emit once per
// finding in the globally merged order (spec.md §4.4). counterOffset
// is added to every ByteOffset before emit is called (spec.md §6 "-s,
// --counter-offset").
func (c *Coordinator) Run(ctx context.Context, r io.Reader, counterOffset int64, emit func(finding.Finding) error) error {
	winLen := 2 * c.q
	buf := make([]byte, winLen)

	// carry holds the last Q bytes of the previous window, already in
	// place at buf[:len(carry)] before the next read tops the buffer up;
	// this is the overlap of spec.md §4.1.
	var carry int

	var absStart int64
	for {
		n, err := io.ReadFull(r, buf[carry:])
		n += carry
		atEOF := false
		switch {
		case err == io.ErrUnexpectedEOF || err == io.EOF:
			atEOF = true
		case err != nil:
			return err
		}

		if n == 0 {
			return nil
		}

		logging.Debugf("window step at offset %d: %d bytes, atEOF=%v", absStart, n, atEOF)

		step := buf[:n]
		results := make([][]finding.Finding, len(c.scanners))

		g, gctx := errgroup.WithContext(ctx)
		for i, sc := range c.scanners {
			i, sc := i, sc
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				results[i] = sc.Step(step, absStart, atEOF)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		merged := merge.Step(results)
		logging.Debugf("window step at offset %d: %d findings after merge", absStart, len(merged))
		for _, f := range merged {
			f.ByteOffset += counterOffset
			if err := emit(f); err != nil {
				return err
			}
		}

		if atEOF {
			return nil
		}

		// Advance: the last Q bytes of this window (which were at
		// buf[n-q:n]) become the first Q bytes of the next one.
		copy(buf[:c.q], buf[n-int(c.q):n])
		carry = int(c.q)
		absStart += int64(n) - c.q
	}
}
