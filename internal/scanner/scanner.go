// Package scanner implements the per-encoding scanner of spec.md §4.2:
// the decoder loop, run extraction, windowing/split policy, same-block
// constraint and position-precision bookkeeping.
package scanner

import (
	"strings"

	"github.com/rclone/stringsext/internal/encset"
	"github.com/rclone/stringsext/internal/filter"
	"github.com/rclone/stringsext/internal/finding"
)

// Config is everything one scanner owns, independent of how it was
// parsed from the CLI (spec.md §3 "Scanner configuration").
type Config struct {
	Label       encset.Label
	MinChars    int
	ASCIIFilter filter.ASCIIMask
	BlockFilter filter.BlockMask
	GrepChar    int // -1 means unset
	SameBlock   bool
}

// Scanner owns one decoder and the small amount of state that must
// survive across window steps to avoid re-emitting content the overlap
// re-presents (spec.md §4.1's "seen in its entirety by at least one
// step" guarantee, and the "no duplication" invariant of spec.md §8).
type Scanner struct {
	id  int
	cfg Config
	q   int // FINISH_BUF, spec.md §4.2
	dec encset.Decoder

	// Cross-step state. Updated only when a record is actually emitted;
	// left untouched when a window ends mid-run without a flush, which
	// is always safe because a run that hasn't reached FINISH_BUF by
	// the time the window (length 2*Q) ends must have started within
	// the final Q bytes of the window - i.e. within the overlap the
	// next step re-scans from byte zero.
	committedUpTo int64
	continuation  bool
	contLeading   byte // same_block leading byte carried into a continued run

	// pendingContinued is a force-split piece whose to_be_continued flag
	// isn't settled yet: it's held back from the returned findings until
	// the next event proves whether the run actually goes on (more
	// scalars arrive) or was force-split right at a run's end (the very
	// next event is a terminator with nothing new accumulated).
	pendingContinued *finding.Finding
}

// New builds a scanner for one configured encoding. id is the 1-based
// scanner index (spec.md: surfaces as letters a, b, ... in output).
func New(id int, cfg Config, outputLineLen int) (*Scanner, error) {
	dec, err := encset.Resolve(cfg.Label)
	if err != nil {
		return nil, err
	}
	return &Scanner{id: id, cfg: cfg, q: outputLineLen, dec: dec}, nil
}

// ID returns the 1-based scanner index.
func (s *Scanner) ID() int { return s.id }

// run is the mutable state of one printable run in progress during a
// single Step call.
type run struct {
	active     bool
	startAbs   int64 // absolute input offset where this piece begins
	endAbs     int64 // absolute input offset just past the last consumed char
	payload    strings.Builder
	scalars    int
	leading    byte // 0 until the first multi-byte char is seen
	firstPiece bool // false once any piece of this logical run has emitted
}

// Step processes one window: an immutable byte slice beginning at the
// absolute stream offset absStart. atEOF marks the final window of the
// whole input. Returned findings are already in non-decreasing
// byte_offset order (spec.md §3 invariant 4).
func (s *Scanner) Step(window []byte, absStart int64, atEOF bool) []finding.Finding {
	s.dec.Reset()

	var out []finding.Finding
	var r run
	if s.continuation {
		r.active = true
		r.startAbs = s.committedUpTo
		r.endAbs = s.committedUpTo
		r.leading = s.contLeading
		r.firstPiece = false
	} else {
		r.firstPiece = true
	}

	emitPiece := func(toBeContinued bool) {
		if s.pendingContinued != nil {
			// r carries whatever has accumulated since the run resumed:
			// any scalars at all prove the earlier force split really
			// was followed by more of the run, so the held piece's
			// to_be_continued=true stands. Zero scalars means this
			// call's terminator arrived with nothing new, so the held
			// piece was never really "to be continued".
			if !(r.active && r.scalars > 0) {
				s.pendingContinued.ToBeContinued = false
				s.continuation = false
				s.contLeading = 0
			}
			out = append(out, *s.pendingContinued)
			s.pendingContinued = nil
		}
		if !r.active || r.scalars == 0 {
			// Nothing accumulated since the last flush (or since this
			// run resumed): a no-op, not an empty finding.
			r = run{firstPiece: true}
			return
		}
		isSplitPiece := !r.firstPiece
		if !filter.MinChars(r.scalars, s.cfg.MinChars, isSplitPiece) {
			// Too short and not exempt: spec.md §4.2 "the run is
			// discarded if it would not have met min_chars".
			r = run{firstPiece: true}
			return
		}
		payload := r.payload.String()
		if !filter.GrepCharOK(payload, s.cfg.GrepChar) {
			r = run{firstPiece: true}
			return
		}
		f := finding.Finding{
			ByteOffset:        r.startAbs,
			OffsetKind:        finding.Exact,
			ScannerID:         s.id,
			EncodingLabel:     string(s.cfg.Label),
			Payload:           payload,
			ContinuesPrevious: isSplitPiece,
			ToBeContinued:     toBeContinued,
		}
		s.committedUpTo = r.endAbs
		if toBeContinued {
			// Held back, not appended yet: its flag isn't settled until
			// the next event resolves it (above, on a later call).
			s.continuation = true
			s.contLeading = r.leading
			s.pendingContinued = &f
			r = run{active: true, startAbs: s.committedUpTo, endAbs: s.committedUpTo, leading: r.leading}
		} else {
			out = append(out, f)
			s.continuation = false
			s.contLeading = 0
			r = run{firstPiece: true}
		}
	}

	startRun := func(startAbs int64) {
		r.active = true
		r.startAbs = startAbs
		r.endAbs = startAbs
		r.scalars = 0
		r.leading = 0
		r.payload.Reset()
	}

	appendChar := func(c rune, startAbs, endAbs int64) {
		if !r.active {
			startRun(startAbs)
		}
		if c >= 0x80 && s.cfg.SameBlock {
			lb := filter.LeadingByte(c)
			if r.leading == 0 {
				r.leading = lb
			} else if r.leading != lb {
				// Same-block violation: close the current run as a
				// terminator (without including c), then start a fresh
				// run at c (spec.md §4.2 "Same-block constraint").
				emitPiece(false)
				startRun(startAbs)
				r.leading = lb
			}
		}
		r.payload.WriteRune(c)
		r.scalars++
		r.endAbs = endAbs
		if r.payload.Len() >= s.q {
			emitPiece(true)
		}
	}

	s.dec.Feed(window, atEOF, func(ev encset.Event) {
		start := absStart + int64(ev.Start)
		end := absStart + int64(ev.End)
		if start < s.committedUpTo {
			// Already covered by a previous emission; the overlap is
			// re-presenting it, ignore.
			return
		}
		switch ev.Kind {
		case encset.EventChar:
			if filter.Passes(ev.Rune, s.cfg.ASCIIFilter, s.cfg.BlockFilter) {
				appendChar(ev.Rune, start, end)
				return
			}
			// Non-printable: run terminator.
			emitPiece(false)
		case encset.EventInvalid:
			// A U+FFFD marker: run terminator (spec.md §4.2).
			emitPiece(false)
		case encset.EventIncomplete:
			// Window ends mid-sequence; the overlap will re-scan it.
		}
	})

	if atEOF {
		// No more input will ever arrive: close out whatever is open.
		// If a force split landed right at the last byte of the whole
		// stream, emitPiece resolves pendingContinued's to_be_continued
		// flag to false itself, since r.scalars is 0 going in.
		emitPiece(false)
	}
	return out
}
