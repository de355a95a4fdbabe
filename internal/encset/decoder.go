package encset

import (
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// EventKind classifies one unit of decoder output (spec.md §4.2).
type EventKind int

const (
	// EventChar is a successfully decoded character.
	EventChar EventKind = iota
	// EventInvalid is a decoding error: the decoder could not make sense
	// of the next bytes and a U+FFFD marker stands in for them.
	EventInvalid
	// EventIncomplete means the window ended mid-sequence; the decoder
	// needs bytes from beyond the current window to finish this
	// character (handled by the overlap, spec.md §4.1).
	EventIncomplete
)

// Event is one decoded unit, with the byte range it consumed relative to
// the start of the window handed to Feed.
type Event struct {
	Kind EventKind
	Rune rune
	// Start, End are the byte offsets of this event within the window,
	// not the absolute stream offset; scanner.go adds the window's
	// absolute start.
	Start, End int
	// Exact is false when Start/End are only known to within the
	// surrounding FINISH_BUF-sized chunk (spec.md §4.2 "Position
	// precision"); true for the common case where the decoder consumed
	// exactly Start..End for this one character.
	Exact bool
}

// Decoder is the scanner's decoding capability: feed bytes, get events
// back (Feed with atEOF set also flushes a truncated trailing sequence);
// reset between window steps.
type Decoder interface {
	// Feed decodes as much of src as possible in one pass, calling
	// emit for every event produced, in order. atEOF marks the final
	// window of the whole input stream (not merely the final window of
	// one scanner step): only then is a truncated trailing sequence
	// reported as EventInvalid rather than EventIncomplete.
	Feed(src []byte, atEOF bool, emit func(Event))
	// Reset discards any internal state so the decoder can be reused
	// for the next window step (spec.md: "V is logically cleared at the
	// start of every step").
	Reset()
}

// transformDecoder adapts an x/text transform.Transformer (what every
// golang.org/x/text/encoding.Encoding.NewDecoder() returns) to Decoder.
//
// Transform fills its dst buffer greedily: handed a multi-rune source
// slice it happily packs several decoded runes into one utf8.UTFMax-ish
// dst before returning ErrShortDst, so a single call never identifies
// where one source character ends and the next begins. To get the
// exact per-character byte range spec.md §4.2 ("position precision")
// wants, decodeOne grows the source slice passed to Transform one byte at
// a time until it is exactly long enough to decode one rune; nSrc/nDst
// for that call then describe exactly one character.
type transformDecoder struct {
	t   transform.Transformer
	buf [utf8.UTFMax]byte
}

func newTransformDecoder(t transform.Transformer) *transformDecoder {
	return &transformDecoder{t: t}
}

func (d *transformDecoder) Reset() {
	d.t.Reset()
}

func (d *transformDecoder) Feed(src []byte, atEOF bool, emit func(Event)) {
	pos := 0
	for pos < len(src) {
		nDst, nSrc, err, resolved := d.decodeOne(src, pos, atEOF)
		if !resolved {
			// Every prefix up to the end of src still needs more input.
			if atEOF {
				emit(Event{Kind: EventInvalid, Rune: utf8.RuneError, Start: pos, End: len(src)})
			} else {
				// The overlap will re-present these bytes as the start
				// of the next window step.
				emit(Event{Kind: EventIncomplete, Start: pos, End: len(src)})
			}
			return
		}
		switch {
		case err == transform.ErrShortDst:
			// One rune can never need more than utf8.UTFMax dst bytes;
			// a conforming decoder reporting this for a single-rune
			// source slice is broken. Treat as a hard stop.
			emit(Event{Kind: EventInvalid, Rune: utf8.RuneError, Start: pos, End: pos + 1})
			pos++
			d.t.Reset()
			continue
		case err == transform.ErrShortSrc:
			// The minimal complete prefix still wasn't enough even at
			// the true end of input: a truncated trailing sequence.
			emit(Event{Kind: EventInvalid, Rune: utf8.RuneError, Start: pos, End: len(src)})
			return
		case err != nil:
			emit(Event{Kind: EventInvalid, Rune: utf8.RuneError, Start: pos, End: pos + maxInt(nSrc, 1)})
			pos += maxInt(nSrc, 1)
			d.t.Reset()
			continue
		}
		if nDst == 0 {
			// Nothing decoded and nothing consumed: defensive exit.
			if nSrc == 0 {
				return
			}
			pos += nSrc
			continue
		}
		r, _ := utf8.DecodeRune(d.buf[:nDst])
		kind := EventChar
		if r == utf8.RuneError {
			kind = EventInvalid
		}
		emit(Event{Kind: kind, Rune: r, Start: pos, End: pos + nSrc, Exact: true})
		pos += nSrc
	}
}

// decodeOne grows src[pos:pos+l] one byte at a time until Transform
// stops reporting ErrShortSrc, i.e. until the slice is exactly long
// enough to resolve one decoding step (one character, or one error).
// resolved is false only when the whole remaining src was tried and
// every prefix still reported ErrShortSrc.
func (d *transformDecoder) decodeOne(src []byte, pos int, atEOF bool) (nDst, nSrc int, err error, resolved bool) {
	for l := 1; pos+l <= len(src); l++ {
		chunkAtEOF := atEOF && pos+l == len(src)
		nDst, nSrc, err = d.t.Transform(d.buf[:], src[pos:pos+l], chunkAtEOF)
		if err == transform.ErrShortSrc && !chunkAtEOF {
			continue
		}
		return nDst, nSrc, err, true
	}
	return 0, 0, nil, false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
