package encset

import "unicode/utf8"

// asciiDecoder implements the "ascii" pseudo-encoding of spec.md §3: a
// 7-bit-clean decoder with the one extra rule that NUL (0x00) is
// invalid, so long runs of null-terminated vectors break into separate
// findings instead of overflowing FINISH_BUF as one "valid" run (see
// spec.md §4.2 "Rationale for the two thresholds").
type asciiDecoder struct{}

func newASCIIDecoder() *asciiDecoder { return &asciiDecoder{} }

func (*asciiDecoder) Reset() {}

func (*asciiDecoder) Feed(src []byte, atEOF bool, emit func(Event)) {
	for i, b := range src {
		if b == 0x00 || b >= 0x80 {
			emit(Event{Kind: EventInvalid, Rune: utf8.RuneError, Start: i, End: i + 1, Exact: true})
			continue
		}
		emit(Event{Kind: EventChar, Rune: rune(b), Start: i, End: i + 1, Exact: true})
	}
}
