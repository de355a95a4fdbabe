package filter

import (
	"strings"
	"unicode/utf8"
)

// LeadingByte returns the first UTF-8 byte that would encode r, the key
// into a BlockMask (spec.md §3: "leading byte" is the UTF-8 leading byte
// of the codepoint).
func LeadingByte(r rune) byte {
	var buf [utf8.UTFMax]byte
	utf8.EncodeRune(buf[:], r)
	return buf[0]
}

// Passes applies the ascii_filter / unicode_block_filter split of
// spec.md §4.3: codepoints below U+0080 are checked against ascii,
// codepoints at or above U+0080 are checked against block via their
// leading byte.
func Passes(r rune, ascii ASCIIMask, block BlockMask) bool {
	if r == utf8.RuneError {
		// A U+FFFD marker is never printable, whether it is a literal
		// replacement character or the scanner's own decode-error
		// stand-in (spec.md §4.2): either way it terminates a run.
		return false
	}
	if r < 0x80 {
		return ascii.Test(r)
	}
	return block.TestLeadingByte(LeadingByte(r))
}

// MinChars reports whether a run of n scalar values satisfies min_chars,
// honoring the split-piece exemption of spec.md §4.2 ("split pieces are
// exempt").
func MinChars(n, minChars int, isSplitPiece bool) bool {
	if isSplitPiece {
		return true
	}
	return n >= minChars
}

// GrepCharOK implements the grep_char filter of spec.md §4.3: optional,
// admits the finding only if the ASCII byte appears somewhere in the
// payload. grepChar < 0 means no grep filter is configured.
func GrepCharOK(payload string, grepChar int) bool {
	if grepChar < 0 {
		return true
	}
	return strings.IndexByte(payload, byte(grepChar)) >= 0
}
