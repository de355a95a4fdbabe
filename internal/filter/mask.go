// Package filter implements the four-stage filter pipeline of spec.md
// §4.3: minimum length, ASCII bitmask, Unicode-block bitmask, grep-char.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/rclone/stringsext/internal/logging"
)

// ASCIIMask is the 128-bit mask of spec.md §3: bit i set means codepoint
// U+00i passes. It is stored as two uint64 words, low then high.
type ASCIIMask [2]uint64

// Test reports whether codepoint cp (which must be in 0..127) passes.
func (m ASCIIMask) Test(cp rune) bool {
	if cp < 0 || cp > 127 {
		return false
	}
	word, bit := cp/64, uint(cp%64)
	return m[word]&(1<<bit) != 0
}

// set returns a copy of m with bit cp set.
func (m ASCIIMask) set(cp rune) ASCIIMask {
	word, bit := cp/64, uint(cp%64)
	m[word] |= 1 << bit
	return m
}

// String renders the mask the way a resolved --debug-options dump does:
// a 0x-prefixed hex pair, high word first.
func (m ASCIIMask) String() string {
	return fmt.Sprintf("0x%016x%016x", m[1], m[0])
}

// ParseASCIIMask accepts either a named alias (case-insensitive, see
// ASCIIAliases) or a "0x"-prefixed hex literal of up to 32 hex digits.
func ParseASCIIMask(s string) (ASCIIMask, error) {
	if mask, ok := ASCIIAliases[strings.ToLower(s)]; ok {
		return mask, nil
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return ASCIIMask{}, errors.Errorf("unknown ascii-filter alias or mask %q", s)
	}
	hexDigits := s[2:]
	if len(hexDigits) > 32 {
		return ASCIIMask{}, errors.Errorf("ascii-filter mask %q longer than 128 bits", s)
	}
	hexDigits = strings.Repeat("0", 32-len(hexDigits)) + hexDigits
	hi, err := strconv.ParseUint(hexDigits[:16], 16, 64)
	if err != nil {
		return ASCIIMask{}, errors.Wrapf(err, "invalid ascii-filter mask %q", s)
	}
	lo, err := strconv.ParseUint(hexDigits[16:], 16, 64)
	if err != nil {
		return ASCIIMask{}, errors.Wrapf(err, "invalid ascii-filter mask %q", s)
	}
	return ASCIIMask{lo, hi}, nil
}

// BlockMask is the 64-bit leading-byte mask of spec.md §3: bit k set
// means "UTF-8 leading byte 0xC0+k is allowed". It covers leading bytes
// 0xC0..0xFF, i.e. every multi-byte UTF-8 lead byte.
type BlockMask uint64

// TestLeadingByte reports whether a multi-byte character whose first
// UTF-8 byte is leadingByte passes.
func (m BlockMask) TestLeadingByte(leadingByte byte) bool {
	if leadingByte < 0xC0 {
		return false
	}
	return m&(1<<uint(leadingByte-0xC0)) != 0
}

func (m BlockMask) String() string {
	return fmt.Sprintf("0x%016x", uint64(m))
}

// ParseBlockMask accepts a named alias (see BlockAliases) or a
// "0x"-prefixed hex literal of up to 16 hex digits.
func ParseBlockMask(s string) (BlockMask, error) {
	name := strings.ToLower(s)
	if mask, ok := BlockAliases[name]; ok {
		if name != "none" {
			// Every named alias is, by construction, the true Unicode
			// block enlarged to the nearest leading-byte class (spec.md
			// §4.3, §6): surface that before scanning begins.
			logging.Warnf("unicode-block-filter %q enlarged to leading-byte mask %s", s, mask)
		}
		return mask, nil
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return 0, errors.Errorf("unknown unicode-block-filter alias or mask %q", s)
	}
	v, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid unicode-block-filter mask %q", s)
	}
	return BlockMask(v), nil
}

// blockRange sets bits lo..hi inclusive, lo/hi being leading bytes in
// 0xC0..0xFF.
func blockRange(lo, hi byte) BlockMask {
	var m BlockMask
	for b := lo; ; b++ {
		m |= 1 << uint(b-0xC0)
		if b == hi {
			break
		}
	}
	return m
}

// ASCIIAliases resolves the named ascii_filter aliases of spec.md §4.3.
var ASCIIAliases = map[string]ASCIIMask{
	"none": {},
	"all-ctrl": func() ASCIIMask {
		var m ASCIIMask
		for cp := rune(0); cp < 127; cp++ {
			m = m.set(cp)
		}
		return m
	}(),
	"all-ctrl+wsp": func() ASCIIMask {
		var m ASCIIMask
		for cp := rune(0); cp <= 127; cp++ {
			m = m.set(cp)
		}
		return m
	}(),
	"printable": func() ASCIIMask {
		var m ASCIIMask
		for cp := rune(0x20); cp < 0x7f; cp++ {
			m = m.set(cp)
		}
		m = m.set(0x09)
		return m
	}(),
}

// BlockAliases resolves the named unicode_block_filter aliases of
// spec.md §4.3. Boundaries are enlarged to the nearest leading-byte
// class, a deliberate precision/performance trade-off the spec accepts
// (spec.md §4.3, §9).
var BlockAliases = map[string]BlockMask{
	"none":      0,
	"common":    blockRange(0xC2, 0xF4),
	"latin":     blockRange(0xC2, 0xC7),
	"greek":     blockRange(0xCD, 0xCF),
	"cyrillic":  blockRange(0xD0, 0xD3),
	"armenian":  blockRange(0xD4, 0xD6),
	"hebrew":    blockRange(0xD6, 0xD7),
	"arabic":    blockRange(0xD8, 0xDB),
	"syriac":    blockRange(0xDC, 0xDD),
	"african":   blockRange(0xE1, 0xE1) | blockRange(0xDE, 0xDF),
	"cjk":       blockRange(0xE3, 0xE9),
	"supplementary": blockRange(0xF0, 0xF4),
}
