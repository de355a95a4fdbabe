package scanner

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rclone/stringsext/internal/encset"
	"github.com/rclone/stringsext/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func utf8Scanner(t *testing.T, minChars, q int, grep int) *Scanner {
	t.Helper()
	cfg := Config{
		Label:       encset.Label("utf-8"),
		MinChars:    minChars,
		ASCIIFilter: filter.ASCIIAliases["printable"],
		BlockFilter: filter.BlockAliases["common"],
		GrepChar:    grep,
	}
	sc, err := New(1, cfg, q)
	require.NoError(t, err)
	return sc
}

func TestScannerBasicRun(t *testing.T) {
	sc := utf8Scanner(t, 3, 32, -1)
	input := []byte("\x00\x00Hello\x00\x00")
	got := sc.Step(input, 0, true)
	require.Len(t, got, 1)
	assert.Equal(t, "Hello", got[0].Payload)
	assert.EqualValues(t, 2, got[0].ByteOffset)
}

func TestScannerMinCharsDropsShortRun(t *testing.T) {
	sc := utf8Scanner(t, 10, 32, -1)
	got := sc.Step([]byte("\x00hi\x00"), 0, true)
	assert.Empty(t, got)
}

func TestScannerGrepChar(t *testing.T) {
	sc := utf8Scanner(t, 1, 32, '/')
	assert.Empty(t, sc.Step([]byte("hello world"), 0, true))

	sc2 := utf8Scanner(t, 1, 32, '/')
	got := sc2.Step([]byte("/usr/local"), 0, true)
	require.Len(t, got, 1)
	assert.Equal(t, "/usr/local", got[0].Payload)
}

func TestScannerForceSplit(t *testing.T) {
	const q = 16
	sc := utf8Scanner(t, 1, q, -1)
	payload := strings.Repeat("a", q+10)
	got := sc.Step([]byte(payload), 0, true)
	require.Len(t, got, 2)
	assert.True(t, got[0].ToBeContinued)
	assert.False(t, got[0].ContinuesPrevious)
	assert.Len(t, got[0].Payload, q)
	assert.False(t, got[1].ToBeContinued)
	assert.True(t, got[1].ContinuesPrevious)
	assert.Len(t, got[1].Payload, 10)
	assert.Equal(t, payload, got[0].Payload+got[1].Payload)
}

func TestScannerSameBlockSplitsDifferentScripts(t *testing.T) {
	cfg := Config{
		Label:       encset.Label("utf-8"),
		MinChars:    1,
		ASCIIFilter: filter.ASCIIAliases["none"],
		BlockFilter: filter.BlockAliases["common"],
		GrepChar:    -1,
		SameBlock:   true,
	}
	sc, err := New(1, cfg, 64)
	require.NoError(t, err)
	input := "абвгд" + "αβγδε"
	got := sc.Step([]byte(input), 0, true)
	require.Len(t, got, 2)
	assert.Equal(t, "абвгд", got[0].Payload)
	assert.Equal(t, "αβγδε", got[1].Payload)
}

func TestScannerNoDuplicationAcrossSteps(t *testing.T) {
	const q = 16
	sc := utf8Scanner(t, 1, q, -1)
	full := strings.Repeat("x", 3*q)
	// Window length is 2*q; overlap is q. Step once over the first
	// window, then advance by q and step again, as window.Coordinator
	// would.
	first := sc.Step([]byte(full[:2*q]), 0, false)
	second := sc.Step([]byte(full[q:]), int64(q), true)

	seen := map[int64]bool{}
	for _, f := range append(first, second...) {
		if !f.ContinuesPrevious {
			assert.False(t, seen[f.ByteOffset], "duplicate finding at offset %d", f.ByteOffset)
			seen[f.ByteOffset] = true
		}
	}
	var rebuilt strings.Builder
	for _, f := range append(first, second...) {
		rebuilt.WriteString(f.Payload)
	}
	assert.Equal(t, full, rebuilt.String())
}

// Coverage/no-duplication property (spec.md §8 invariants 1 and 2): an
// ASCII letter run shorter than Q, scanned through a sequence of
// overlapping windows, is reported exactly once in total.
func TestScannerCoverageProperty(t *testing.T) {
	const q = 32
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, q-1).Draw(t, "n")
		run := strings.Repeat("q", n)
		noise := strings.Repeat("\x00", rapid.IntRange(0, q).Draw(t, "noiseLen"))
		input := []byte(noise + run + noise)

		sc := utf8Scanner(t, 1, q, -1)
		var got []string
		winLen := 2 * q
		var s int64
		for int(s) < len(input) {
			end := int(s) + winLen
			if end > len(input) {
				end = len(input)
			}
			atEOF := end == len(input)
			for _, f := range sc.Step(input[s:end], s, atEOF) {
				got = append(got, f.Payload)
			}
			if atEOF {
				break
			}
			s += int64(q)
		}
		joined := strings.Join(got, "")
		assert.Equal(t, run, joined)
	})
}

func TestScannerValidUTF8Payload(t *testing.T) {
	sc := utf8Scanner(t, 1, 32, -1)
	got := sc.Step([]byte("héllo wörld"), 0, true)
	for _, f := range got {
		assert.True(t, utf8.ValidString(f.Payload))
	}
}
