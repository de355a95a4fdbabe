package window

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rclone/stringsext/internal/encset"
	"github.com/rclone/stringsext/internal/filter"
	"github.com/rclone/stringsext/internal/finding"
	"github.com/rclone/stringsext/internal/scanner"
)

func newUTF8Scanner(t *testing.T, id, q int) *scanner.Scanner {
	t.Helper()
	cfg := scanner.Config{
		Label:       encset.Label("utf-8"),
		MinChars:    4,
		ASCIIFilter: filter.ASCIIAliases["printable"],
		BlockFilter: filter.BlockAliases["common"],
		GrepChar:    -1,
	}
	sc, err := scanner.New(id, cfg, q)
	require.NoError(t, err)
	return sc
}

// A run well over two window-lengths long must come out as an unbroken
// sequence of force-split pieces whose payloads concatenate back to the
// original text, whatever the window/overlap boundaries happened to cut
// through (spec.md §8 invariants 1, 2, 6).
func TestCoordinatorReassemblesLongRun(t *testing.T) {
	const q = 8
	sc := newUTF8Scanner(t, 1, q)
	coord := New([]Scanner{sc}, q)

	text := strings.Repeat("Hello, World! ", 20) // 280 bytes, well over 2*2q
	r := strings.NewReader(text)

	var got []finding.Finding
	err := coord.Run(context.Background(), r, 0, func(f finding.Finding) error {
		got = append(got, f)
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	var rebuilt strings.Builder
	for i, f := range got {
		if i > 0 {
			assert.Equal(t, got[i-1].ScannerID, f.ScannerID)
		}
		rebuilt.WriteString(f.Payload)
	}
	assert.Equal(t, text, rebuilt.String())
}

// Short runs that straddle a window boundary must appear exactly once,
// not zero or two times (spec.md §8 invariants 1 and 2).
func TestCoordinatorNoDuplicationOrLoss(t *testing.T) {
	const q = 16
	sc := newUTF8Scanner(t, 1, q)
	coord := New([]Scanner{sc}, q)

	// Padding sized so that "strawberry" (10 bytes) straddles the
	// boundary between the first and second window.
	text := strings.Repeat("\x00", 2*q-5) + "strawberry" + strings.Repeat("\x00", 40)
	r := strings.NewReader(text)

	var payloads []string
	err := coord.Run(context.Background(), r, 0, func(f finding.Finding) error {
		payloads = append(payloads, f.Payload)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"strawberry"}, payloads)
}

// counterOffset shifts every reported ByteOffset (spec.md §6 "-s,
// --counter-offset").
func TestCoordinatorCounterOffset(t *testing.T) {
	const q = 16
	sc := newUTF8Scanner(t, 1, q)
	coord := New([]Scanner{sc}, q)

	r := strings.NewReader("plain text here")
	var got []finding.Finding
	err := coord.Run(context.Background(), r, 1000, func(f finding.Finding) error {
		got = append(got, f)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 1000, got[0].ByteOffset)
}

// Multiple scanners over the same bytes interleave in the merged order
// guaranteed by spec.md §4.4: by byte_offset, then scanner_id.
func TestCoordinatorMergesAcrossScanners(t *testing.T) {
	const q = 32
	a := newUTF8Scanner(t, 1, q)
	b := newUTF8Scanner(t, 2, q)
	coord := New([]Scanner{a, b}, q)

	r := strings.NewReader("first\x00second")
	var got []finding.Finding
	err := coord.Run(context.Background(), r, 0, func(f finding.Finding) error {
		got = append(got, f)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 4) // two scanners x two runs each
	for i := 1; i < len(got); i++ {
		prevKey := got[i-1].ByteOffset
		key := got[i].ByteOffset
		assert.True(t, key >= prevKey)
	}
}
