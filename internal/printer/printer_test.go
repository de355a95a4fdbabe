package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rclone/stringsext/internal/finding"
	"github.com/rclone/stringsext/internal/strconfig"
)

func TestPrinterRawMode(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, strconfig.RadixNone, false)
	require.NoError(t, p.Print(finding.Finding{Payload: "hello"}))
	require.NoError(t, p.Close())
	assert.Equal(t, "hello\n", buf.String())
}

func TestPrinterMetadataLine(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, strconfig.RadixHex, true)
	f := finding.Finding{
		ByteOffset:    255,
		ScannerID:     2,
		EncodingLabel: "utf-16le",
		Payload:       ":abc:",
	}
	require.NoError(t, p.Print(f))
	require.NoError(t, p.Close())
	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "b ff "))
	assert.Contains(t, line, "(2 utf-16le)")
	assert.Contains(t, line, ":abc:")
}

func TestPrinterContinuationMarkers(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, strconfig.RadixDecimal, true)
	first := finding.Finding{ByteOffset: 0, ScannerID: 1, EncodingLabel: "ascii", Payload: "aaaa", ToBeContinued: true}
	second := finding.Finding{ByteOffset: 4, ScannerID: 1, EncodingLabel: "ascii", Payload: "bb", ContinuesPrevious: true}
	require.NoError(t, p.Print(first))
	require.NoError(t, p.Print(second))
	require.NoError(t, p.Close())
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], boundaryFlag)
	assert.True(t, strings.Contains(lines[1], "+"))
	assert.Contains(t, lines[1], boundaryFlag)
}

func TestPrinterOffsetMarkerForApproximateOffsets(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, strconfig.RadixOctal, true)
	f := finding.Finding{OffsetKind: finding.UpperBound, ScannerID: 1, EncodingLabel: "utf-8", Payload: "x"}
	require.NoError(t, p.Print(f))
	require.NoError(t, p.Close())
	assert.True(t, strings.HasPrefix(buf.String(), "a<"))
}
