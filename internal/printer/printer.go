// Package printer renders finding records to an output stream
// (spec.md §4.5, §6 "Output line format").
package printer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/rclone/stringsext/internal/finding"
	"github.com/rclone/stringsext/internal/strconfig"
)

// boundaryFlag is U+2691, rendered at the cut edges of a force split
// (spec.md §6, GLOSSARY "Boundary flag").
const boundaryFlag = "⚑"

// Printer renders merged finding records. Implementations must not
// reorder or drop records (spec.md §4.5's contract with the core).
type Printer interface {
	Print(f finding.Finding) error
	Close() error
}

// New returns the default line-oriented Printer for the given radix and
// metadata settings (spec.md §6).
func New(w io.Writer, radix strconfig.Radix, showMetadata bool) Printer {
	return &linePrinter{w: bufio.NewWriter(w), radix: radix, showMetadata: showMetadata}
}

type linePrinter struct {
	w            *bufio.Writer
	radix        strconfig.Radix
	showMetadata bool
}

func (p *linePrinter) Close() error {
	return p.w.Flush()
}

func (p *linePrinter) Print(f finding.Finding) error {
	if !p.showMetadata && p.radix == strconfig.RadixNone {
		// Raw mode: newline-separated UTF-8 strings only (spec.md §6).
		_, err := fmt.Fprintln(p.w, f.Payload)
		return err
	}

	payload := f.Payload
	if f.ToBeContinued {
		payload += boundaryFlag
	}
	if f.ContinuesPrevious {
		payload = boundaryFlag + payload
	}

	if !p.showMetadata {
		_, err := fmt.Fprintln(p.w, payload)
		return err
	}

	contMarker := " "
	if f.ContinuesPrevious {
		contMarker = "+"
	}
	_, err := fmt.Fprintf(p.w, "%c%s%s%s\t(%d %s)\t%s\n",
		f.ScannerLetter(),
		f.OffsetKind.Marker(),
		formatOffset(f.ByteOffset, p.radix),
		contMarker,
		f.ScannerID,
		f.EncodingLabel,
		payload,
	)
	return err
}

func formatOffset(offset int64, radix strconfig.Radix) string {
	switch radix {
	case strconfig.RadixOctal:
		return strconv.FormatInt(offset, 8)
	case strconfig.RadixHex:
		return strconv.FormatInt(offset, 16)
	case strconfig.RadixDecimal:
		return strconv.FormatInt(offset, 10)
	default:
		return ""
	}
}
