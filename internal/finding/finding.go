// Package finding defines the record emitted by a scanner and consumed
// by the merger and printer (spec.md §3).
package finding

import "fmt"

// OffsetKind records how precisely ByteOffset is known (spec.md §4.2
// "Position precision").
type OffsetKind int

const (
	// Exact means ByteOffset is the true start of the finding.
	Exact OffsetKind = iota
	// UpperBound means the true start is within the previous Q bytes of
	// ByteOffset.
	UpperBound
	// LowerBound means the true start is within the next Q bytes of
	// ByteOffset.
	LowerBound
)

// Marker is the printer-facing glyph for this OffsetKind: space, "<" or
// ">" (spec.md §4.2, §6).
func (k OffsetKind) Marker() string {
	switch k {
	case UpperBound:
		return "<"
	case LowerBound:
		return ">"
	default:
		return " "
	}
}

func (k OffsetKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case UpperBound:
		return "upper-bound"
	case LowerBound:
		return "lower-bound"
	default:
		return fmt.Sprintf("OffsetKind(%d)", int(k))
	}
}

// Finding is one emitted record (spec.md §3).
type Finding struct {
	ByteOffset    int64
	OffsetKind    OffsetKind
	ScannerID     int // 1-based, in configuration order
	EncodingLabel string
	Payload       string // valid UTF-8, <= Q bytes

	ContinuesPrevious bool
	ToBeContinued     bool
}

// ScannerLetter is the lowercase letter (spec.md: "a", "b", ...)
// assigned to ScannerID in configuration order.
func (f Finding) ScannerLetter() byte {
	return 'a' + byte(f.ScannerID-1)
}
