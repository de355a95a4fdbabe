// Package strconfig holds the parsed, validated configuration record
// spec.md §3 "Global configuration"/"Scanner configuration" describes,
// and the pflag.Value types cmd/stringsext uses to build it from the
// command line.
package strconfig

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/rclone/stringsext/internal/encset"
	"github.com/rclone/stringsext/internal/filter"
)

// Radix selects how the printer formats byte offsets (spec.md §6 "-t").
type Radix int

const (
	RadixOctal Radix = iota
	RadixHex
	RadixDecimal
	RadixNone
)

func (r Radix) String() string {
	switch r {
	case RadixOctal:
		return "o"
	case RadixHex:
		return "x"
	case RadixDecimal:
		return "d"
	case RadixNone:
		return "none"
	default:
		return "o"
	}
}

func (r *Radix) Set(s string) error {
	switch strings.ToLower(s) {
	case "o", "octal":
		*r = RadixOctal
	case "x", "hex", "hexadecimal":
		*r = RadixHex
	case "d", "dec", "decimal":
		*r = RadixDecimal
	case "n", "none":
		*r = RadixNone
	default:
		return errors.Errorf("unknown radix %q, want one of o, x, d, none", s)
	}
	return nil
}

func (r Radix) Type() string { return "radix" }

// minOutputLineLen is the smallest -q value that still leaves room for
// at least a handful of characters per emitted line.
const minOutputLineLen = 4

// DefaultOutputLineLen is the Q used when -q is not given.
const DefaultOutputLineLen = 64

// minMinChars is the floor spec.md §7 class 1 requires ("min_chars < 1"
// is a configuration error).
const minMinChars = 1

// ScannerSpec is one -e declaration: an encoding label plus the
// optional per-scanner overrides of the compact form
// "ENCNAME[,MIN[,AF[,UBF[,GREP]]]]" (spec.md §6).
type ScannerSpec struct {
	Label       encset.Label
	MinChars    int
	ASCIIFilter filter.ASCIIMask
	BlockFilter filter.BlockMask
	GrepChar    int

	hasMinChars    bool
	hasASCIIFilter bool
	hasBlockFilter bool
	hasGrepChar    bool
}

// Resolve merges this spec's overrides onto the global defaults,
// producing the Config a scanner.New call consumes.
func (s ScannerSpec) Resolve(defaults Config) ScannerConfig {
	cfg := ScannerConfig{
		Label:       s.Label,
		MinChars:    defaults.MinChars,
		ASCIIFilter: defaults.ASCIIFilter,
		BlockFilter: defaults.BlockFilter,
		GrepChar:    defaults.GrepChar,
		SameBlock:   defaults.SameBlock,
	}
	if s.hasMinChars {
		cfg.MinChars = s.MinChars
	}
	if s.hasASCIIFilter {
		cfg.ASCIIFilter = s.ASCIIFilter
	}
	if s.hasBlockFilter {
		cfg.BlockFilter = s.BlockFilter
	}
	if s.hasGrepChar {
		cfg.GrepChar = s.GrepChar
	}
	return cfg
}

// ScannerConfig is the fully-resolved, per-scanner configuration
// (spec.md §3 "Scanner configuration"), ready to hand to scanner.New.
type ScannerConfig struct {
	Label       encset.Label
	MinChars    int
	ASCIIFilter filter.ASCIIMask
	BlockFilter filter.BlockMask
	GrepChar    int
	SameBlock   bool
}

// ScannerSpecValue is a repeatable pflag.Value for -e: each Set call
// appends one ScannerSpec, parsing the compact
// "ENCNAME[,MIN[,AF[,UBF[,GREP]]]]" form.
type ScannerSpecValue struct {
	Specs *[]ScannerSpec
}

func (v *ScannerSpecValue) String() string {
	if v.Specs == nil || len(*v.Specs) == 0 {
		return ""
	}
	parts := make([]string, len(*v.Specs))
	for i, s := range *v.Specs {
		parts[i] = string(s.Label)
	}
	return strings.Join(parts, ",")
}

func (v *ScannerSpecValue) Type() string { return "scannerSpec" }

func (v *ScannerSpecValue) Set(s string) error {
	fields := strings.Split(s, ",")
	spec := ScannerSpec{Label: encset.Normalize(fields[0]), GrepChar: -1}
	if spec.Label == "" {
		return errors.New("-e requires an encoding name")
	}
	if len(fields) > 1 && fields[1] != "" {
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < minMinChars {
			return errors.Errorf("-e %q: invalid min_chars field %q", s, fields[1])
		}
		spec.MinChars, spec.hasMinChars = n, true
	}
	if len(fields) > 2 && fields[2] != "" {
		m, err := filter.ParseASCIIMask(fields[2])
		if err != nil {
			return errors.Wrapf(err, "-e %q: invalid ascii_filter field", s)
		}
		spec.ASCIIFilter, spec.hasASCIIFilter = m, true
	}
	if len(fields) > 3 && fields[3] != "" {
		m, err := filter.ParseBlockMask(fields[3])
		if err != nil {
			return errors.Wrapf(err, "-e %q: invalid unicode_block_filter field", s)
		}
		spec.BlockFilter, spec.hasBlockFilter = m, true
	}
	if len(fields) > 4 && fields[4] != "" {
		g, err := parseGrepChar(fields[4])
		if err != nil {
			return errors.Wrapf(err, "-e %q: invalid grep_char field", s)
		}
		spec.GrepChar, spec.hasGrepChar = g, true
	}
	if len(fields) > 5 {
		return errors.Errorf("-e %q: too many comma-separated fields", s)
	}
	*v.Specs = append(*v.Specs, spec)
	return nil
}

func parseGrepChar(s string) (int, error) {
	var n int64
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err = strconv.ParseInt(s[2:], 16, 32)
	} else {
		n, err = strconv.ParseInt(s, 10, 32)
	}
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 127 {
		return 0, errors.Errorf("grep_char %q out of ASCII range", s)
	}
	return int(n), nil
}

// Config is the fully-parsed configuration record the driver consumes
// (spec.md §3 "Global configuration" plus the resolved scanner list).
type Config struct {
	Scanners []ScannerConfig

	MinChars    int
	ASCIIFilter filter.ASCIIMask
	BlockFilter filter.BlockMask
	GrepChar    int
	SameBlock   bool

	OutputLineLen int
	CounterOffset int64
	Radix         Radix
	ShowMetadata  bool

	DebugOptions  bool
	ListEncodings bool
	OutputPath    string
	Inputs        []string
}

// ConfigError is a spec.md §7 class 1 error: rejected before scanning
// ever starts.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// Build validates raw, CLI-populated fields and resolves the per-scanner
// override chain, producing the Config the driver and window package
// consume. specs must be non-empty (spec.md: at least one -e is
// required to do anything); outputLineLen is clamped per spec.md §6
// "-q ... clamped to OUTPUT_BUF_LEN/2" by the caller before Build is
// called (see cmd/stringsext).
func Build(specs []ScannerSpec, defaults Config) (Config, error) {
	if defaults.OutputLineLen < minOutputLineLen {
		return Config{}, &ConfigError{Msg: "output-line-len (-q) is below the minimum"}
	}
	if defaults.MinChars < minMinChars {
		return Config{}, &ConfigError{Msg: "chars-min (-n) must be >= 1"}
	}
	if len(specs) == 0 {
		return Config{}, &ConfigError{Msg: "at least one -e ENCODING is required"}
	}

	cfg := defaults
	cfg.Scanners = make([]ScannerConfig, len(specs))
	for i, s := range specs {
		sc := s.Resolve(defaults)
		sc.SameBlock = defaults.SameBlock
		if sc.MinChars < minMinChars {
			return Config{}, &ConfigError{Msg: "scanner " + string(sc.Label) + ": min_chars must be >= 1"}
		}
		if _, err := encset.Resolve(sc.Label); err != nil {
			return Config{}, &ConfigError{Msg: "scanner " + string(sc.Label) + ": " + err.Error()}
		}
		cfg.Scanners[i] = sc
	}
	return cfg, nil
}

// ClampOutputLineLen applies spec.md §6's "-q ... clamped to
// OUTPUT_BUF_LEN/2" rule, where OUTPUT_BUF_LEN is the largest window
// buffer this implementation is willing to allocate per scanner step.
const OutputBufLen = 1 << 20 // 1 MiB

func ClampOutputLineLen(q int) int {
	max := OutputBufLen / 2
	if q > max {
		return max
	}
	if q < minOutputLineLen {
		return minOutputLineLen
	}
	return q
}
