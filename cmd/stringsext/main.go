// Command stringsext extracts human-readable strings from binary input
// in multiple character encodings, scanned concurrently.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rclone/stringsext/internal/driver"
	"github.com/rclone/stringsext/internal/encset"
	"github.com/rclone/stringsext/internal/filter"
	"github.com/rclone/stringsext/internal/logging"
	"github.com/rclone/stringsext/internal/printer"
	"github.com/rclone/stringsext/internal/strconfig"
)

// version is overridden at release-build time with -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stringsext:", err)
		os.Exit(1)
	}
}

type asciiMaskFlag struct{ mask *filter.ASCIIMask }

func (f asciiMaskFlag) String() string { return f.mask.String() }
func (f asciiMaskFlag) Type() string   { return "asciiMask" }
func (f asciiMaskFlag) Set(s string) error {
	m, err := filter.ParseASCIIMask(s)
	if err != nil {
		return err
	}
	*f.mask = m
	return nil
}

type blockMaskFlag struct{ mask *filter.BlockMask }

func (f blockMaskFlag) String() string { return f.mask.String() }
func (f blockMaskFlag) Type() string   { return "blockMask" }
func (f blockMaskFlag) Set(s string) error {
	m, err := filter.ParseBlockMask(s)
	if err != nil {
		return err
	}
	*f.mask = m
	return nil
}

type grepCharFlag struct{ v *int }

func (f grepCharFlag) String() string {
	if *f.v < 0 {
		return ""
	}
	return strconv.Itoa(*f.v)
}
func (f grepCharFlag) Type() string { return "grepChar" }
func (f grepCharFlag) Set(s string) error {
	var n int64
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err = strconv.ParseInt(s[2:], 16, 32)
	} else {
		n, err = strconv.ParseInt(s, 10, 32)
	}
	if err != nil {
		return err
	}
	if n < 0 || n > 127 {
		return fmt.Errorf("grep-char %q out of ASCII range", s)
	}
	*f.v = int(n)
	return nil
}

func newRootCmd() *cobra.Command {
	var (
		specs         []strconfig.ScannerSpec
		minChars      = 1
		asciiFilter   = filter.ASCIIAliases["all-ctrl+wsp"]
		blockFilter   = filter.BlockAliases["common"]
		grepChar      = -1
		sameBlock     bool
		outputLineLen = strconfig.DefaultOutputLineLen
		counterOffset int64
		radix         = strconfig.RadixOctal
		noMetadata    bool
		debugOptions  bool
		listEncodings bool
		outputPath    string
		debugTrace    bool
	)

	cmd := &cobra.Command{
		Use:     "stringsext [flags] [FILE...]",
		Short:   "Extract printable strings in multiple encodings from binary input",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listEncodings {
				printEncodingsAndAliases(cmd)
				return nil
			}

			defaults := strconfig.Config{
				MinChars:      minChars,
				ASCIIFilter:   asciiFilter,
				BlockFilter:   blockFilter,
				GrepChar:      grepChar,
				SameBlock:     sameBlock,
				OutputLineLen: strconfig.ClampOutputLineLen(outputLineLen),
				CounterOffset: counterOffset,
				Radix:         radix,
				ShowMetadata:  !noMetadata,
				Inputs:        args,
			}

			cfg, err := strconfig.Build(specs, defaults)
			if err != nil {
				return err
			}

			logging.SetDebug(debugTrace)

			if debugOptions {
				printResolvedConfig(cmd, cfg)
				return nil
			}

			out := cmd.OutOrStdout()
			closeOut := func() error { return nil }
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return &driver.OutputError{Err: err}
				}
				out = f
				closeOut = f.Close
			}
			defer closeOut()

			p := printer.New(out, cfg.Radix, cfg.ShowMetadata)
			if err := driver.Run(cmd.Context(), cfg, p); err != nil {
				return err
			}
			return p.Close()
		},
	}
	cmd.SetContext(context.Background())

	var flags *pflag.FlagSet = cmd.Flags()
	flags.VarP(&strconfig.ScannerSpecValue{Specs: &specs}, "encoding", "e",
		"declare one scanner: ENCNAME[,MIN[,AF[,UBF[,GREP]]]] (repeatable)")
	flags.IntVarP(&minChars, "chars-min", "n", minChars, "default minimum scalar values per finding")
	flags.VarP(asciiMaskFlag{&asciiFilter}, "ascii-filter", "a", "default ASCII mask: alias or 0x-hex")
	flags.VarP(blockMaskFlag{&blockFilter}, "unicode-block-filter", "u", "default Unicode-block mask: alias or 0x-hex")
	flags.VarP(grepCharFlag{&grepChar}, "grep-char", "g", "default required ASCII byte (decimal or 0x-hex)")
	flags.BoolVarP(&sameBlock, "same-unicode-block", "r", false, "require one leading byte per finding on every scanner")
	flags.IntVarP(&outputLineLen, "output-line-len", "q", outputLineLen, "Q: payload ceiling in bytes, clamped to OUTPUT_BUF_LEN/2")
	flags.Int64VarP(&counterOffset, "counter-offset", "s", 0, "value added to every reported byte offset")
	flags.VarP(&radix, "radix", "t", "offset radix: o, x, d, or none")
	flags.BoolVarP(&noMetadata, "no-metadata", "c", false, "suppress metadata columns")
	flags.BoolVarP(&debugOptions, "debug-options", "d", false, "print resolved configuration and exit")
	flags.BoolVarP(&listEncodings, "list-encodings", "l", false, "list known encodings and filter aliases and exit")
	flags.StringVarP(&outputPath, "output", "p", "", "write to FILE instead of stdout")
	flags.BoolVarP(&debugTrace, "trace", "D", false, "trace scan progress (window offsets, scanner construction) on stderr")

	cmd.SetVersionTemplate("stringsext {{.Version}}\n")
	// cobra registers --version lazily in Execute(); force it now so we
	// can give it the "-V" shorthand spec.md §6 asks for.
	cmd.InitDefaultVersionFlag()
	if f := flags.Lookup("version"); f != nil {
		f.Shorthand = "V"
	}
	return cmd
}

func printResolvedConfig(cmd *cobra.Command, cfg strconfig.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "output_line_len: %d\n", cfg.OutputLineLen)
	fmt.Fprintf(out, "counter_offset: %d\n", cfg.CounterOffset)
	fmt.Fprintf(out, "radix: %s\n", cfg.Radix)
	fmt.Fprintf(out, "show_metadata: %v\n", cfg.ShowMetadata)
	for i, sc := range cfg.Scanners {
		fmt.Fprintf(out, "scanner %c: encoding=%s min_chars=%d ascii_filter=%s unicode_block_filter=%s grep_char=%d same_block=%v\n",
			'a'+byte(i), sc.Label, sc.MinChars, sc.ASCIIFilter, sc.BlockFilter, sc.GrepChar, sc.SameBlock)
	}
}

func printEncodingsAndAliases(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Encodings:")
	for _, name := range encset.ListNames() {
		fmt.Fprintln(out, " ", name)
	}
	fmt.Fprintln(out, "ASCII filter aliases:")
	for _, name := range sortedKeys(asciiAliasNames()) {
		fmt.Fprintln(out, " ", name)
	}
	fmt.Fprintln(out, "Unicode-block filter aliases:")
	for _, name := range sortedKeys(blockAliasNames()) {
		fmt.Fprintln(out, " ", name)
	}
}

func asciiAliasNames() map[string]struct{} {
	names := map[string]struct{}{}
	for k := range filter.ASCIIAliases {
		names[k] = struct{}{}
	}
	return names
}

func blockAliasNames() map[string]struct{} {
	names := map[string]struct{}{}
	for k := range filter.BlockAliases {
		names[k] = struct{}{}
	}
	return names
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
