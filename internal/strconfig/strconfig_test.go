package strconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rclone/stringsext/internal/encset"
	"github.com/rclone/stringsext/internal/filter"
)

func defaultConfig() Config {
	return Config{
		MinChars:      1,
		ASCIIFilter:   filter.ASCIIAliases["printable"],
		BlockFilter:   filter.BlockAliases["common"],
		GrepChar:      -1,
		OutputLineLen: DefaultOutputLineLen,
		Radix:         RadixHex,
	}
}

func TestScannerSpecValueCompactForm(t *testing.T) {
	var specs []ScannerSpec
	v := &ScannerSpecValue{Specs: &specs}
	require.NoError(t, v.Set("utf-8,5,0x0,0x0,47"))
	require.Len(t, specs, 1)
	s := specs[0]
	assert.EqualValues(t, "utf-8", s.Label)
	assert.Equal(t, 5, s.MinChars)
	assert.Equal(t, '/', rune(s.GrepChar))
}

func TestScannerSpecValueBareEncoding(t *testing.T) {
	var specs []ScannerSpec
	v := &ScannerSpecValue{Specs: &specs}
	require.NoError(t, v.Set("utf-16le"))
	require.Len(t, specs, 1)
	assert.False(t, specs[0].hasMinChars)
	assert.EqualValues(t, encset.Label("utf-16le"), specs[0].Label)
}

func TestScannerSpecValueRejectsTooManyFields(t *testing.T) {
	var specs []ScannerSpec
	v := &ScannerSpecValue{Specs: &specs}
	assert.Error(t, v.Set("utf-8,1,0x0,0x0,47,extra"))
}

func TestBuildResolvesDefaultsPerScanner(t *testing.T) {
	var specs []ScannerSpec
	v := &ScannerSpecValue{Specs: &specs}
	require.NoError(t, v.Set("utf-8"))
	require.NoError(t, v.Set("ascii,10"))

	cfg, err := Build(specs, defaultConfig())
	require.NoError(t, err)
	require.Len(t, cfg.Scanners, 2)
	assert.Equal(t, 1, cfg.Scanners[0].MinChars) // inherited default
	assert.Equal(t, 10, cfg.Scanners[1].MinChars) // overridden
}

func TestBuildRejectsUnknownEncoding(t *testing.T) {
	var specs []ScannerSpec
	v := &ScannerSpecValue{Specs: &specs}
	require.NoError(t, v.Set("not-a-real-encoding"))
	_, err := Build(specs, defaultConfig())
	require.Error(t, err)
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestBuildRejectsNoScanners(t *testing.T) {
	_, err := Build(nil, defaultConfig())
	assert.Error(t, err)
}

func TestBuildRejectsBadMinChars(t *testing.T) {
	d := defaultConfig()
	d.MinChars = 0
	var specs []ScannerSpec
	v := &ScannerSpecValue{Specs: &specs}
	require.NoError(t, v.Set("utf-8"))
	_, err := Build(specs, d)
	assert.Error(t, err)
}

func TestRadixSetAndString(t *testing.T) {
	var r Radix
	require.NoError(t, r.Set("x"))
	assert.Equal(t, RadixHex, r)
	assert.Equal(t, "x", r.String())
	assert.Error(t, r.Set("bogus"))
}

func TestClampOutputLineLen(t *testing.T) {
	assert.Equal(t, minOutputLineLen, ClampOutputLineLen(1))
	assert.Equal(t, 100, ClampOutputLineLen(100))
	assert.Equal(t, OutputBufLen/2, ClampOutputLineLen(OutputBufLen))
}
