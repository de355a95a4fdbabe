// Package encset resolves encoding labels from the CLI surface to
// streaming decoders that hand the scanner package validated UTF-8.
package encset

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Label is a canonical encoding name, e.g. "utf-8", "utf-16le", "big5".
// It also carries the "ascii" pseudo-encoding of spec.md §3.
type Label string

const asciiLabel Label = "ascii"

// legacyAliases maps the handful of names spec.md §1 calls out by name to
// a concrete x/text encoding when htmlindex doesn't carry the exact
// spelling requested.
var legacyAliases = map[string]encoding.Encoding{
	"utf-16le":  unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf16le":   unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be":  unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"utf16be":   unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"big5":      traditionalchinese.Big5,
	"euc-jp":    japanese.EUCJP,
	"eucjp":     japanese.EUCJP,
	"koi8-r":    charmap.KOI8R,
	"koi8r":     charmap.KOI8R,
	"euc-kr":    korean.EUCKR,
	"gbk":       simplifiedchinese.GBK,
	"gb18030":   simplifiedchinese.GB18030,
	"shift_jis": japanese.ShiftJIS,
	"shiftjis":  japanese.ShiftJIS,
}

// Normalize lowercases and trims a user-supplied encoding name.
func Normalize(name string) Label {
	return Label(strings.ToLower(strings.TrimSpace(name)))
}

// Resolve returns a fresh Decoder for the named encoding, or a
// configuration error (spec.md §7 class 1) if the name is unknown.
func Resolve(label Label) (Decoder, error) {
	name := string(label)
	if label == asciiLabel {
		return newASCIIDecoder(), nil
	}
	if name == "utf-8" || name == "utf8" {
		return newTransformDecoder(unicode.UTF8.NewDecoder()), nil
	}
	if enc, ok := legacyAliases[name]; ok {
		return newTransformDecoder(enc.NewDecoder()), nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown encoding %q", name)
	}
	return newTransformDecoder(enc.NewDecoder()), nil
}

// ListNames returns the well-known names this binary accepts for
// -l/--list-encodings, in a stable order.
func ListNames() []string {
	names := []string{"ascii", "utf-8", "utf-16le", "utf-16be"}
	for _, n := range []string{
		"big5", "euc-jp", "euc-kr", "koi8-r", "gbk", "gb18030", "shift_jis",
		"windows-1250", "windows-1251", "windows-1252", "windows-1253",
		"windows-1254", "windows-1255", "windows-1256", "windows-1257",
		"windows-1258", "iso-8859-2", "iso-8859-5", "iso-8859-6",
		"iso-8859-7", "iso-8859-8", "macintosh", "ibm866", "koi8-u",
	} {
		names = append(names, n)
	}
	return names
}
