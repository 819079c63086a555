// Package encoding decodes names read from mesh and material files that were
// written in a legacy code page.
package encoding

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for labels htmlindex does not know.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// IsUTF8Label reports whether label selects UTF-8, which needs no decoding.
// The empty label means UTF-8.
func IsUTF8Label(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8", "unicode-1-1-utf-8":
		return true
	}
	return false
}

// Validate checks that label names a known encoding.
func Validate(label string) error {
	if IsUTF8Label(label) {
		return nil
	}
	if _, err := htmlindex.Get(label); err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	return nil
}

// Decode converts s from the encoding named by label (a WHATWG label such as
// "euc-kr", "shift_jis" or "windows-1252") to UTF-8.
func Decode(label, s string) (string, error) {
	if IsUTF8Label(label) {
		return s, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	out, _, err := transform.String(enc.NewDecoder(), s)
	if err != nil {
		return "", fmt.Errorf("decoding %q as %s: %w", s, label, err)
	}
	return out, nil
}

// DecodeAll decodes every string in ss in place. The first failure stops
// decoding and is returned.
func DecodeAll(label string, ss ...*string) error {
	if IsUTF8Label(label) {
		return nil
	}
	for _, s := range ss {
		if *s == "" {
			continue
		}
		d, err := Decode(label, *s)
		if err != nil {
			return err
		}
		*s = d
	}
	return nil
}

// EUCKRToUTF8 converts EUC-KR encoded bytes to a UTF-8 string.
// Returns the original string if conversion fails.
func EUCKRToUTF8(data []byte) string {
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// NormalizePath turns a texture reference into a slash-separated relative
// path. Backslashes are common in files exported on Windows.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// ValidUTF8 reports whether s is already valid UTF-8.
func ValidUTF8(s string) bool {
	return utf8.ValidString(s)
}
