// Package encoding converts legacy-encoded source text to UTF-8.
package encoding

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Lookup returns the encoding registered under a WHATWG label such as
// "euc-kr", "shift_jis" or "windows-1252".
func Lookup(charset string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unknown text encoding %q: %w", charset, err)
	}
	return enc, nil
}

// IsUTF8 reports whether charset names UTF-8. Empty means UTF-8.
func IsUTF8(charset string) bool {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// ToUTF8 decodes data from charset. UTF-8 input is returned without its
// byte order mark.
func ToUTF8(data []byte, charset string) ([]byte, error) {
	if IsUTF8(charset) {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}
	enc, err := Lookup(charset)
	if err != nil {
		return nil, err
	}
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", charset, err)
	}
	return result, nil
}
