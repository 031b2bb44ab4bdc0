// Package widestr encodes Go strings into fixed-width wchar_t buffers.
package widestr

import (
	"encoding/binary"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Encode converts s into wide-character code units for a buffer of width
// units, NUL terminator included. unitSize is sizeof(wchar_t): 2 selects
// UTF-16 (Windows), anything else UTF-32. Text that does not fit is cut on
// a character boundary. A width below 1 yields nil.
func Encode(s string, width, unitSize int) []uint32 {
	if width < 1 {
		return nil
	}

	var units []uint32
	if unitSize == 2 {
		units = utf16Units(s)
	} else {
		units = utf32Units(s)
	}

	limit := width - 1
	if len(units) > limit {
		units = units[:limit]
		if unitSize == 2 && limit > 0 && isHighSurrogate(units[limit-1]) {
			units = units[:limit-1]
		}
	}

	return append(units, 0)
}

// Decode turns NUL-terminated code units back into a string.
func Decode(units []uint32, unitSize int) string {
	n := 0
	for n < len(units) && units[n] != 0 {
		n++
	}
	if unitSize != 2 {
		var b strings.Builder
		for _, u := range units[:n] {
			b.WriteRune(rune(u))
		}
		return b.String()
	}

	buf := make([]byte, 2*n)
	for i, u := range units[:n] {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(u))
	}
	out, err := utf16LE.NewDecoder().Bytes(buf)
	if err != nil {
		return ""
	}
	return string(out)
}

func utf16Units(s string) []uint32 {
	b, err := utf16LE.NewEncoder().Bytes([]byte(strings.ToValidUTF8(s, "�")))
	if err != nil {
		return nil
	}
	units := make([]uint32, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint32(binary.LittleEndian.Uint16(b[i:])))
	}
	return units
}

func utf32Units(s string) []uint32 {
	runes := []rune(strings.ToValidUTF8(s, "�"))
	units := make([]uint32, len(runes))
	for i, r := range runes {
		units[i] = uint32(r)
	}
	return units
}

func isHighSurrogate(u uint32) bool {
	return u >= 0xD800 && u <= 0xDBFF
}
