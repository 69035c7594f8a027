package router

import (
	"regexp"
	"strings"
	"unicode"
)

const maxInputLen = 500

var whitespace = regexp.MustCompile(`\s+`)

// Sanitize normalizes recognized speech before routing: caps the length,
// strips control characters, and collapses runs of whitespace.
func Sanitize(text string) string {
	if len(text) > maxInputLen {
		cut := maxInputLen
		for cut > 0 && !utf8Start(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	// Whitespace collapses to single spaces before the control strip;
	// unicode.IsControl matches tab and newline, and deleting those would
	// glue adjacent words together.
	text = whitespace.ReplaceAllString(text, " ")
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(text)
}

// utf8Start reports whether b can begin a UTF-8 encoded rune, so the length
// cap never splits a multi-byte character.
func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
