package extract

import (
	"strings"
	"unicode/utf8"
)

// toValidUTF8 replaces invalid UTF-8 sequences with the replacement character.
func toValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}
