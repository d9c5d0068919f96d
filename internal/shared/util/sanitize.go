package util

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidFileName is returned when nothing usable survives sanitization.
var ErrInvalidFileName = errors.New("invalid file name")

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFileName reduces an uploaded file name to a safe, flat ASCII name.
// Accents are folded, path separators become word breaks, everything outside
// [A-Za-z0-9_.-] is dropped and leading/trailing dots and underscores are
// trimmed, so "../../etc/passwd.txt" becomes "etc_passwd.txt".
func SanitizeFileName(name string) (string, error) {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), name)
	if err != nil {
		return "", ErrInvalidFileName
	}

	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		if r == '/' || r == '\\' {
			return ' '
		}
		return r
	}, folded)

	joined := strings.Join(strings.Fields(ascii), "_")
	s := unsafeFileChars.ReplaceAllString(joined, "")
	s = strings.Trim(s, "._")
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}
