package extract

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// Text returns the whole file, which must be valid UTF-8.
func Text(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if pos := invalidUTF8Offset(data); pos >= 0 {
		return "", fmt.Errorf("%w: 'utf-8' codec can't decode byte 0x%02x in position %d", ErrDecode, data[pos], pos)
	}
	return string(data), nil
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
