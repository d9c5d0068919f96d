package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "notes.txt", want: "notes.txt"},
		{name: "traversal", in: "../../etc/passwd.txt", want: "etc_passwd.txt"},
		{name: "windows separators", in: `C:\Users\me\report.pdf`, want: "C_Users_me_report.pdf"},
		{name: "spaces", in: "my  quarterly report.docx", want: "my_quarterly_report.docx"},
		{name: "accents folded", in: "résumé.pdf", want: "resume.pdf"},
		{name: "unsafe characters dropped", in: "a;b|c$.txt", want: "abc.txt"},
		{name: "leading dots trimmed", in: ".hidden.txt", want: "hidden.txt"},
		{name: "case preserved", in: "REPORT.PDF", want: "REPORT.PDF"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SanitizeFileName(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "..")
			assert.NotContains(t, got, "/")
		})
	}
}

func TestSanitizeFileNameRejectsEmptyResult(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "../..", "日本語"} {
		_, err := SanitizeFileName(in)
		assert.ErrorIs(t, err, ErrInvalidFileName, "input %q", in)
	}
}
