package volume

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	paths := []string{
		"",
		"a",
		"ab",
		"abc",
		"docs/report.pdf",
		"deeply/nested/dir/with spaces/file name.tar.gz",
		"фото/зима.png",
		"日本語/ファイル.txt",
		".hidden/.tmb",
	}

	for _, p := range paths {
		token := Encode(p)
		decoded, err := Decode(token)
		require.NoError(t, err, "path %q", p)
		require.Equal(t, p, decoded, "path %q via token %q", p, token)
	}
}

func TestCodec_EmptyPathIsEmptyToken(t *testing.T) {
	require.Equal(t, "", Encode(""))

	decoded, err := Decode("")
	require.NoError(t, err)
	require.Equal(t, "", decoded)
}

func TestCodec_TokenIsQuerySafe(t *testing.T) {
	token := Encode("dir with spaces/über&weird?.png")
	for _, c := range token {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			t.Fatalf("token %q contains unsafe character %q", token, c)
		}
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"no trailing digit", "abc"},
		{"padding digit out of range", "YQ3"},
		{"padding digit nine", "YQ9"},
		{"invalid base64 body", "!!!0"},
		{"truncated body", "Y2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.token)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrBadToken), "expected ErrBadToken, got %v", err)
		})
	}
}
