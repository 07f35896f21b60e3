package volume

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// The client-visible half of a target token is a reversible encoding of
// the volume-relative path: URL-safe base64 of the UTF-8 bytes with the
// trailing "=" padding stripped and the stripped count appended as a
// single digit. The digit keeps the token decodable without guessing
// padding, and the whole thing survives query strings untouched.

// Encode turns a volume-relative path into the path half of a token.
// The empty path (volume root) encodes to the empty string.
func Encode(rel string) string {
	if rel == "" {
		return ""
	}
	enc := base64.URLEncoding.EncodeToString([]byte(rel))
	trimmed := strings.TrimRight(enc, "=")
	return fmt.Sprintf("%s%d", trimmed, len(enc)-len(trimmed))
}

// Decode reverses Encode. Tokens this connector never produced fail with
// ErrBadToken, not a panic or an unrelated error, so callers can map the
// failure to "invalid target".
func Decode(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	last := token[len(token)-1]
	if last < '0' || last > '9' {
		return "", fmt.Errorf("token %q: missing padding digit: %w", token, ErrBadToken)
	}
	pad := int(last - '0')
	// Base64 never pads with more than two characters.
	if pad > 2 {
		return "", fmt.Errorf("token %q: padding digit out of range: %w", token, ErrBadToken)
	}

	body := token[:len(token)-1] + strings.Repeat("=", pad)
	raw, err := base64.URLEncoding.DecodeString(body)
	if err != nil {
		return "", fmt.Errorf("token %q: %v: %w", token, err, ErrBadToken)
	}
	return string(raw), nil
}
