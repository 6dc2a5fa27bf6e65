package shared_utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateTinyID returns a short, URL-safe random identifier of n bytes of
// entropy, used for JWT jti claims.
func GenerateTinyID(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
