package room

import (
	"crypto/rand"
	"encoding/base64"
)

const tokenLength = 32

// generateSecureCode returns a 256-bit URL-safe membership token.
func generateSecureCode() string {
	b := make([]byte, tokenLength)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
