package cryptox

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SecretSize is the byte length of generated signing secrets (256 bits).
const SecretSize = 32

// GenerateSecret returns size random bytes hex encoded.
func GenerateSecret(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("secret size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
