package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecret returns n random bytes hex-encoded.
func GenerateSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateJWTSecrets returns a distinct 256-bit secret for each of the
// access and refresh token signers.
func GenerateJWTSecrets() (accessSecret, refreshSecret string, err error) {
	accessSecret, err = GenerateSecret(32)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access secret: %w", err)
	}

	refreshSecret, err = GenerateSecret(32)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh secret: %w", err)
	}

	return accessSecret, refreshSecret, nil
}
