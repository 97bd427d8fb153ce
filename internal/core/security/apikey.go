package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateAPIKey creates a new key and its hash.
// Returns: (realKey, hash). The real key is shown to the user once; only
// the hash is stored.
func GenerateAPIKey() (string, string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	realKey := fmt.Sprintf("bk_live_%s", hex.EncodeToString(bytes))
	return realKey, HashKey(realKey), nil
}

// HashKey returns the SHA256 hex digest stored and looked up in the store.
func HashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// ValidateKey checks if the user provided key matches the stored hash.
func ValidateKey(providedKey, storedHash string) bool {
	return HashKey(providedKey) == storedHash
}
