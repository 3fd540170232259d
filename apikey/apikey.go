/*
Package apikey generates and validates API keys for the programmatic
interface.

KEY FORMAT:
  rh_live_sk_<32 random alphanumeric characters>

Only a bcrypt hash of the full key is persisted, plus the first 8
characters as a lookup prefix. Validation fetches the candidate records by
prefix and compares the presented key against each hash.
*/
package apikey

import (
	"crypto/rand"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	keyHeader    = "rh_live_sk_"
	secretLength = 32
	prefixLength = 8

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Generate returns a fresh API key in full. The caller shows it to the
// user exactly once and stores only Hash(key) and Prefix(key).
func Generate() (string, error) {
	buf := make([]byte, secretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key material: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return keyHeader + string(buf), nil
}

// Prefix returns the short lookup prefix of a key: the first 8 secret
// characters after the constant header, so prefixes distinguish keys.
// Prefixes are indexed but not unique; validation still compares hashes.
func Prefix(key string) string {
	secret := strings.TrimPrefix(key, keyHeader)
	if len(secret) < prefixLength {
		return secret
	}
	return secret[:prefixLength]
}

// Hash returns the bcrypt hash of a key for storage.
func Hash(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(hash), nil
}

// Matches reports whether the presented key corresponds to the stored hash.
func Matches(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
