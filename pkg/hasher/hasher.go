// Package hasher holds the credential primitives for the dashboard API:
// bcrypt password hashes for the login endpoint and random url-safe secrets
// for token signing.
package hasher

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// Work factor for password hashes. Login happens once per dashboard session,
// so a deliberately slow hash costs nothing in practice.
const hashCost = 10

// HashPassword returns the bcrypt hash the server is configured with.
func HashPassword(pw []byte) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(pw, hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PasswordCorrect checks a login attempt against the configured hash.
func PasswordCorrect(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken returns length random bytes as an unpadded url-safe string,
// suitable for an api secret.
func GenerateToken(length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
