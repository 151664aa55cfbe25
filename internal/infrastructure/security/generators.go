package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenerateULID generates a new ULID string.
func GenerateULID() string {
	return ulid.Make().String()
}

// NewProfileID mints the identifier for a new browser profile
func NewProfileID() string {
	return uuid.NewString()
}

// ValidProfileID reports whether id looks like something NewProfileID produced
func ValidProfileID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// GenerateSecureKey creates a cryptographically secure random key and returns it as a hex string.
// Suitable for STORAGE_SECRET.
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
