package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateResetTicket returns a high-entropy plaintext ticket and its one-way
// hash. Only the hash is ever persisted; the plaintext is disclosed once.
func GenerateResetTicket() (plain string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset ticket: %w", err)
	}
	plain = hex.EncodeToString(buf)
	return plain, HashResetTicket(plain), nil
}

// HashResetTicket hashes a plaintext ticket for storage or lookup.
func HashResetTicket(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
