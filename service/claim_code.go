package service

import (
	"crypto/rand"
	"fmt"
)

// claimCodeAlphabet avoids ambiguous characters (0/O, 1/I) so codes survive
// being read aloud or written down. 32 characters, so a byte modulo the
// alphabet length is unbiased.
const claimCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const claimCodeLength = 16

// generateClaimCode returns a new opaque claim token. Codes are drawn from
// crypto/rand; at 16 characters of a 32-character alphabet they carry 80 bits
// of entropy, enough to make guessing infeasible.
func generateClaimCode() (string, error) {
	buf := make([]byte, claimCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	code := make([]byte, claimCodeLength)
	for i, b := range buf {
		code[i] = claimCodeAlphabet[int(b)%len(claimCodeAlphabet)]
	}
	return string(code), nil
}
