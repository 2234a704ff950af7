// Package invitecode generates team invite codes.
package invitecode

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Alphabet leaves out I, L, O, 0 and 1.
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const Length = 8

// MaxAttempts bounds how many fresh codes a caller tries before giving up on
// unique-constraint collisions.
const MaxAttempts = 5

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate returns a new code read from crypto/rand.
func Generate() (string, error) {
	return GenerateFrom(rand.Reader)
}

// GenerateFrom returns a new code drawing randomness from r.
func GenerateFrom(r io.Reader) (string, error) {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		n, err := rand.Int(r, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Valid reports whether code has the right length and alphabet.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(Alphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
