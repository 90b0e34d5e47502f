package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

const CodeDigits = 6

// CodeHasher creates numeric one-time codes and the keyed hash that is
// stored in their place
type CodeHasher struct {
	key []byte
}

func NewCodeHasher(secret string) *CodeHasher {
	return &CodeHasher{key: []byte(secret)}
}

// Generate returns a uniformly random zero padded 6 digit code
func (h *CodeHasher) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", CodeDigits, n.Int64()), nil
}

// Sum returns the hex encoded HMAC-SHA256 of code
func (h *CodeHasher) Sum(code string) string {
	m := hmac.New(sha256.New, h.key)
	m.Write([]byte(code))
	return hex.EncodeToString(m.Sum(nil))
}

// Equal reports whether code hashes to stored, in constant time
func (h *CodeHasher) Equal(code, stored string) bool {
	return hmac.Equal([]byte(h.Sum(code)), []byte(stored))
}
