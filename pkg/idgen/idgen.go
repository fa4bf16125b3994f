// Package idgen formats human-readable identifiers.
package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Format renders a prefixed, zero-padded label such as S001 or T042.
// Values past 999 keep growing in width.
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

// RandomCode returns n characters drawn uniformly from [A-Z0-9].
func RandomCode(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code length must be positive")
	}
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}
