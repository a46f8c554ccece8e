// Package shortcode generates fixed-length base62 codes for shortened links.
package shortcode

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Alphabet is ordered digits, lowercase, uppercase.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// DefaultLength is the code length used when the caller does not ask for one.
const DefaultLength = 6

// MaxLength bounds the code length accepted from callers.
const MaxLength = 32

const (
	minEntropyBytes = 8
	// extra random bits drawn above 62^length to keep modulo bias below 2^-16
	slackBits = 16
)

var base = big.NewInt(int64(len(Alphabet)))

// Generator produces random codes from an entropy source.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a Generator reading from r. A nil reader means crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

// Generate returns a code of exactly length symbols from Alphabet.
// The random bytes are read as an unsigned little-endian integer which is
// repeatedly reduced modulo 62, one symbol per step.
func (g *Generator) Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	buf := make([]byte, entropyBytes(length))
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	// big.Int ожидает big-endian, поэтому разворачиваем
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	value := new(big.Int).SetBytes(buf)

	var sb strings.Builder
	sb.Grow(length)
	mod := new(big.Int)
	for sb.Len() < length {
		value.DivMod(value, base, mod)
		sb.WriteByte(Alphabet[mod.Int64()])
	}

	return sb.String(), nil
}

// entropyBytes scales the random input with the code length.
func entropyBytes(length int) int {
	// log2(62) < 6
	n := (length*6 + slackBits + 7) / 8
	if n < minEntropyBytes {
		return minEntropyBytes
	}
	return n
}

// Valid reports whether code has the given length and uses only Alphabet symbols.
func Valid(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(Alphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
