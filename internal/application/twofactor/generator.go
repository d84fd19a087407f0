package twofactor

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// DefaultCodeLength is the number of digits in a code when none is configured.
const DefaultCodeLength = 6

var ten = big.NewInt(10)

// Generator produces fixed-length numeric codes. Every digit is drawn
// independently and uniformly from a cryptographically secure source, so
// leading zeros are as likely as any other digit.
type Generator struct {
	length int
	source io.Reader
}

// NewGenerator returns a Generator for codes of the given length. A
// non-positive length falls back to DefaultCodeLength.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &Generator{length: length, source: rand.Reader}
}

func (g *Generator) Generate() (string, error) {
	var b strings.Builder
	b.Grow(g.length)
	for i := 0; i < g.length; i++ {
		n, err := rand.Int(g.source, ten)
		if err != nil {
			return "", fmt.Errorf("generate verification code: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
