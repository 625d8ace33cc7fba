package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const DefaultCodeLength = 6

// DigitCodeGenerator produces uniformly distributed numeric codes with no
// leading zero, so every code has exactly Length digits.
type DigitCodeGenerator struct {
	Length int
}

func NewDigitCodeGenerator(length int) *DigitCodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &DigitCodeGenerator{Length: length}
}

func (g *DigitCodeGenerator) Generate() (string, error) {
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(g.Length-1)), nil)
	span := new(big.Int).Mul(low, big.NewInt(9))

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("random code: %w", err)
	}
	return n.Add(n, low).String(), nil
}
