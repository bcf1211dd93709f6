package token

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Generator produces candidate token values. Values must be drawn from a
// space large enough that a collision can be treated as a fault.
type Generator interface {
	Generate() (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func() (string, error)

func (f GeneratorFunc) Generate() (string, error) {
	return f()
}

// OpaqueGenerator yields random string values for link-based tokens.
func OpaqueGenerator() Generator {
	return GeneratorFunc(func() (string, error) {
		return uuid.NewString(), nil
	})
}

// NumericGenerator yields zero-padded 6-digit codes for human entry.
func NumericGenerator() Generator {
	return GeneratorFunc(func() (string, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(1000000))
		if err != nil {
			return "", fmt.Errorf("generate numeric code: %w", err)
		}
		return fmt.Sprintf("%06d", n.Int64()), nil
	})
}
