// Package generator produces random candidate short codes.
package generator

import (
	"errors"
	"math/rand/v2"
)

const (
	DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultLength   = 6
)

var (
	ErrEmptyAlphabet = errors.New("alphabet must not be empty")
	ErrInvalidLength = errors.New("length must be positive")
)

// Generator draws codes uniformly from its alphabet. It is not
// cryptographically secure; uniqueness is the store's job.
type Generator struct {
	alphabet string
	length   int
}

func New(alphabet string, length int) (*Generator, error) {
	if alphabet == "" {
		return nil, ErrEmptyAlphabet
	}
	if length <= 0 {
		return nil, ErrInvalidLength
	}

	return &Generator{
		alphabet: alphabet,
		length:   length,
	}, nil
}

func NewDefault() *Generator {
	return &Generator{
		alphabet: DefaultAlphabet,
		length:   DefaultLength,
	}
}

// Generate is safe for concurrent use; the top-level math/rand/v2 source is
// seeded per process and shared without correlation between calls.
func (g *Generator) Generate() string {
	b := make([]byte, g.length)
	for i := range b {
		b[i] = g.alphabet[rand.IntN(len(g.alphabet))]
	}
	return string(b)
}
