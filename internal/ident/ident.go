package ident

import (
	"context"

	"github.com/google/uuid"
)

// identifier strategy names as they appear in configuration
const (
	StrategySequence = "sequence"
	StrategyToken    = "token"
)

// Allocator produces a unique order identifier. Allocate is called exactly
// once per order creation; no two calls over the store's lifetime may return
// the same value, including under concurrent creates.
type Allocator interface {
	Allocate(ctx context.Context) (string, error)
}

// Token allocates random 128-bit identifiers rendered in canonical UUID form.
// Uniqueness rests on the random source; a collision is treated as negligible.
type Token struct{}

// NewToken creates new Token allocator
func NewToken() *Token {
	return &Token{}
}

// Allocate returns a new random identifier.
func (t *Token) Allocate(_ context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
