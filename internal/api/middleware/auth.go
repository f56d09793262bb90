package middleware

import (
	"context"
	"errors"
)

// ErrUnknownToken is returned by StaticVerifier for tokens not in its map.
var ErrUnknownToken = errors.New("unknown token")

// StaticVerifier maps fixed tokens to user IDs. Meant for development and
// tests; production deployments plug in a real identity provider.
type StaticVerifier struct {
	tokens map[string]string
}

// NewStaticVerifier builds a verifier over a token -> user ID map.
func NewStaticVerifier(tokens map[string]string) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

func (v *StaticVerifier) Verify(ctx context.Context, token string) (string, error) {
	userID, ok := v.tokens[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return userID, nil
}
