package authorization

import (
	"context"
	"fmt"
	"time"

	"github.com/cristalhq/jwt/v4"

	"travelease_service/domain"
	"travelease_service/errors"
)

// TokenVerifier accepts a raw bearer token and yields the identity claim
// it carries. Verifiers are tried in order; the first that accepts wins.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Claims, error)
}

// LocalVerifier checks tokens issued by this service: HS256 signature
// against the shared secret, then expiry.
type LocalVerifier struct {
	verifier *jwt.HSAlg
}

func NewLocalVerifier(secret []byte) (*LocalVerifier, error) {
	verifier, err := jwt.NewVerifierHS(jwt.HS256, secret)
	if err != nil {
		return nil, err
	}
	return &LocalVerifier{verifier: verifier}, nil
}

func (local *LocalVerifier) Verify(ctx context.Context, tokenString string) (*domain.Claims, error) {
	token, err := jwt.Parse([]byte(tokenString), local.verifier)
	if err != nil {
		return nil, err
	}

	var claims domain.Claims
	if err := jwt.ParseClaims(token.Bytes(), local.verifier, &claims); err != nil {
		return nil, err
	}

	if !claims.ExpiresAt.IsZero() && time.Now().After(claims.ExpiresAt) {
		return nil, fmt.Errorf(errors.InvalidTokenError)
	}

	return &claims, nil
}
