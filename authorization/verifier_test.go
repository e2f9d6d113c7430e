package authorization

import (
	"context"
	"testing"
	"time"

	"github.com/cristalhq/jwt/v4"

	"travelease_service/domain"
)

func signClaims(t *testing.T, secret []byte, claims *domain.Claims) string {
	t.Helper()

	signer, err := jwt.NewSignerHS(jwt.HS256, secret)
	if err != nil {
		t.Fatalf("NewSignerHS: %v", err)
	}
	token, err := jwt.NewBuilder(signer).Build(claims)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return token.String()
}

func TestLocalVerifierAcceptsOwnToken(t *testing.T) {
	secret := []byte("test-secret")
	tokenString := signClaims(t, secret, &domain.Claims{
		Email:     "a@x.com",
		ID:        "656f5a6b2c1d3e4f5a6b7c8d",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	verifier, err := NewLocalVerifier(secret)
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}

	claims, err := verifier.Verify(context.Background(), tokenString)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("email mismatch: %s", claims.Email)
	}
	if claims.ID != "656f5a6b2c1d3e4f5a6b7c8d" {
		t.Fatalf("id mismatch: %s", claims.ID)
	}
}

func TestLocalVerifierRejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	tokenString := signClaims(t, secret, &domain.Claims{
		Email:     "a@x.com",
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	verifier, err := NewLocalVerifier(secret)
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}

	if _, err := verifier.Verify(context.Background(), tokenString); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestLocalVerifierRejectsForeignSignature(t *testing.T) {
	tokenString := signClaims(t, []byte("other-secret"), &domain.Claims{
		Email:     "a@x.com",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	verifier, err := NewLocalVerifier([]byte("test-secret"))
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}

	if _, err := verifier.Verify(context.Background(), tokenString); err == nil {
		t.Fatalf("expected foreign signature to be rejected")
	}
}

func TestLocalVerifierRejectsGarbage(t *testing.T) {
	verifier, err := NewLocalVerifier([]byte("test-secret"))
	if err != nil {
		t.Fatalf("NewLocalVerifier: %v", err)
	}

	if _, err := verifier.Verify(context.Background(), "not-a-token"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}
