package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)

	token, err := m.GenerateToken("user-1", "ana", "ana@example.com")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "ana@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Hour, time.Hour)
	verifier := NewJWTManager("secret-b", time.Hour, time.Hour)

	token, err := issuer.GenerateRefreshToken("user-1")
	if err != nil {
		t.Fatalf("GenerateRefreshToken returned error: %v", err)
	}
	if _, err := verifier.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute, time.Hour)

	token, err := m.GenerateToken("user-1", "", "")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !CheckPasswordHash("s3cret", hash) {
		t.Fatal("expected password to match")
	}
	if CheckPasswordHash("other", hash) {
		t.Fatal("expected wrong password to fail")
	}
}
