package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	access, err := NewAccessToken(secret, 42, "patient", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if access.Exp.Before(time.Now()) {
		t.Error("token already expired")
	}

	tok, err := jwt.Parse(access.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("parse issued token: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["sub"].(float64) != 42 {
		t.Errorf("sub = %v, want 42", claims["sub"])
	}
	if claims["role"] != "patient" {
		t.Errorf("role = %v, want patient", claims["role"])
	}
}

func TestNewAccessTokenWrongSecret(t *testing.T) {
	access, err := NewAccessToken("right", 1, "admin", 5)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := jwt.Parse(access.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	})
	if err == nil && tok.Valid {
		t.Error("token validated with the wrong secret")
	}
}

func TestRefreshTokens(t *testing.T) {
	r1, err := NewRefreshToken(30)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := NewRefreshToken(30)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Raw == r2.Raw {
		t.Error("two refresh tokens are identical")
	}
	if len(r1.Raw) != 96 { // 48 random bytes, hex encoded
		t.Errorf("raw length = %d, want 96", len(r1.Raw))
	}
	if r1.Exp.Before(time.Now().Add(29 * 24 * time.Hour)) {
		t.Error("expiry shorter than requested")
	}
	if HashRefreshRaw(r1.Raw) == HashRefreshRaw(r2.Raw) {
		t.Error("hashes collide for distinct tokens")
	}
	if HashRefreshRaw(r1.Raw) != HashRefreshRaw(r1.Raw) {
		t.Error("hash not deterministic")
	}
}
