package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "repair-desk", 5)
	token, exp, err := tm.GenerateToken("maria")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if exp.IsZero() {
		t.Fatalf("expected expiry")
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Operator != "maria" {
		t.Fatalf("operator = %q", claims.Operator)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenManager("a", "repair-desk", 5).GenerateToken("x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenManager("b", "repair-desk", 5).ParseToken(token); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ComparePassword(hash, "hunter2"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch")
	}
}
