package utils

import (
	"testing"
	"time"
)

func TestJWTRoundtrip(t *testing.T) {
	token, err := GenerateJWT("alice_01", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ValidateJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateJWT failed: %v", err)
	}
	if claims.Username != "alice_01" {
		t.Errorf("username mismatch: got %q", claims.Username)
	}
	if claims.Subject != "alice_01" {
		t.Errorf("subject mismatch: got %q", claims.Subject)
	}
	if claims.ID == "" {
		t.Error("expected a jti claim")
	}
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT("alice_01", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	if _, err := ValidateJWT(token, "other-secret"); err == nil {
		t.Fatal("expected validation to fail with wrong secret")
	}
}

func TestValidateJWT_Expired(t *testing.T) {
	token, err := GenerateJWT("alice_01", "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	if _, err := ValidateJWT(token, "test-secret"); err == nil {
		t.Fatal("expected validation to fail for expired token")
	}
}
