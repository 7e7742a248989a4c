package auth

import (
	"testing"
	"time"
)

func TestHashAndVerifyDeviceKey(t *testing.T) {
	hash, err := HashDeviceKey("kiosk-secret-1")
	if err != nil {
		t.Fatalf("HashDeviceKey failed: %v", err)
	}
	if hash == "kiosk-secret-1" {
		t.Fatal("hash must not equal the plaintext key")
	}
	if !VerifyDeviceKey(hash, "kiosk-secret-1") {
		t.Error("expected correct key to verify")
	}
	if VerifyDeviceKey(hash, "wrong-key") {
		t.Error("expected wrong key to fail verification")
	}
}

func TestVerifyDeviceKey_InvalidHash(t *testing.T) {
	// Malformed hashes must return false, never panic or error out.
	if VerifyDeviceKey("not-a-bcrypt-hash", "anything") {
		t.Error("expected invalid hash to fail verification")
	}
}

func TestGenerateAndParseJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT("device-42")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}
	if claims.DeviceID != "device-42" {
		t.Errorf("expected device-42, got %q", claims.DeviceID)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Error("expected a future expiry")
	}
}

func TestParseJWT_Empty(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	if _, err := ParseJWT(""); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	token, err := GenerateJWT("device-1")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-b")
	if _, err := ParseJWT(token); err == nil {
		t.Error("expected signature validation to fail with a different secret")
	}
}

func TestParseJWTExpiry(t *testing.T) {
	if got := parseJWTExpiry(""); got != 24*time.Hour {
		t.Errorf("empty expiry: expected 24h, got %v", got)
	}
	if got := parseJWTExpiry("not-a-number"); got != 24*time.Hour {
		t.Errorf("invalid expiry: expected 24h, got %v", got)
	}
	if got := parseJWTExpiry("2"); got != 2*time.Hour {
		t.Errorf("expected 2h, got %v", got)
	}
}
