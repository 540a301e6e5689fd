package auth

import (
	"testing"

	"github.com/producemart/wholesale-api/internal/domain"
)

func TestTokenRoundtrip(t *testing.T) {
	secret := []byte("test-secret")
	user := domain.User{ID: "u-1", Role: domain.RoleAdmin, Email: "ops@example.com"}

	raw, err := SignToken(secret, user)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	claims, err := ParseToken(secret, raw)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != domain.RoleAdmin || claims.Email != "ops@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	raw, err := SignToken([]byte("secret-a"), domain.User{ID: "u-1", Role: domain.RoleBuyer})
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	if _, err := ParseToken([]byte("secret-b"), raw); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken([]byte("secret"), "not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}
