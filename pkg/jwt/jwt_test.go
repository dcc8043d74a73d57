package jwt

import (
	"testing"

	"github.com/google/uuid"
)

func TestGenerateAndValidateToken_CarriesCompany(t *testing.T) {
	SetSecretKey("test-secret-that-is-long-enough-1234")
	userID := uuid.New()
	companyID := uuid.New()

	token, err := GenerateToken(userID, companyID, "a@b.c", "Alice", "ADMIN", []string{"unit:view"}, "v1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, claims.UserID)
	}
	if claims.CompanyID != companyID {
		t.Errorf("expected company %s, got %s", companyID, claims.CompanyID)
	}
	if len(claims.Privileges) != 1 || claims.Privileges[0] != "unit:view" {
		t.Errorf("unexpected privileges %v", claims.Privileges)
	}
}

func TestValidateToken_RejectsForeignSecret(t *testing.T) {
	SetSecretKey("first-secret-first-secret-first-secret")
	token, err := GenerateToken(uuid.New(), uuid.New(), "a@b.c", "Alice", "ADMIN", nil, "v1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	SetSecretKey("second-secret-second-secret-second")
	if _, err := ValidateToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
