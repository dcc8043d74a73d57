package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestUser_ToResponse(t *testing.T) {
	companyID := uuid.New()
	u := &User{
		CompanyID:  companyID,
		Company:    &Company{Name: "Bakery"},
		Email:      "ops@example.com",
		FullName:   "Ops",
		Role:       &Role{Code: RoleAdmin},
		Privileges: []Privilege{{Code: "order:create"}, {Code: "order:unsafe"}},
	}
	if err := u.SetPassword("s3cret"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}

	resp := u.ToResponse()
	if resp.CompanyID != companyID || resp.CompanyName != "Bakery" {
		t.Fatalf("unexpected company %s %q", resp.CompanyID, resp.CompanyName)
	}
	if resp.RoleCode != RoleAdmin {
		t.Fatalf("unexpected role %q", resp.RoleCode)
	}
	if len(resp.Privileges) != 2 || resp.Privileges[1] != "order:unsafe" {
		t.Fatalf("unexpected privileges %v", resp.Privileges)
	}
	if !u.CheckPassword("s3cret") || u.CheckPassword("wrong") {
		t.Fatal("password check mismatch")
	}
}
