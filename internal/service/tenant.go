package service

import (
	"context"

	"github.com/google/uuid"

	"go-inventory-bom/internal/appctx"
)

type Tenant struct {
	ID    uuid.UUID
	Roles []string
}

// TenantResolver yields the company the current request acts for.
type TenantResolver interface {
	CurrentTenant(ctx context.Context) (Tenant, error)
}

// ContextTenantResolver reads the tenant the auth middleware stored in the context.
type ContextTenantResolver struct{}

func (ContextTenantResolver) CurrentTenant(ctx context.Context) (Tenant, error) {
	id, ok := appctx.CompanyID(ctx)
	if !ok {
		return Tenant{}, newError(ErrTenantRequired, "NotBelongToTenant")
	}
	roles, _ := appctx.GetStrings(ctx, appctx.ContextKeyRoles)
	return Tenant{ID: id, Roles: roles}, nil
}
