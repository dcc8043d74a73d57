package appctx

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the shared type for all context keys in this codebase.
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyUserID     = ContextKey("UserId")
	ContextKeyUserName   = ContextKey("UserName")
	ContextKeyUserEmail  = ContextKey("UserEmail")
	ContextKeyCompanyID  = ContextKey("CompanyId")
	ContextKeyRoles      = ContextKey("Roles")
	ContextKeyPrivileges = ContextKey("Privileges")
)

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func GetStrings(ctx context.Context, key ContextKey) ([]string, bool) {
	v, ok := ctx.Value(key).([]string)
	return v, ok
}

// CompanyID returns the tenant placed in ctx by the auth middleware.
func CompanyID(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyCompanyID).(uuid.UUID)
	if !ok || v == uuid.Nil {
		return uuid.Nil, false
	}
	return v, true
}

// WithTenant is a shorthand used by tests and internal callers.
func WithTenant(ctx context.Context, companyID uuid.UUID, userID string) context.Context {
	ctx = Set(ctx, ContextKeyCompanyID, companyID)
	return Set(ctx, ContextKeyUserID, userID)
}

// UserID falls back to "system" for internal callers without an identity.
func UserID(ctx context.Context) string {
	if v, ok := GetString(ctx, ContextKeyUserID); ok && v != "" {
		return v
	}
	return "system"
}
