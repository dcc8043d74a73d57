package service

import (
	"context"

	"github.com/google/uuid"
)

// OrderGuard serializes order placement per tenant and deduplicates submissions by key.
type OrderGuard interface {
	// Lock returns ok=false when another placement of the tenant holds the lock.
	Lock(ctx context.Context, tenantID uuid.UUID) (unlock func(), ok bool, err error)
	// Reserve returns false when key was already reserved for the tenant.
	Reserve(ctx context.Context, tenantID uuid.UUID, key string) (bool, error)
	Release(ctx context.Context, tenantID uuid.UUID, key string) error
}

type noopOrderGuard struct{}

// NoopOrderGuard is used when redis is not configured; the database transaction alone
// keeps placement atomic.
func NoopOrderGuard() OrderGuard { return noopOrderGuard{} }

func (noopOrderGuard) Lock(context.Context, uuid.UUID) (func(), bool, error) {
	return func() {}, true, nil
}

func (noopOrderGuard) Reserve(context.Context, uuid.UUID, string) (bool, error) { return true, nil }

func (noopOrderGuard) Release(context.Context, uuid.UUID, string) error { return nil }

// Notifier pushes change events to connected clients of a company.
type Notifier interface {
	Notify(companyID uuid.UUID, payload map[string]interface{})
}

type noopNotifier struct{}

func NoopNotifier() Notifier { return noopNotifier{} }

func (noopNotifier) Notify(uuid.UUID, map[string]interface{}) {}
