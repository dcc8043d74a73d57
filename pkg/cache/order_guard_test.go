package cache

import (
	"testing"

	"github.com/google/uuid"
)

func TestKeysAreScopedByTenant(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	if lockKey(a) == lockKey(b) {
		t.Fatal("lock keys of different tenants must differ")
	}
	if idempotencyKey(a, "k1") == idempotencyKey(b, "k1") {
		t.Fatal("the same idempotency key must not collide across tenants")
	}
	if got, want := idempotencyKey(a, "k1"), "idempotency:order:"+a.String()+":k1"; got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
