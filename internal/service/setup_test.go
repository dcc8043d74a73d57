package service

import (
	"context"
	"sync"
	"testing"

	"go-inventory-bom/internal/appctx"
	"go-inventory-bom/internal/model"
	"go-inventory-bom/internal/repository"
	"go-inventory-bom/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type env struct {
	db       *gorm.DB
	ctx      context.Context
	tenantID uuid.UUID

	unitRepo        repository.UnitRepository
	rawMaterialRepo repository.RawMaterialRepository
	formulaRepo     repository.FormulaRepository
	productRepo     repository.ProductRepository
	orderRepo       repository.OrderRepository

	units        UnitService
	rawMaterials RawMaterialService
	formulas     FormulaService
	products     ProductService
	orders       OrderService
	notifier     *recordingNotifier
}

type recordingNotifier struct {
	mu       sync.Mutex
	payloads []map[string]interface{}
}

func (n *recordingNotifier) Notify(companyID uuid.UUID, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, payload)
}

type envOption func(*envConfig)

type envConfig struct {
	guard              OrderGuard
	allowNegativeStock bool
}

func withGuard(g OrderGuard) envOption {
	return func(c *envConfig) { c.guard = g }
}

func withoutNegativeStock() envOption {
	return func(c *envConfig) { c.allowNegativeStock = false }
}

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()
	cfg := envConfig{guard: NoopOrderGuard(), allowNegativeStock: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := database.OpenInMemory(uuid.NewString())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	e := &env{
		db:              db,
		tenantID:        uuid.New(),
		unitRepo:        repository.NewUnitRepo(db),
		rawMaterialRepo: repository.NewRawMaterialRepo(db),
		formulaRepo:     repository.NewFormulaRepo(db),
		productRepo:     repository.NewProductRepo(db),
		orderRepo:       repository.NewOrderRepo(db),
		notifier:        &recordingNotifier{},
	}
	if err := e.unitRepo.SeedDefaults(); err != nil {
		t.Fatalf("seed units: %v", err)
	}
	e.ctx = appctx.WithTenant(context.Background(), e.tenantID, "tester")

	tenants := ContextTenantResolver{}
	e.units = NewUnitService(db, e.unitRepo, e.rawMaterialRepo, e.formulaRepo, tenants)
	e.rawMaterials = NewRawMaterialService(db, e.rawMaterialRepo, e.unitRepo, e.formulaRepo, e.units, tenants, e.notifier, cfg.allowNegativeStock)
	e.formulas = NewFormulaService(db, e.formulaRepo, e.rawMaterialRepo, e.unitRepo, e.productRepo, tenants)
	e.products = NewProductService(e.productRepo, e.formulaRepo, tenants)
	e.orders = NewOrderService(db, e.orderRepo, e.productRepo, e.formulaRepo, e.rawMaterialRepo, e.units, tenants, cfg.guard, e.notifier,
		OrderConfig{AllowNegativeStock: cfg.allowNegativeStock})
	return e
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// global returns a seeded global unit by short code.
func (e *env) global(t *testing.T, shortCode string) *model.Unit {
	t.Helper()
	var unit model.Unit
	if err := e.db.Where("is_global = ? AND short_code = ?", true, shortCode).First(&unit).Error; err != nil {
		t.Fatalf("global unit %s: %v", shortCode, err)
	}
	return &unit
}

func (e *env) createUnit(t *testing.T, name, shortCode, rate string, parentID uuid.UUID) *model.Unit {
	t.Helper()
	unit, err := e.units.CreateUnit(e.ctx, &CreateUnitRequest{
		Name:           name,
		ShortCode:      shortCode,
		ConversionRate: dec(rate),
		ParentUnitID:   parentID,
	})
	if err != nil {
		t.Fatalf("create unit %s: %v", shortCode, err)
	}
	return unit
}

func (e *env) createRawMaterial(t *testing.T, name, stock string, unitID uuid.UUID) *model.RawMaterial {
	t.Helper()
	rm, err := e.rawMaterials.CreateRawMaterial(e.ctx, &CreateRawMaterialRequest{
		Name:    name,
		Barcode: "BC-" + name,
		Price:   dec("1"),
		Stock:   dec(stock),
		UnitID:  unitID,
	})
	if err != nil {
		t.Fatalf("create raw material %s: %v", name, err)
	}
	return rm
}

func (e *env) createFormula(t *testing.T, name string, items ...FormulaItemRequest) *model.ProductFormula {
	t.Helper()
	formula, err := e.formulas.CreateFormula(e.ctx, &CreateFormulaRequest{Name: name, Items: items})
	if err != nil {
		t.Fatalf("create formula %s: %v", name, err)
	}
	return formula
}

func (e *env) createProduct(t *testing.T, sku, price string, formulaID *uuid.UUID) *model.Product {
	t.Helper()
	product, err := e.products.CreateProduct(e.ctx, &ProductRequest{
		SKU:              sku,
		Name:             "Product " + sku,
		Price:            dec(price),
		ProductFormulaID: formulaID,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", sku, err)
	}
	return product
}

func (e *env) stockOf(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	rm, err := e.rawMaterialRepo.FindByID(context.Background(), e.tenantID, id)
	if err != nil {
		t.Fatalf("find raw material: %v", err)
	}
	return rm.Stock
}

func expectKind(t *testing.T, err error, kind Kind, key string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s/%s, got nil", kind, key)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, got, err)
	}
	if key != "" && KeyOf(err) != key {
		t.Fatalf("expected key %s, got %s (%v)", key, KeyOf(err), err)
	}
}

func expectDecimal(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s: expected %s, got %s", what, want, got.String())
	}
}
