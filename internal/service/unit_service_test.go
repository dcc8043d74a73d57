package service

import (
	"context"
	"testing"

	"go-inventory-bom/internal/appctx"
	"go-inventory-bom/internal/repository"

	"github.com/google/uuid"
)

func TestRateToRoot_RootIsOne(t *testing.T) {
	e := newEnv(t)
	for _, code := range []string{"kg", "l", "m", "pcs", "m2", "s"} {
		rate, err := e.units.RateToRoot(e.ctx, e.global(t, code).ID)
		if err != nil {
			t.Fatalf("RateToRoot(%s): %v", code, err)
		}
		expectDecimal(t, code, rate, "1")
	}
}

func TestRateToRoot_DeepChain(t *testing.T) {
	e := newEnv(t)
	kg := e.global(t, "kg")
	sack := e.createUnit(t, "Sack", "sack", "25", kg.ID)
	pallet := e.createUnit(t, "Pallet", "pallet", "40", sack.ID)
	truck := e.createUnit(t, "Truck", "truck", "12.5", pallet.ID)

	cases := []struct {
		id   uuid.UUID
		want string
	}{
		{sack.ID, "25"},
		{pallet.ID, "1000"},
		{truck.ID, "12500"},
	}
	for _, tc := range cases {
		rate, err := e.units.RateToRoot(e.ctx, tc.id)
		if err != nil {
			t.Fatalf("RateToRoot: %v", err)
		}
		expectDecimal(t, "rate to root", rate, tc.want)
	}
	expectDecimal(t, "cached rate", truck.RateToRoot, "12500")
}

func TestRateToRoot_UnknownUnit(t *testing.T) {
	e := newEnv(t)
	_, err := e.units.RateToRoot(e.ctx, uuid.New())
	expectKind(t, err, ErrNotFound, "EntityNotFound")
}

func TestRateToRoot_OtherTenantUnitIsInvisible(t *testing.T) {
	e := newEnv(t)
	unit := e.createUnit(t, "Sack", "sack", "25", e.global(t, "kg").ID)

	other := appctx.WithTenant(context.Background(), uuid.New(), "intruder")
	_, err := e.units.RateToRoot(other, unit.ID)
	expectKind(t, err, ErrNotFound, "EntityNotFound")
}

func TestRateToRoot_RequiresTenant(t *testing.T) {
	e := newEnv(t)
	_, err := e.units.RateToRoot(context.Background(), e.global(t, "kg").ID)
	expectKind(t, err, ErrTenantRequired, "NotBelongToTenant")
}

func TestConvertUnit_SameUnitIsOne(t *testing.T) {
	e := newEnv(t)
	g := e.global(t, "g")
	rm := e.createRawMaterial(t, "Sugar", "10", g.ID)

	factor, err := e.units.ConvertUnit(e.ctx, g.ID, rm.ID)
	if err != nil {
		t.Fatalf("ConvertUnit: %v", err)
	}
	expectDecimal(t, "factor", factor, "1")
}

func TestConvertUnit_SiblingsScenario(t *testing.T) {
	e := newEnv(t)
	root := e.global(t, "kg")
	a := e.createUnit(t, "Unit A", "ua", "2", root.ID)
	b := e.createUnit(t, "Unit B", "ub", "5", root.ID)
	expectDecimal(t, "rate A", a.RateToRoot, "2")
	expectDecimal(t, "rate B", b.RateToRoot, "5")

	m := e.createRawMaterial(t, "Flour", "1", a.ID)
	factor, err := e.units.ConvertUnit(e.ctx, b.ID, m.ID)
	if err != nil {
		t.Fatalf("ConvertUnit: %v", err)
	}
	expectDecimal(t, "factor", factor, "0.4")
}

func TestConvertUnit_TypeMismatch(t *testing.T) {
	e := newEnv(t)
	rm := e.createRawMaterial(t, "Milk", "5", e.global(t, "l").ID)

	for _, code := range []string{"kg", "g", "pcs", "h"} {
		_, err := e.units.ConvertUnit(e.ctx, e.global(t, code).ID, rm.ID)
		expectKind(t, err, ErrUnitTypeMismatch, "UnitTypeMismatch")
	}
}

func TestConvertUnit_UnknownRawMaterial(t *testing.T) {
	e := newEnv(t)
	_, err := e.units.ConvertUnit(e.ctx, e.global(t, "kg").ID, uuid.New())
	expectKind(t, err, ErrNotFound, "EntityNotFound")
}

func TestCreateUnit_Validation(t *testing.T) {
	e := newEnv(t)
	kg := e.global(t, "kg").ID
	cases := []struct {
		name string
		req  CreateUnitRequest
		key  string
	}{
		{"empty name", CreateUnitRequest{ShortCode: "x", ConversionRate: dec("1"), ParentUnitID: kg}, "ValidationFailed"},
		{"empty short code", CreateUnitRequest{Name: "X", ConversionRate: dec("1"), ParentUnitID: kg}, "ValidationFailed"},
		{"zero rate", CreateUnitRequest{Name: "X", ShortCode: "x", ConversionRate: dec("0"), ParentUnitID: kg}, "ConversionRateMustBePositive"},
		{"negative rate", CreateUnitRequest{Name: "X", ShortCode: "x", ConversionRate: dec("-2"), ParentUnitID: kg}, "ConversionRateMustBePositive"},
		{"missing parent", CreateUnitRequest{Name: "X", ShortCode: "x", ConversionRate: dec("1")}, "ParentUnitRequired"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.units.CreateUnit(e.ctx, &tc.req)
			expectKind(t, err, ErrValidation, tc.key)
		})
	}
}

func TestCreateUnit_UnknownParent(t *testing.T) {
	e := newEnv(t)
	_, err := e.units.CreateUnit(e.ctx, &CreateUnitRequest{Name: "X", ShortCode: "x", ConversionRate: dec("1"), ParentUnitID: uuid.New()})
	expectKind(t, err, ErrNotFound, "EntityNotFound")
}

func TestCreateUnit_UniqueCaseInsensitive(t *testing.T) {
	e := newEnv(t)
	kg := e.global(t, "kg")
	e.createUnit(t, "Sack", "sack", "25", kg.ID)

	_, err := e.units.CreateUnit(e.ctx, &CreateUnitRequest{Name: "SACK", ShortCode: "other", ConversionRate: dec("1"), ParentUnitID: kg.ID})
	expectKind(t, err, ErrConflict, "NameAlreadyExists")

	// global short codes collide too
	_, err = e.units.CreateUnit(e.ctx, &CreateUnitRequest{Name: "Grams", ShortCode: "G", ConversionRate: dec("1"), ParentUnitID: kg.ID})
	expectKind(t, err, ErrConflict, "ShortCodeAlreadyExists")

	// another tenant may reuse the name
	other := appctx.WithTenant(context.Background(), uuid.New(), "other")
	if _, err := e.units.CreateUnit(other, &CreateUnitRequest{Name: "Sack", ShortCode: "sack", ConversionRate: dec("25"), ParentUnitID: kg.ID}); err != nil {
		t.Fatalf("other tenant create: %v", err)
	}
}

func TestCreateUnit_CopiesParentType(t *testing.T) {
	e := newEnv(t)
	unit := e.createUnit(t, "Bottle", "btl", "0.75", e.global(t, "l").ID)
	if unit.UnitType != e.global(t, "l").UnitType {
		t.Fatalf("expected type %s, got %s", e.global(t, "l").UnitType, unit.UnitType)
	}
	if unit.TenantID == nil || *unit.TenantID != e.tenantID || unit.IsGlobal {
		t.Fatalf("unit must belong to the tenant, got tenant=%v global=%v", unit.TenantID, unit.IsGlobal)
	}
}

func TestUpdateUnit_RecomputesDescendants(t *testing.T) {
	e := newEnv(t)
	kg := e.global(t, "kg")
	sack := e.createUnit(t, "Sack", "sack", "25", kg.ID)
	pallet := e.createUnit(t, "Pallet", "pallet", "40", sack.ID)
	truck := e.createUnit(t, "Truck", "truck", "10", pallet.ID)

	if _, err := e.units.UpdateUnit(e.ctx, sack.ID, &UpdateUnitRequest{
		Name: "Sack", ShortCode: "sack", ConversionRate: dec("50"), ParentUnitID: kg.ID,
	}); err != nil {
		t.Fatalf("UpdateUnit: %v", err)
	}

	for _, tc := range []struct {
		id   uuid.UUID
		want string
	}{
		{sack.ID, "50"},
		{pallet.ID, "2000"},
		{truck.ID, "20000"},
	} {
		unit, err := e.units.GetUnit(e.ctx, tc.id)
		if err != nil {
			t.Fatalf("GetUnit: %v", err)
		}
		expectDecimal(t, "cached rate of "+unit.ShortCode, unit.RateToRoot, tc.want)
		walked, err := e.units.RateToRoot(e.ctx, tc.id)
		if err != nil {
			t.Fatalf("RateToRoot: %v", err)
		}
		expectDecimal(t, "walked rate of "+unit.ShortCode, walked, tc.want)
	}
}

func TestUpdateUnit_RejectsCycles(t *testing.T) {
	e := newEnv(t)
	kg := e.global(t, "kg")
	sack := e.createUnit(t, "Sack", "sack", "25", kg.ID)
	pallet := e.createUnit(t, "Pallet", "pallet", "40", sack.ID)

	_, err := e.units.UpdateUnit(e.ctx, sack.ID, &UpdateUnitRequest{Name: "Sack", ShortCode: "sack", ConversionRate: dec("25"), ParentUnitID: sack.ID})
	expectKind(t, err, ErrInvariantViolation, "UnitParentCycle")

	_, err = e.units.UpdateUnit(e.ctx, sack.ID, &UpdateUnitRequest{Name: "Sack", ShortCode: "sack", ConversionRate: dec("25"), ParentUnitID: pallet.ID})
	expectKind(t, err, ErrInvariantViolation, "UnitParentCycle")
}

func TestUpdateUnit_GlobalIsReadOnly(t *testing.T) {
	e := newEnv(t)
	g := e.global(t, "g")
	_, err := e.units.UpdateUnit(e.ctx, g.ID, &UpdateUnitRequest{Name: "Gramme", ShortCode: "gr", ConversionRate: dec("0.001"), ParentUnitID: e.global(t, "kg").ID})
	expectKind(t, err, ErrInvariantViolation, "GlobalUnitReadOnly")

	expectKind(t, e.units.DeleteUnit(e.ctx, g.ID), ErrInvariantViolation, "GlobalUnitReadOnly")
}

func TestUpdateUnit_TypeChange(t *testing.T) {
	e := newEnv(t)
	box := e.createUnit(t, "Box", "box", "10", e.global(t, "pcs").ID)

	// unused: moving under a weight root changes the type
	moved, err := e.units.UpdateUnit(e.ctx, box.ID, &UpdateUnitRequest{Name: "Box", ShortCode: "box", ConversionRate: dec("3"), ParentUnitID: e.global(t, "kg").ID})
	if err != nil {
		t.Fatalf("UpdateUnit: %v", err)
	}
	if moved.UnitType != e.global(t, "kg").UnitType {
		t.Fatalf("expected type %s, got %s", e.global(t, "kg").UnitType, moved.UnitType)
	}
	expectDecimal(t, "rate", moved.RateToRoot, "3")

	// in use: the type is locked
	e.createRawMaterial(t, "Nails", "100", box.ID)
	_, err = e.units.UpdateUnit(e.ctx, box.ID, &UpdateUnitRequest{Name: "Box", ShortCode: "box", ConversionRate: dec("10"), ParentUnitID: e.global(t, "pcs").ID})
	expectKind(t, err, ErrUnitTypeMismatch, "UnitTypeLocked")
}

func TestDeleteUnit_Guards(t *testing.T) {
	e := newEnv(t)
	kg := e.global(t, "kg")

	parent := e.createUnit(t, "Sack", "sack", "25", kg.ID)
	e.createUnit(t, "Pallet", "pallet", "40", parent.ID)
	expectKind(t, e.units.DeleteUnit(e.ctx, parent.ID), ErrInvariantViolation, "UnitHasChildUnit")

	stocked := e.createUnit(t, "Bag", "bag", "5", kg.ID)
	e.createRawMaterial(t, "Rice", "3", stocked.ID)
	expectKind(t, e.units.DeleteUnit(e.ctx, stocked.ID), ErrInvariantViolation, "UnitHasProductRawMaterial")

	scoop := e.createUnit(t, "Scoop", "scoop", "0.05", kg.ID)
	salt := e.createRawMaterial(t, "Salt", "10", kg.ID)
	formula := e.createFormula(t, "Brine", FormulaItemRequest{RawMaterialID: salt.ID, Quantity: dec("2"), UnitID: scoop.ID})
	expectKind(t, e.units.DeleteUnit(e.ctx, scoop.ID), ErrInvariantViolation, "UnitHasProductFormulation")

	// once the formula is gone the unit is free
	if err := e.formulas.DeleteFormula(e.ctx, formula.ID); err != nil {
		t.Fatalf("DeleteFormula: %v", err)
	}
	if err := e.units.DeleteUnit(e.ctx, scoop.ID); err != nil {
		t.Fatalf("DeleteUnit after formula removal: %v", err)
	}
	_, err := e.units.GetUnit(e.ctx, scoop.ID)
	expectKind(t, err, ErrNotFound, "EntityNotFound")
}

func TestListUnits_SearchAndPaging(t *testing.T) {
	e := newEnv(t)
	kg := e.global(t, "kg")
	e.createUnit(t, "Sack", "sack", "25", kg.ID)
	e.createUnit(t, "Snack Box", "snb", "0.2", kg.ID)

	page, err := e.units.ListUnits(e.ctx, "s", repository.Page{Take: 1})
	if err != nil {
		t.Fatalf("ListUnits: %v", err)
	}
	// own Sack and Snack Box plus global Second, Square Meter and Piece (pcs)
	if page.Total != 5 {
		t.Fatalf("expected 5 matches, got %d", page.Total)
	}
	if len(page.Items) != 1 || page.Take != 1 {
		t.Fatalf("expected one item per page, got %d (take %d)", len(page.Items), page.Take)
	}

	page, err = e.units.ListUnits(e.ctx, "SACK", repository.Page{})
	if err != nil {
		t.Fatalf("ListUnits: %v", err)
	}
	if page.Total != 1 || page.Items[0].ShortCode != "sack" {
		t.Fatalf("expected only sack, got %+v", page.Items)
	}
}
