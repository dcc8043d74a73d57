package service

import (
	"context"
	"testing"

	"go-inventory-bom/internal/model"
)

func TestRebuildUnitRates_RepairsStaleRates(t *testing.T) {
	e := newEnv(t)
	sack := e.createUnit(t, "Sack", "sack", "25", e.global(t, "kg").ID)
	pallet := e.createUnit(t, "Pallet", "pallet", "40", sack.ID)

	// simulate rows written before descendants were kept in sync
	if err := e.db.Model(&model.Unit{}).Where("id = ?", pallet.ID).Update("rate_to_root", dec("40")).Error; err != nil {
		t.Fatalf("corrupt rate: %v", err)
	}

	changed, err := RebuildUnitRates(context.Background(), e.db, e.unitRepo)
	if err != nil {
		t.Fatalf("RebuildUnitRates: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 repaired unit, got %d", changed)
	}
	unit, err := e.units.GetUnit(e.ctx, pallet.ID)
	if err != nil {
		t.Fatalf("GetUnit: %v", err)
	}
	expectDecimal(t, "repaired rate", unit.RateToRoot, "1000")

	changed, err = RebuildUnitRates(context.Background(), e.db, e.unitRepo)
	if err != nil {
		t.Fatalf("second RebuildUnitRates: %v", err)
	}
	if changed != 0 {
		t.Fatalf("expected a clean second pass, got %d changes", changed)
	}
}

func TestRebuildUnitRates_DetectsCycle(t *testing.T) {
	e := newEnv(t)
	sack := e.createUnit(t, "Sack", "sack", "25", e.global(t, "kg").ID)
	pallet := e.createUnit(t, "Pallet", "pallet", "40", sack.ID)
	if err := e.db.Model(&model.Unit{}).Where("id = ?", sack.ID).Update("parent_unit_id", pallet.ID).Error; err != nil {
		t.Fatalf("corrupt parent: %v", err)
	}

	_, err := RebuildUnitRates(context.Background(), e.db, e.unitRepo)
	expectKind(t, err, ErrInvariantViolation, "UnitGraphCycle")

	// the read path refuses to loop as well
	_, err = e.units.RateToRoot(e.ctx, pallet.ID)
	expectKind(t, err, ErrInvariantViolation, "UnitGraphCycle")
}

func TestRebuildUnitRates_ReportsMissingParent(t *testing.T) {
	e := newEnv(t)
	sack := e.createUnit(t, "Sack", "sack", "25", e.global(t, "kg").ID)
	e.createUnit(t, "Pallet", "pallet", "40", sack.ID)
	// bypass the delete guard to leave pallet without a live parent
	if err := e.db.Delete(&model.Unit{}, "id = ?", sack.ID).Error; err != nil {
		t.Fatalf("delete parent: %v", err)
	}

	_, err := RebuildUnitRates(context.Background(), e.db, e.unitRepo)
	expectKind(t, err, ErrInvariantViolation, "UnitParentMissing")
}
