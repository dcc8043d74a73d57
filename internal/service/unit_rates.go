package service

import (
	"context"
	"fmt"

	"go-inventory-bom/internal/model"
	"go-inventory-bom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RebuildUnitRates recomputes RateToRoot of every unit, global and tenant owned, from its
// parent chain and returns how many rows changed. A unit that no root reaches aborts the
// rebuild and nothing is written: UnitGraphCycle when its chain loops, UnitParentMissing when
// the chain ends at a deleted or absent parent.
func RebuildUnitRates(ctx context.Context, db *gorm.DB, unitRepo repository.UnitRepository) (int, error) {
	changed := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		repo := unitRepo.WithTx(tx)
		units, err := repo.FindAll(ctx)
		if err != nil {
			return fmt.Errorf("load units: %w", err)
		}

		byID := make(map[uuid.UUID]*model.Unit, len(units))
		children := map[uuid.UUID][]*model.Unit{}
		var roots []*model.Unit
		for i := range units {
			u := &units[i]
			byID[u.ID] = u
		}
		for _, u := range byID {
			if u.IsRoot() {
				roots = append(roots, u)
				continue
			}
			children[*u.ParentUnitID] = append(children[*u.ParentUnitID], u)
		}

		reached := map[uuid.UUID]bool{}
		var visit func(u *model.Unit, rate decimal.Decimal) error
		visit = func(u *model.Unit, rate decimal.Decimal) error {
			reached[u.ID] = true
			if !u.RateToRoot.Equal(rate) {
				if err := repo.UpdateRateToRoot(ctx, u.ID, rate, "system"); err != nil {
					return fmt.Errorf("update unit %s: %w", u.ShortCode, err)
				}
				changed++
			}
			for _, child := range children[u.ID] {
				if err := visit(child, child.ConversionRate.Mul(rate)); err != nil {
					return err
				}
			}
			return nil
		}
		for _, root := range roots {
			if err := visit(root, decimal.NewFromInt(1)); err != nil {
				return err
			}
		}

		for id, u := range byID {
			if !reached[id] {
				return unreachable(u, byID)
			}
		}
		return nil
	})
	return changed, err
}

// unreachable explains why u hangs off no root.
func unreachable(u *model.Unit, byID map[uuid.UUID]*model.Unit) error {
	seen := map[uuid.UUID]bool{}
	for current := u; ; {
		if seen[current.ID] {
			return invariant("UnitGraphCycle", current.ShortCode)
		}
		seen[current.ID] = true
		parent, ok := byID[*current.ParentUnitID]
		if !ok {
			return invariant("UnitParentMissing", current.ShortCode)
		}
		current = parent
	}
}
