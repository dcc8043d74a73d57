package service

import (
	"testing"

	"go-inventory-bom/internal/model"
	"go-inventory-bom/internal/repository"

	"github.com/google/uuid"
)

func TestCreateFormula_Validation(t *testing.T) {
	e := newEnv(t)
	kg := e.global(t, "kg")
	rm := e.createRawMaterial(t, "Flour", "10", kg.ID)

	cases := []struct {
		name string
		req  CreateFormulaRequest
		key  string
	}{
		{"no items", CreateFormulaRequest{Name: "Bread"}, "FormulaItemsRequired"},
		{"empty name", CreateFormulaRequest{Items: []FormulaItemRequest{{RawMaterialID: rm.ID, Quantity: dec("1"), UnitID: kg.ID}}}, "ValidationFailed"},
		{"zero quantity", CreateFormulaRequest{Name: "Bread", Items: []FormulaItemRequest{{RawMaterialID: rm.ID, Quantity: dec("0"), UnitID: kg.ID}}}, "QuantityMustBePositive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.formulas.CreateFormula(e.ctx, &tc.req)
			expectKind(t, err, ErrValidation, tc.key)
		})
	}
}

func TestCreateFormula_ItemChecks(t *testing.T) {
	e := newEnv(t)
	kg := e.global(t, "kg")
	rm := e.createRawMaterial(t, "Flour", "10", kg.ID)

	_, err := e.formulas.CreateFormula(e.ctx, &CreateFormulaRequest{
		Name:  "Bread",
		Items: []FormulaItemRequest{{RawMaterialID: rm.ID, Quantity: dec("1"), UnitID: e.global(t, "ml").ID}},
	})
	expectKind(t, err, ErrUnitTypeMismatch, "UnitTypeMismatch")

	_, err = e.formulas.CreateFormula(e.ctx, &CreateFormulaRequest{
		Name:  "Bread",
		Items: []FormulaItemRequest{{RawMaterialID: uuid.New(), Quantity: dec("1"), UnitID: kg.ID}},
	})
	expectKind(t, err, ErrNotFound, "EntityNotFound")

	_, err = e.formulas.CreateFormula(e.ctx, &CreateFormulaRequest{
		Name:  "Bread",
		Items: []FormulaItemRequest{{RawMaterialID: rm.ID, Quantity: dec("1"), UnitID: uuid.New()}},
	})
	expectKind(t, err, ErrNotFound, "EntityNotFound")

	// nothing was written by the failed attempts
	page, err := e.formulas.ListFormulas(e.ctx, "", repository.Page{})
	if err != nil {
		t.Fatalf("ListFormulas: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("expected no formulas, got %d", page.Total)
	}
}

func TestCreateFormula_NameConflict(t *testing.T) {
	e := newEnv(t)
	kg := e.global(t, "kg")
	rm := e.createRawMaterial(t, "Flour", "10", kg.ID)
	e.createFormula(t, "Bread", FormulaItemRequest{RawMaterialID: rm.ID, Quantity: dec("1"), UnitID: kg.ID})

	_, err := e.formulas.CreateFormula(e.ctx, &CreateFormulaRequest{
		Name:  "bread",
		Items: []FormulaItemRequest{{RawMaterialID: rm.ID, Quantity: dec("2"), UnitID: kg.ID}},
	})
	expectKind(t, err, ErrConflict, "NameAlreadyExists")
}

func TestCreateFormula_ItemsInOrder(t *testing.T) {
	e := newEnv(t)
	kg, g := e.global(t, "kg"), e.global(t, "g")
	flour := e.createRawMaterial(t, "Flour", "10", kg.ID)
	salt := e.createRawMaterial(t, "Salt", "10", kg.ID)

	formula := e.createFormula(t, "Bread",
		FormulaItemRequest{RawMaterialID: flour.ID, Quantity: dec("0.5"), UnitID: kg.ID},
		FormulaItemRequest{RawMaterialID: salt.ID, Quantity: dec("10"), UnitID: g.ID},
	)
	if len(formula.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(formula.Items))
	}
	if formula.Items[0].RawMaterialID != flour.ID || formula.Items[1].RawMaterialID != salt.ID {
		t.Fatal("items must come back in submitted order")
	}
	if formula.Items[1].Unit == nil || formula.Items[1].Unit.ShortCode != "g" {
		t.Fatal("expected the item unit to be preloaded")
	}
}

func TestUpdateFormula_ReconcilesItems(t *testing.T) {
	e := newEnv(t)
	kg, g := e.global(t, "kg"), e.global(t, "g")
	flour := e.createRawMaterial(t, "Flour", "10", kg.ID)
	salt := e.createRawMaterial(t, "Salt", "10", kg.ID)
	yeast := e.createRawMaterial(t, "Yeast", "10", kg.ID)

	formula := e.createFormula(t, "Bread",
		FormulaItemRequest{RawMaterialID: flour.ID, Quantity: dec("0.5"), UnitID: kg.ID},
		FormulaItemRequest{RawMaterialID: salt.ID, Quantity: dec("10"), UnitID: g.ID},
	)
	keptID := formula.Items[0].ID
	droppedID := formula.Items[1].ID

	updated, err := e.formulas.UpdateFormula(e.ctx, formula.ID, &UpdateFormulaRequest{
		Name: "Bread v2",
		Items: []FormulaItemRequest{
			{ID: &keptID, RawMaterialID: flour.ID, Quantity: dec("600"), UnitID: g.ID},
			{RawMaterialID: yeast.ID, Quantity: dec("7"), UnitID: g.ID},
		},
	})
	if err != nil {
		t.Fatalf("UpdateFormula: %v", err)
	}
	if updated.Name != "Bread v2" {
		t.Fatalf("expected renamed formula, got %s", updated.Name)
	}
	if len(updated.Items) != 2 {
		t.Fatalf("expected 2 live items, got %d", len(updated.Items))
	}
	if updated.Items[0].ID != keptID {
		t.Fatalf("expected item %s updated in place, got %s", keptID, updated.Items[0].ID)
	}
	expectDecimal(t, "kept quantity", updated.Items[0].Quantity, "600")
	if updated.Items[0].UnitID != g.ID {
		t.Fatal("expected the kept item to switch to grams")
	}
	if updated.Items[1].RawMaterialID != yeast.ID {
		t.Fatal("expected the new yeast item")
	}
	for _, item := range updated.Items {
		if item.ID == droppedID {
			t.Fatal("the salt item should have been removed")
		}
	}

	var dropped model.ProductFormulaItem
	if err := e.db.Unscoped().First(&dropped, "id = ?", droppedID).Error; err != nil {
		t.Fatalf("load dropped item: %v", err)
	}
	if !dropped.IsDeleted() || dropped.DeletedBy != "tester" {
		t.Fatalf("expected dropped item soft deleted by tester, got deleted=%v by=%q", dropped.IsDeleted(), dropped.DeletedBy)
	}
}

func TestUpdateFormula_ForeignItemID(t *testing.T) {
	e := newEnv(t)
	kg := e.global(t, "kg")
	flour := e.createRawMaterial(t, "Flour", "10", kg.ID)
	formula := e.createFormula(t, "Bread", FormulaItemRequest{RawMaterialID: flour.ID, Quantity: dec("1"), UnitID: kg.ID})

	foreign := uuid.New()
	_, err := e.formulas.UpdateFormula(e.ctx, formula.ID, &UpdateFormulaRequest{
		Name:  "Bread",
		Items: []FormulaItemRequest{{ID: &foreign, RawMaterialID: flour.ID, Quantity: dec("2"), UnitID: kg.ID}},
	})
	expectKind(t, err, ErrNotFound, "EntityNotFound")

	stored, err := e.formulas.GetFormula(e.ctx, formula.ID)
	if err != nil {
		t.Fatalf("GetFormula: %v", err)
	}
	expectDecimal(t, "quantity after rollback", stored.Items[0].Quantity, "1")
}

func TestDeleteFormula_GuardAndCascade(t *testing.T) {
	e := newEnv(t)
	kg := e.global(t, "kg")
	flour := e.createRawMaterial(t, "Flour", "10", kg.ID)
	formula := e.createFormula(t, "Bread", FormulaItemRequest{RawMaterialID: flour.ID, Quantity: dec("1"), UnitID: kg.ID})
	product := e.createProduct(t, "BREAD-1", "3", &formula.ID)

	expectKind(t, e.formulas.DeleteFormula(e.ctx, formula.ID), ErrInvariantViolation, "ProductFormulaUsedByProduct")

	if err := e.products.DeleteProduct(e.ctx, product.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if err := e.formulas.DeleteFormula(e.ctx, formula.ID); err != nil {
		t.Fatalf("DeleteFormula: %v", err)
	}

	_, err := e.formulas.GetFormula(e.ctx, formula.ID)
	expectKind(t, err, ErrNotFound, "EntityNotFound")

	var live int64
	if err := e.db.Model(&model.ProductFormulaItem{}).Where("product_formula_id = ?", formula.ID).Count(&live).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if live != 0 {
		t.Fatalf("expected items cascaded, %d still live", live)
	}
}
