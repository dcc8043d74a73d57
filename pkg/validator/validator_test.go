package validator

import (
	"testing"

	"go-inventory-bom/pkg/i18n"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type sample struct {
	Name   string          `validate:"required"`
	Rate   decimal.Decimal `validate:"decimal_gt0"`
	Price  decimal.Decimal `validate:"decimal_gte0"`
	UnitID uuid.UUID       `validate:"uuid_required"`
}

func TestValidateStruct_CustomRules(t *testing.T) {
	valid := sample{Name: "kg", Rate: decimal.NewFromInt(1), Price: decimal.Zero, UnitID: uuid.New()}
	if errs := ValidateStruct(valid); len(errs) != 0 {
		t.Fatalf("expected no errors, got %d (%s)", len(errs), errs[0].FailedField)
	}

	cases := []struct {
		name  string
		input sample
		field string
		tag   string
	}{
		{"zero rate", sample{Name: "kg", Rate: decimal.Zero, UnitID: uuid.New()}, "sample.Rate", "decimal_gt0"},
		{"negative price", sample{Name: "kg", Rate: decimal.NewFromInt(1), Price: decimal.NewFromInt(-1), UnitID: uuid.New()}, "sample.Price", "decimal_gte0"},
		{"nil uuid", sample{Name: "kg", Rate: decimal.NewFromInt(1)}, "sample.UnitID", "uuid_required"},
		{"missing name", sample{Rate: decimal.NewFromInt(1), UnitID: uuid.New()}, "sample.Name", "required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateStruct(tc.input)
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d", len(errs))
			}
			if errs[0].FailedField != tc.field || errs[0].Tag != tc.tag {
				t.Fatalf("expected %s/%s, got %s/%s", tc.field, tc.tag, errs[0].FailedField, errs[0].Tag)
			}
		})
	}
}

func TestUseTranslator_RendersMessages(t *testing.T) {
	_, trans := i18n.NewEnglish()
	if err := UseTranslator(trans); err != nil {
		t.Fatalf("UseTranslator: %v", err)
	}

	errs := ValidateStruct(sample{Name: "kg", Rate: decimal.NewFromInt(-3), UnitID: uuid.New()})
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Message != "Rate must be greater than zero" {
		t.Fatalf("unexpected message %q", errs[0].Message)
	}
}
