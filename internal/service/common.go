package service

import (
	"errors"
	"strings"

	"go-inventory-bom/internal/repository"
	"go-inventory-bom/pkg/validator"

	"gorm.io/gorm"
)

// PageResult is one page of a list plus the unpaged total.
type PageResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Skip  int   `json:"skip"`
	Take  int   `json:"take"`
}

func newPage[T any](items []T, total int64, page repository.Page) *PageResult[T] {
	page = page.Normalize()
	if items == nil {
		items = []T{}
	}
	return &PageResult[T]{Items: items, Total: total, Skip: page.Skip, Take: page.Take}
}

// fieldKeys gives some fields a dedicated message instead of the generic ValidationFailed.
var fieldKeys = map[string]string{
	"ConversionRate": "ConversionRateMustBePositive",
	"Quantity":       "QuantityMustBePositive",
	"ParentUnitID":   "ParentUnitRequired",
}

var sliceKeys = map[string]string{
	"CreateFormulaRequest.Items": "FormulaItemsRequired",
	"UpdateFormulaRequest.Items": "FormulaItemsRequired",
	"PlaceOrderRequest.Items":    "OrderItemsRequired",
}

// validate reports the first failed rule as a ValidationError.
func validate(req interface{}) error {
	errs := validator.ValidateStruct(req)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	if key, ok := sliceKeys[first.FailedField]; ok {
		return validationFailed(key)
	}
	field := first.FailedField
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	if key, ok := fieldKeys[field]; ok {
		return validationFailed(key)
	}
	return validationFailed("ValidationFailed", first.FailedField, first.Tag)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
