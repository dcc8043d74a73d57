// Package i18n renders error keys into human readable messages.
package i18n

import (
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
)

// Localizer turns a message key plus positional args into text.
type Localizer interface {
	Localize(key string, args ...string) string
}

var messagesEN = map[string]string{
	"EntityNotFound":               "{0} not found",
	"NameAlreadyExists":            "name '{0}' already exists",
	"ShortCodeAlreadyExists":       "short code '{0}' already exists",
	"BarcodeAlreadyExists":         "barcode '{0}' already exists",
	"SkuAlreadyExists":             "SKU '{0}' already exists",
	"UnitTypeMismatch":             "unit type {0} cannot be converted to {1}",
	"UnitTypeLocked":               "unit type cannot change while the unit is in use",
	"UnitHasChildUnit":             "unit is the parent of another unit",
	"UnitHasProductRawMaterial":    "unit is used by a raw material",
	"UnitHasProductFormulation":    "unit is used by a product formula",
	"ProductFormulaUsedByProduct":  "formula is used by a product",
	"RawMaterialUsedByFormula":     "raw material is used by a product formula",
	"GlobalUnitReadOnly":           "global units are read-only",
	"UnitParentCycle":              "a unit cannot be placed below itself or one of its descendants",
	"UnitGraphCycle":               "unit hierarchy contains a cycle at {0}",
	"UnitParentMissing":            "parent of unit {0} is missing or deleted",
	"ValidationFailed":             "field '{0}' failed on '{1}'",
	"ConversionRateMustBePositive": "conversion rate must be greater than zero",
	"QuantityMustBePositive":       "quantity must be greater than zero",
	"ParentUnitRequired":           "parent unit is required",
	"FormulaItemsRequired":         "formula needs at least one item",
	"OrderItemsRequired":           "order needs at least one item",
	"InvalidPaymentMethod":         "payment method '{0}' is not supported",
	"ConversionFactorUnderflow":    "conversion factor between {0} and {1} rounds to zero",
	"OrderItemPriceMismatch":       "price of product {0} should be {1}, got {2}",
	"InsufficientPayment":          "payments {1} do not cover total {0}",
	"InsufficientRawMaterialStock": "not enough stock of '{0}'",
	"NotBelongToTenant":            "request does not belong to a company",
	"UnsafeOrderNotAllowed":        "unchecked orders require the order:unsafe privilege",
	"DuplicateOrderRequest":        "order with this idempotency key was already submitted",
	"OrderInProgress":              "another order for this company is being placed, retry shortly",
}

type translator struct {
	trans ut.Translator
}

// NewEnglish builds the default localizer and returns the underlying translator so the
// validator can register its own messages on it.
func NewEnglish() (Localizer, ut.Translator) {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	for key, text := range messagesEN {
		_ = trans.Add(key, text, true)
	}
	return &translator{trans: trans}, trans
}

// Localize falls back to the key itself, followed by the args, for unknown keys.
func (t *translator) Localize(key string, args ...string) string {
	msg, err := t.trans.T(key, args...)
	if err != nil {
		if len(args) == 0 {
			return key
		}
		return key + ": " + strings.Join(args, ", ")
	}
	return msg
}
