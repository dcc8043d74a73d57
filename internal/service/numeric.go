package service

import "github.com/shopspring/decimal"

const (
	// ConversionPlaces is the precision of every unit conversion factor.
	ConversionPlaces int32 = 3
	// QuantityPlaces is the precision stock quantities are kept at.
	QuantityPlaces int32 = 3
)

// PriceTolerance is the largest accepted gap between a submitted line total and price*quantity.
var PriceTolerance = decimal.RequireFromString("0.01")

// Rounding is half away from zero (decimal.Round), never banker's rounding.

func roundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityPlaces)
}

// conversionFactor is f with qty_in_target = qty_in_source * f.
func conversionFactor(sourceRateToRoot, targetRateToRoot decimal.Decimal) decimal.Decimal {
	return sourceRateToRoot.Div(targetRateToRoot).Round(ConversionPlaces)
}

// scaleQuantity re-expresses qty from a unit with fromRateToRoot in a unit with toRateToRoot.
// The ratio is applied unrounded and the result is rounded once.
func scaleQuantity(qty, fromRateToRoot, toRateToRoot decimal.Decimal) decimal.Decimal {
	return qty.Mul(fromRateToRoot).DivRound(toRateToRoot, QuantityPlaces)
}

func withinTolerance(got, expected decimal.Decimal) bool {
	return got.Sub(expected).Abs().LessThanOrEqual(PriceTolerance)
}
