package pricing

import "github.com/shopspring/decimal"

// Carwow charges a flat marketplace fee per sale, stepped by valuation.
// Brackets are evaluated in ascending order and a boundary value belongs to
// the lower bracket (exactly 2499 pays 199). Valuations above the last bound
// pay the flat top fee, so the function is total over non-negative inputs.
var feeBrackets = []struct {
	upTo int64
	fee  int64
}{
	{2499, 199},
	{4999, 249},
	{7499, 269},
	{9999, 299},
	{14999, 319},
	{19999, 339},
	{29999, 389},
	{39999, 449},
	{49999, 499},
	{59999, 599},
	{69999, 699},
	{79999, 799},
	{89999, 899},
	{99999, 929},
}

const topFee = 999

// CarwowFee returns the marketplace fee for a sale at the given valuation.
func CarwowFee(valuation decimal.Decimal) decimal.Decimal {
	for _, b := range feeBrackets {
		if valuation.LessThanOrEqual(decimal.NewFromInt(b.upTo)) {
			return decimal.NewFromInt(b.fee)
		}
	}
	return decimal.NewFromInt(topFee)
}
