// Package pricing computes the recommended maximum bid for a vehicle by
// inverting a VAT-aware margin formula. Every function here is pure
// arithmetic: no validation, no state, no errors.
package pricing

import "github.com/shopspring/decimal"

var (
	six  = decimal.NewFromInt(6)
	five = decimal.NewFromInt(5)
)

// CostInputs are the operating costs of turning an auction win into a retail
// sale, plus the net profit the trader wants out of the deal.
type CostInputs struct {
	Delivery         decimal.Decimal `json:"delivery"`
	MOT              decimal.Decimal `json:"mot"`
	Service          decimal.Decimal `json:"service"`
	Cosmetic         decimal.Decimal `json:"cosmetic"`
	WarrantyAndValet decimal.Decimal `json:"warrantyAndValet"`
	DesiredNetProfit decimal.Decimal `json:"desiredNetProfit"`
}

func (c CostInputs) operating() decimal.Decimal {
	return c.Delivery.Add(c.MOT).Add(c.Service).Add(c.Cosmetic).Add(c.WarrantyAndValet)
}

// PricingResult is derived, never stored. Fields keep full precision;
// call Rounded before showing them to a user.
type PricingResult struct {
	RetailValuation   decimal.Decimal `json:"retailValuation"`
	CarwowFee         decimal.Decimal `json:"carwowFee"`
	TotalCosts        decimal.Decimal `json:"totalCosts"`
	BidPrice          decimal.Decimal `json:"bidPrice"`
	ActualGrossProfit decimal.Decimal `json:"actualGrossProfit"`
	VATAmount         decimal.Decimal `json:"vatAmount"`
	ActualNetProfit   decimal.Decimal `json:"actualNetProfit"`
}

// Rounded returns a copy with every amount rounded to 2 decimal places.
func (r PricingResult) Rounded() PricingResult {
	return PricingResult{
		RetailValuation:   r.RetailValuation.Round(2),
		CarwowFee:         r.CarwowFee.Round(2),
		TotalCosts:        r.TotalCosts.Round(2),
		BidPrice:          r.BidPrice.Round(2),
		ActualGrossProfit: r.ActualGrossProfit.Round(2),
		VATAmount:         r.VATAmount.Round(2),
		ActualNetProfit:   r.ActualNetProfit.Round(2),
	}
}

// ComputeBidPrice solves for the bid that yields exactly the desired net
// profit after VAT and costs. Gross profit (valuation − bid) is treated as
// VAT-inclusive at the UK 20% rate, i.e. VAT is one sixth of gross:
//
//	net = gross − gross/6 − totalCosts
//	bid = valuation − (6/5)·(desiredNetProfit + totalCosts)
//
// The result then recomputes the actual figures from the bid, so
// ActualNetProfit equals DesiredNetProfit by algebra, not by fiat. A negative
// bid is a legitimate answer meaning the deal cannot pay the desired margin;
// clamping is the caller's policy, not ours.
func ComputeBidPrice(valuation decimal.Decimal, costs CostInputs) PricingResult {
	fee := CarwowFee(valuation)
	totalCosts := fee.Add(costs.operating())

	bid := valuation.Sub(costs.DesiredNetProfit.Add(totalCosts).Mul(six).Div(five))

	gross := valuation.Sub(bid)
	vat := gross.Div(six)
	net := gross.Sub(vat).Sub(totalCosts)

	return PricingResult{
		RetailValuation:   valuation,
		CarwowFee:         fee,
		TotalCosts:        totalCosts,
		BidPrice:          bid,
		ActualGrossProfit: gross,
		VATAmount:         vat,
		ActualNetProfit:   net,
	}
}

// MaxBid is the simplified ceiling used by the browser-extension endpoint:
// it grosses the desired profit up by 20% instead of doing the full 6/5
// inversion, and floors the answer at zero. It intentionally disagrees with
// ComputeBidPrice; the two formulas are kept separate on purpose.
func MaxBid(valuation decimal.Decimal, costs CostInputs) decimal.Decimal {
	fee := CarwowFee(valuation)
	totalCosts := fee.Add(costs.operating())
	requiredGross := costs.DesiredNetProfit.Mul(six).Div(five)

	maxBid := valuation.Sub(requiredGross).Sub(totalCosts)
	if maxBid.IsNegative() {
		return decimal.Zero
	}
	return maxBid
}
