package fake

import (
	"context"
	"strings"

	"github.com/BearBump/BidBox/internal/integrations/valuation"
	"github.com/shopspring/decimal"
)

// FakeClient is an in-memory valuation provider for local runs and tests.
// It knows a handful of plates; everything else is ErrNotFound.
type FakeClient struct {
	byReg map[string]valuation.Result
}

func New() *FakeClient {
	return &FakeClient{
		byReg: map[string]valuation.Result{
			"WR67VBV": {RetailValuation: decimal.NewFromInt(22500), Make: "Volkswagen", Model: "Golf"},
			"YH22VFD": {RetailValuation: decimal.NewFromInt(25000), Make: "BMW", Model: "3 Series"},
			"AB12CDE": {RetailValuation: decimal.NewFromInt(15000), Make: "Audi", Model: "A4"},
			"KU18FWD": {RetailValuation: decimal.NewFromInt(18000), Make: "Mercedes", Model: "C-Class"},
		},
	}
}

func (f *FakeClient) GetValuation(ctx context.Context, reg string) (valuation.Result, error) {
	res, ok := f.byReg[strings.ToUpper(strings.TrimSpace(reg))]
	if !ok {
		return valuation.Result{}, valuation.ErrNotFound
	}
	return res, nil
}
