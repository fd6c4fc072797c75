package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCarwowFeeBoundaries(t *testing.T) {
	require.True(t, CarwowFee(decimal.NewFromInt(0)).Equal(decimal.NewFromInt(199)))
	require.True(t, CarwowFee(decimal.NewFromInt(2499)).Equal(decimal.NewFromInt(199)))
	require.True(t, CarwowFee(decimal.NewFromInt(2500)).Equal(decimal.NewFromInt(249)))
	require.True(t, CarwowFee(decimal.NewFromInt(19999)).Equal(decimal.NewFromInt(339)))
	require.True(t, CarwowFee(decimal.NewFromInt(20000)).Equal(decimal.NewFromInt(389)))
	require.True(t, CarwowFee(decimal.NewFromInt(99999)).Equal(decimal.NewFromInt(929)))
	require.True(t, CarwowFee(decimal.NewFromInt(100000)).Equal(decimal.NewFromInt(999)))
	require.True(t, CarwowFee(decimal.NewFromInt(1_000_000)).Equal(decimal.NewFromInt(999)))
}

func TestCarwowFeeMonotonic(t *testing.T) {
	prev := decimal.Zero
	for v := int64(0); v <= 110_000; v += 500 {
		fee := CarwowFee(decimal.NewFromInt(v))
		require.True(t, fee.GreaterThanOrEqual(prev), "fee dropped at valuation %d", v)
		prev = fee
	}
}

func TestComputeBidPriceScenario(t *testing.T) {
	costs := CostInputs{
		Delivery:         decimal.NewFromInt(200),
		MOT:              decimal.NewFromInt(50),
		Service:          decimal.NewFromInt(100),
		Cosmetic:         decimal.Zero,
		WarrantyAndValet: decimal.NewFromInt(150),
		DesiredNetProfit: decimal.NewFromInt(1000),
	}
	res := ComputeBidPrice(decimal.NewFromInt(20000), costs)

	require.True(t, res.CarwowFee.Equal(decimal.NewFromInt(389)))
	require.True(t, res.TotalCosts.Equal(decimal.NewFromInt(889)))
	// 20000 - 1.2*(1000+889)
	require.True(t, res.BidPrice.Equal(decimal.RequireFromString("17733.2")), res.BidPrice.String())
	require.True(t, res.ActualGrossProfit.Equal(decimal.RequireFromString("2266.8")))
	require.True(t, res.VATAmount.Equal(decimal.RequireFromString("377.8")))
	require.True(t, res.ActualNetProfit.Equal(decimal.NewFromInt(1000)))
}

func TestComputeBidPriceNetEqualsDesired(t *testing.T) {
	tolerance := decimal.RequireFromString("0.01")
	valuations := []string{"0", "1234.56", "9999", "20000", "55500.55", "250000"}
	desireds := []string{"0", "500", "1000.99", "7777"}

	for _, v := range valuations {
		for _, d := range desireds {
			costs := CostInputs{
				Delivery:         decimal.NewFromInt(120),
				MOT:              decimal.NewFromInt(55),
				Service:          decimal.RequireFromString("89.99"),
				Cosmetic:         decimal.NewFromInt(250),
				WarrantyAndValet: decimal.NewFromInt(99),
				DesiredNetProfit: decimal.RequireFromString(d),
			}
			res := ComputeBidPrice(decimal.RequireFromString(v), costs)
			diff := res.ActualNetProfit.Sub(costs.DesiredNetProfit).Abs()
			require.True(t, diff.LessThan(tolerance),
				"valuation=%s desired=%s diff=%s", v, d, diff)
		}
	}
}

func TestComputeBidPriceNegativeBid(t *testing.T) {
	res := ComputeBidPrice(decimal.NewFromInt(1000), CostInputs{
		DesiredNetProfit: decimal.NewFromInt(5000),
	})
	require.True(t, res.BidPrice.IsNegative())
	// still solves the identity even below zero
	require.True(t, res.ActualNetProfit.Equal(decimal.NewFromInt(5000)))
}

func TestRounded(t *testing.T) {
	res := ComputeBidPrice(decimal.RequireFromString("12345.678"), CostInputs{
		DesiredNetProfit: decimal.RequireFromString("1000.005"),
	})
	r := res.Rounded()
	require.True(t, r.BidPrice.Exponent() >= -2)
	require.True(t, r.VATAmount.Exponent() >= -2)
}

func TestMaxBid(t *testing.T) {
	// 16500 - 1.2*1000 - fee(16500)=339
	got := MaxBid(decimal.NewFromInt(16500), CostInputs{
		DesiredNetProfit: decimal.NewFromInt(1000),
	})
	require.True(t, got.Equal(decimal.NewFromInt(14961)), got.String())

	// operating costs count too
	got = MaxBid(decimal.NewFromInt(16500), CostInputs{
		Delivery:         decimal.NewFromInt(100),
		DesiredNetProfit: decimal.NewFromInt(1000),
	})
	require.True(t, got.Equal(decimal.NewFromInt(14861)))
}

func TestMaxBidFloorsAtZero(t *testing.T) {
	got := MaxBid(decimal.NewFromInt(500), CostInputs{
		DesiredNetProfit: decimal.NewFromInt(10000),
	})
	require.True(t, got.IsZero())

	got = MaxBid(decimal.Zero, CostInputs{})
	require.True(t, got.IsZero())
}
