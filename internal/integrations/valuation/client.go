package valuation

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound means the provider has no valuation for the plate. Callers
// treat this as "not yet valued", never as a hard failure.
var ErrNotFound = errors.New("vehicle not found or valuation not available")

type Result struct {
	RetailValuation decimal.Decimal
	Make            string
	Model           string
}

type Client interface {
	GetValuation(ctx context.Context, reg string) (Result, error)
}
