package messages

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VehicleValuated is published by bid-worker after each valuation lookup and
// consumed by bid-api. A nil RetailValuation with a nil Error means the
// provider knows nothing about the plate — that is a condition, not a failure.
type VehicleValuated struct {
	BatchID uuid.UUID `json:"batch_id"`
	Reg     string    `json:"reg"`

	CheckedAt time.Time `json:"checked_at"`

	RetailValuation *decimal.Decimal `json:"retail_valuation,omitempty"`
	Make            string           `json:"make,omitempty"`
	Model           string           `json:"model,omitempty"`

	NextCheckAt time.Time `json:"next_check_at"`

	Error *string `json:"error,omitempty"`
}
