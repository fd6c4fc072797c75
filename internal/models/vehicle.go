package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Workflow statuses of a vehicle in the bid funnel.
const (
	StatusUnclassified = "unclassified"
	StatusQualified    = "qualified"
	StatusHidden       = "hidden"
	StatusBid          = "bid"
	StatusNoBid        = "noBid"
	StatusWon          = "won"
	StatusLost         = "lost"
)

// VehicleRecord is one auction listing from a carwow export, enriched by the
// fill-in merge and (optionally) by the background valuation lookup.
// ID is the uppercase-normalized VRM, unique within a batch.
type VehicleRecord struct {
	BatchID uuid.UUID `json:"batchId"`
	ID      string    `json:"id"`

	SalesType            string `json:"salesType"`
	ListingID            string `json:"listingId"`
	ListingURL           string `json:"listingUrl"`
	DateApprovedByCarwow string `json:"dateApprovedByCarwow"`
	Make                 string `json:"make"`
	Model                string `json:"model"`
	Mileage              int    `json:"mileage"`
	CarAgeYears          int    `json:"carAgeYears"`
	FirstRegistered      string `json:"firstRegistered"`
	CarYear              int    `json:"carYear"`
	PreviousOwnersCount  int    `json:"previousOwnersCount"`
	ConditionGrade       int    `json:"conditionGrade"`
	ServiceHistory       string `json:"serviceHistory"`
	Engine               string `json:"engine"`
	FuelType             string `json:"fuelType"`
	Bodycolour           string `json:"bodycolour"`
	Transmission         string `json:"transmission"`
	SellerNotes          string `json:"sellerNotes"`
	ListingRegion        string `json:"listingRegion"`
	ListingCity          string `json:"listingCity"`
	VehicleType          string `json:"vehicleType"`
	VATApplicable        string `json:"vatApplicable"`
	Imported             string `json:"imported"`

	CapClean             decimal.Decimal `json:"capClean"`
	ReserveOrBuyNowPrice decimal.Decimal `json:"reserveOrBuyNowPrice"`

	// Supplied by the fill-in import, manual entry or the valuation worker.
	// Nil means "not yet valued", which is different from valued at zero.
	Spec                   string           `json:"spec"`
	Notes                  string           `json:"notes"`
	RetailValuation        *decimal.Decimal `json:"retailValuation,omitempty"`
	AutoTraderRetailRating *int             `json:"autoTraderRetailRating,omitempty"`
	DaysToSell             *int             `json:"daysToSell,omitempty"`

	Status   string           `json:"status"`
	WonPrice *decimal.Decimal `json:"wonPrice,omitempty"`

	// Valuation lookup bookkeeping (worker-owned).
	ValuationCheckedAt *time.Time `json:"valuationCheckedAt,omitempty"`
	ValuationFailCount int32      `json:"-"`
	NextValuationAt    time.Time  `json:"-"`
	LastValuationError *string    `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no pointers with the receiver.
func (v *VehicleRecord) Clone() *VehicleRecord {
	c := *v
	if v.RetailValuation != nil {
		d := *v.RetailValuation
		c.RetailValuation = &d
	}
	if v.AutoTraderRetailRating != nil {
		n := *v.AutoTraderRetailRating
		c.AutoTraderRetailRating = &n
	}
	if v.DaysToSell != nil {
		n := *v.DaysToSell
		c.DaysToSell = &n
	}
	if v.WonPrice != nil {
		d := *v.WonPrice
		c.WonPrice = &d
	}
	if v.ValuationCheckedAt != nil {
		t := *v.ValuationCheckedAt
		c.ValuationCheckedAt = &t
	}
	if v.LastValuationError != nil {
		s := *v.LastValuationError
		c.LastValuationError = &s
	}
	return &c
}

// VehicleUpdate is one accepted row of the fill-in ("final") export.
// Optional fields are nil when the source cell was blank.
type VehicleUpdate struct {
	ID                     string
	Mileage                int
	Spec                   string
	Notes                  string
	RetailValuation        *decimal.Decimal
	AutoTraderRetailRating *int
	DaysToSell             *int
}

// ImportBatch groups the vehicles of one primary CSV upload.
type ImportBatch struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
