// Package funnel owns the bid-lifecycle state machine and the qualification
// thresholds that sort freshly imported vehicles into it.
package funnel

import (
	"github.com/BearBump/BidBox/internal/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ServiceHistoryOptions is the fixed vocabulary of the SERVICE_HISTORY column.
var ServiceHistoryOptions = []string{
	"full_mixed",
	"full_main_dealer",
	"part",
	"none",
	"full_independent",
	"not_due",
}

// Thresholds are the user-configured qualification bounds.
type Thresholds struct {
	MaxPrice          decimal.Decimal `json:"maxPrice"`
	MaxAge            int             `json:"maxAge"`
	MaxMileage        int             `json:"maxMileage"`
	MinRetailRating   int             `json:"minRetailRating"`
	MaxDaysToSell     int             `json:"maxDaysToSell"`
	MaxPreviousOwners int             `json:"maxPreviousOwners"`
	ServiceHistory    []string        `json:"serviceHistory"`
}

// Qualifies reports whether a vehicle clears every threshold. Absent optional
// fields count as zero here, which makes a missing retail rating disqualifying
// whenever MinRetailRating > 0.
func Qualifies(v *models.VehicleRecord, t Thresholds, currentYear int) bool {
	age := 0
	if v.CarYear != 0 {
		age = currentYear - v.CarYear
	}
	rating := 0
	if v.AutoTraderRetailRating != nil {
		rating = *v.AutoTraderRetailRating
	}
	days := 0
	if v.DaysToSell != nil {
		days = *v.DaysToSell
	}

	return v.ReserveOrBuyNowPrice.LessThanOrEqual(t.MaxPrice) &&
		age <= t.MaxAge &&
		v.Mileage <= t.MaxMileage &&
		rating >= t.MinRetailRating &&
		days <= t.MaxDaysToSell &&
		v.PreviousOwnersCount <= t.MaxPreviousOwners &&
		containsString(t.ServiceHistory, v.ServiceHistory)
}

// Classify maps a vehicle to qualified or hidden against the thresholds.
func Classify(v *models.VehicleRecord, t Thresholds, currentYear int) string {
	if Qualifies(v, t, currentYear) {
		return models.StatusQualified
	}
	return models.StatusHidden
}

// Allowed transitions. unclassified leaves only via classification; hidden can
// be re-qualified when thresholds change; the five funnel columns
// (qualified/bid/noBid/won/lost) are freely reachable from each other, which
// is exactly the set of drags the board permits.
var transitions = map[string]map[string]bool{
	models.StatusUnclassified: {
		models.StatusQualified: true,
		models.StatusHidden:    true,
	},
	models.StatusHidden: {
		models.StatusQualified: true,
	},
	models.StatusQualified: {
		models.StatusHidden: true,
		models.StatusBid:    true,
		models.StatusNoBid:  true,
		models.StatusWon:    true,
		models.StatusLost:   true,
	},
	models.StatusBid: {
		models.StatusQualified: true,
		models.StatusNoBid:     true,
		models.StatusWon:       true,
		models.StatusLost:      true,
	},
	models.StatusNoBid: {
		models.StatusQualified: true,
		models.StatusBid:       true,
		models.StatusWon:       true,
		models.StatusLost:      true,
	},
	models.StatusWon: {
		models.StatusQualified: true,
		models.StatusBid:       true,
		models.StatusNoBid:     true,
		models.StatusLost:      true,
	},
	models.StatusLost: {
		models.StatusQualified: true,
		models.StatusBid:       true,
		models.StatusNoBid:     true,
		models.StatusWon:       true,
	},
}

func IsStatus(s string) bool {
	switch s {
	case models.StatusUnclassified, models.StatusQualified, models.StatusHidden,
		models.StatusBid, models.StatusNoBid, models.StatusWon, models.StatusLost:
		return true
	}
	return false
}

func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return transitions[from][to]
}

// Apply moves a vehicle to the target status in place. Total and idempotent:
// any current status is handled, and target == current is a no-op (except that
// re-winning with a price updates the recorded won price). Winning requires a
// price; leaving won clears it.
func Apply(v *models.VehicleRecord, to string, wonPrice *decimal.Decimal) error {
	if !IsStatus(to) {
		return errors.Errorf("unknown status %q", to)
	}
	if v.Status == to {
		if to == models.StatusWon && wonPrice != nil {
			p := *wonPrice
			v.WonPrice = &p
		}
		return nil
	}
	if !CanTransition(v.Status, to) {
		return errors.Errorf("cannot move vehicle %s from %s to %s", v.ID, v.Status, to)
	}
	if to == models.StatusWon && wonPrice == nil {
		return errors.New("won price is required")
	}

	if v.Status == models.StatusWon {
		v.WonPrice = nil
	}
	v.Status = to
	if to == models.StatusWon {
		p := *wonPrice
		v.WonPrice = &p
	}
	return nil
}

func Qualify(v *models.VehicleRecord) error { return Apply(v, models.StatusQualified, nil) }
func Hide(v *models.VehicleRecord) error    { return Apply(v, models.StatusHidden, nil) }
func Bid(v *models.VehicleRecord) error     { return Apply(v, models.StatusBid, nil) }
func NoBid(v *models.VehicleRecord) error   { return Apply(v, models.StatusNoBid, nil) }
func Lose(v *models.VehicleRecord) error    { return Apply(v, models.StatusLost, nil) }

func Win(v *models.VehicleRecord, price decimal.Decimal) error {
	return Apply(v, models.StatusWon, &price)
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
