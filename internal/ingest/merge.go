package ingest

import "github.com/BearBump/BidBox/internal/models"

// Merge overlays secondary updates onto primary records by exact id match.
// Pure: neither input is mutated, and the result preserves primary order.
// A primary record with no matching update passes through unchanged — the
// secondary file is expected to be a subset, so that is not a warning.
//
// Overlay rules: spec and notes always come from the accepted row; mileage
// from the update wins only when non-zero (once supplied it is authoritative);
// the optional valuation fields apply only when present, so an absent cell
// never erases a value the primary (or an earlier merge) already had.
func Merge(primary []*models.VehicleRecord, updates []*models.VehicleUpdate) []*models.VehicleRecord {
	byID := make(map[string]*models.VehicleUpdate, len(updates))
	for _, u := range updates {
		if _, ok := byID[u.ID]; !ok {
			byID[u.ID] = u
		}
	}

	out := make([]*models.VehicleRecord, 0, len(primary))
	for _, p := range primary {
		rec := p.Clone()
		if u, ok := byID[p.ID]; ok {
			if u.Mileage != 0 {
				rec.Mileage = u.Mileage
			}
			rec.Spec = u.Spec
			rec.Notes = u.Notes
			if u.RetailValuation != nil {
				d := *u.RetailValuation
				rec.RetailValuation = &d
			}
			if u.AutoTraderRetailRating != nil {
				n := *u.AutoTraderRetailRating
				rec.AutoTraderRetailRating = &n
			}
			if u.DaysToSell != nil {
				n := *u.DaysToSell
				rec.DaysToSell = &n
			}
		}
		out = append(out, rec)
	}
	return out
}
