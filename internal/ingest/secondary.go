package ingest

import (
	"strconv"
	"strings"

	"github.com/BearBump/BidBox/internal/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Secondary ("final") export columns. Unlike the primary parse, header lookup
// here is case-insensitive and whitespace-trimmed: the file has been through a
// human and a spreadsheet by now.
const (
	colVRM             = "VRM"
	colSpec            = "SPEC"
	colNotes           = "NOTES"
	colRetailValuation = "RETAIL VALUATION"
	colRetailRating    = "AUTO TRADER RETAIL RATING"
	colDaysToSell      = "DAYS TO SELL"
)

// ParseSecondary parses the edited fill-in export. A row is accepted only if
// both VRM and MILEAGE are non-empty; anything else is skipped with a
// ROW_SKIPPED warning and parsing continues. Optional columns come back nil
// when blank, never coerced to 0.
func ParseSecondary(raw string) ([]*models.VehicleUpdate, []Warning, error) {
	rows, err := readRows(raw)
	if err != nil {
		return nil, nil, &ParseError{Stage: "final", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil, &ParseError{Stage: "final", Err: errors.New("missing header row")}
	}

	head := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		key := strings.ToUpper(strings.TrimSpace(h))
		if _, ok := head[key]; !ok {
			head[key] = i
		}
	}

	updates := make([]*models.VehicleUpdate, 0, len(rows)-1)
	var warnings []Warning
	for i, row := range rows[1:] {
		vrm := strings.TrimSpace(cell(head, row, colVRM))
		mileage := strings.TrimSpace(cell(head, row, colMileage))
		if vrm == "" || mileage == "" {
			warnings = append(warnings, Warning{
				Kind:   WarnRowSkipped,
				Row:    i + 2,
				Reason: skipReason(vrm, mileage),
			})
			continue
		}

		updates = append(updates, &models.VehicleUpdate{
			ID:                     CanonicalReg(vrm),
			Mileage:                parseIntCell(mileage),
			Spec:                   strings.TrimSpace(cell(head, row, colSpec)),
			Notes:                  strings.TrimSpace(cell(head, row, colNotes)),
			RetailValuation:        optMoneyCell(cell(head, row, colRetailValuation)),
			AutoTraderRetailRating: optIntCell(cell(head, row, colRetailRating)),
			DaysToSell:             optIntCell(cell(head, row, colDaysToSell)),
		})
	}
	return updates, warnings, nil
}

func skipReason(vrm, mileage string) string {
	switch {
	case vrm == "" && mileage == "":
		return "missing VRM and MILEAGE"
	case vrm == "":
		return "missing VRM"
	default:
		return "missing MILEAGE"
	}
}

func optIntCell(s string) *int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func optMoneyCell(s string) *decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
