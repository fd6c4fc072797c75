package ingest

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/BearBump/BidBox/internal/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Primary export column vocabulary. Lookup is exact and case-sensitive;
// carwow emits these headers verbatim.
const (
	colSalesType            = "SALES_TYPE"
	colListingID            = "LISTING_ID"
	colListingURL           = "LISTING_URL"
	colReg                  = "REG"
	colDateApprovedByCarwow = "DATE_APPROVED_BY_CARWOW"
	colMake                 = "MAKE"
	colModel                = "MODEL"
	colMileage              = "MILEAGE"
	colCarAgeYears          = "CAR_AGE_YEARS"
	colFirstRegistered      = "FIRST_REGISTERED"
	colCarYear              = "CAR_YEAR"
	colCapClean             = "CAP_CLEAN"
	colReserveOrBuyNow      = "RESERVE_OR_BUY_NOW_PRICE"
	colPreviousOwners       = "PREVIOUS_OWNERS_COUNT"
	colConditionGrade       = "CONDITION_GRADE"
	colServiceHistory       = "SERVICE_HISTORY"
	colEngine               = "ENGINE"
	colFuelType             = "FUEL_TYPE"
	colBodycolour           = "BODYCOLOUR"
	colTransmission         = "TRANSMISSION"
	colSellerNotes          = "SELLER_NOTES"
	colListingRegion        = "LISTING_REGION"
	colListingCity          = "LISTING_CITY"
	colVehicleType          = "VEHICLE_TYPE"
	colVATApplicable        = "VAT_APPLICABLE"
	colImported             = "IMPORTED"
)

// ParsePrimary parses a carwow primary export. Numeric cells may carry
// thousands separators; missing numerics default to 0, missing text to "".
// Rows with a blank REG are dropped and reported as MISSING_IDENTIFIER
// warnings (an empty merge key would collide with every other such row).
// Every emitted record starts in the unclassified status.
func ParsePrimary(raw string) ([]*models.VehicleRecord, []Warning, error) {
	rows, err := readRows(raw)
	if err != nil {
		return nil, nil, &ParseError{Stage: "primary", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil, &ParseError{Stage: "primary", Err: errors.New("missing header row")}
	}

	head := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		if _, ok := head[h]; !ok {
			head[h] = i
		}
	}

	records := make([]*models.VehicleRecord, 0, len(rows)-1)
	var warnings []Warning
	for i, row := range rows[1:] {
		reg := strings.TrimSpace(cell(head, row, colReg))
		if reg == "" {
			warnings = append(warnings, Warning{
				Kind:   WarnMissingIdentifier,
				Row:    i + 2,
				Reason: "missing " + colReg,
			})
			continue
		}

		records = append(records, &models.VehicleRecord{
			ID:                   CanonicalReg(reg),
			SalesType:            cell(head, row, colSalesType),
			ListingID:            cell(head, row, colListingID),
			ListingURL:           cell(head, row, colListingURL),
			DateApprovedByCarwow: cell(head, row, colDateApprovedByCarwow),
			Make:                 cell(head, row, colMake),
			Model:                cell(head, row, colModel),
			Mileage:              parseIntCell(cell(head, row, colMileage)),
			CarAgeYears:          parseIntCell(cell(head, row, colCarAgeYears)),
			FirstRegistered:      cell(head, row, colFirstRegistered),
			CarYear:              parseIntCell(cell(head, row, colCarYear)),
			CapClean:             parseMoneyCell(cell(head, row, colCapClean)),
			ReserveOrBuyNowPrice: parseMoneyCell(cell(head, row, colReserveOrBuyNow)),
			PreviousOwnersCount:  parseIntCell(cell(head, row, colPreviousOwners)),
			ConditionGrade:       parseIntCell(cell(head, row, colConditionGrade)),
			ServiceHistory:       cell(head, row, colServiceHistory),
			Engine:               cell(head, row, colEngine),
			FuelType:             cell(head, row, colFuelType),
			Bodycolour:           cell(head, row, colBodycolour),
			Transmission:         cell(head, row, colTransmission),
			SellerNotes:          cell(head, row, colSellerNotes),
			ListingRegion:        cell(head, row, colListingRegion),
			ListingCity:          cell(head, row, colListingCity),
			VehicleType:          cell(head, row, colVehicleType),
			VATApplicable:        cell(head, row, colVATApplicable),
			Imported:             cell(head, row, colImported),
			Status:               models.StatusUnclassified,
		})
	}
	return records, warnings, nil
}

// CanonicalReg normalizes a registration the way both parsers do before it
// becomes a merge key.
func CanonicalReg(reg string) string {
	return strings.ToUpper(strings.TrimSpace(reg))
}

// readRows tolerates ragged rows (exports sometimes drop trailing cells);
// missing cells read as "".
func readRows(raw string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func cell(head map[string]int, row []string, name string) string {
	i, ok := head[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseIntCell strips thousands separators; blank or unparsable cells are 0.
func parseIntCell(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseMoneyCell(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
