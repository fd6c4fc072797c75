package ingest

import (
	"strconv"
	"strings"

	"github.com/BearBump/BidBox/internal/models"
)

// FillInHeader is the header row of the reduced export handed to a human for
// editing and later re-imported via ParseSecondary.
const FillInHeader = "VRM,MILEAGE,SPEC,NOTES"

// FillInExport renders one row per record in input order, with empty SPEC and
// NOTES columns for the human to fill in. No trailing newline. A zero mileage
// renders blank so the spreadsheet cell reads as "unknown" rather than 0.
func FillInExport(records []*models.VehicleRecord) string {
	var b strings.Builder
	b.WriteString(FillInHeader)
	for _, r := range records {
		b.WriteByte('\n')
		b.WriteString(r.ID)
		b.WriteByte(',')
		if r.Mileage != 0 {
			b.WriteString(strconv.Itoa(r.Mileage))
		}
		b.WriteString(",,")
	}
	return b.String()
}
