package ingest

import (
	"testing"

	"github.com/BearBump/BidBox/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParsePrimary(t *testing.T) {
	csv := `SALES_TYPE,LISTING_ID,LISTING_URL,REG,MAKE,MODEL,MILEAGE,CAR_YEAR,CAP_CLEAN,RESERVE_OR_BUY_NOW_PRICE,CONDITION_GRADE
auction,101,https://example.com/101,AB12CDE,Audi,A4,"12,345",2019,"15,000","15,000",3
buy_now,102,https://example.com/102,wr67vbv,Volkswagen,Golf,80000,2017,8000,,2
`
	recs, warnings, err := ParsePrimary(csv)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, recs, 2)

	r := recs[0]
	require.Equal(t, "AB12CDE", r.ID)
	require.Equal(t, "auction", r.SalesType)
	require.Equal(t, 12345, r.Mileage)
	require.Equal(t, 2019, r.CarYear)
	require.True(t, r.CapClean.Equal(decimal.NewFromInt(15000)))
	require.True(t, r.ReserveOrBuyNowPrice.Equal(decimal.NewFromInt(15000)))
	require.Equal(t, 3, r.ConditionGrade)
	require.Equal(t, models.StatusUnclassified, r.Status)

	// registration is canonicalized to upper case
	require.Equal(t, "WR67VBV", recs[1].ID)
	// missing numeric cell defaults to zero
	require.True(t, recs[1].ReserveOrBuyNowPrice.IsZero())
}

func TestParsePrimaryBlankRegDropped(t *testing.T) {
	csv := "REG,MAKE\nAB12CDE,Audi\n,Ford\nYH22VFD,BMW\n"
	recs, warnings, err := ParsePrimary(csv)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Len(t, warnings, 1)
	require.Equal(t, WarnMissingIdentifier, warnings[0].Kind)
	require.Equal(t, 3, warnings[0].Row)
}

func TestParsePrimaryHeadersAreCaseSensitive(t *testing.T) {
	csv := "reg,make\nAB12CDE,Audi\n"
	recs, warnings, err := ParsePrimary(csv)
	require.NoError(t, err)
	// lower-case headers are unknown columns, so every row lacks a REG
	require.Empty(t, recs)
	require.Len(t, warnings, 1)
}

func TestParsePrimaryMalformed(t *testing.T) {
	_, _, err := ParsePrimary("REG,MAKE\n\"unterminated,Audi\n")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "primary", parseErr.Stage)
	require.Contains(t, err.Error(), "parse primary csv")
}

func TestParsePrimaryEmptyInput(t *testing.T) {
	_, _, err := ParsePrimary("")
	require.Error(t, err)
}

func TestParsePrimaryRaggedRow(t *testing.T) {
	// trailing cells dropped by the exporter read as empty
	csv := "REG,MAKE,MILEAGE\nAB12CDE\n"
	recs, warnings, err := ParsePrimary(csv)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, recs, 1)
	require.Equal(t, "", recs[0].Make)
	require.Equal(t, 0, recs[0].Mileage)
}
