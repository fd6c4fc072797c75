package ingest

import (
	"testing"

	"github.com/BearBump/BidBox/internal/models"
	"github.com/stretchr/testify/require"
)

func TestFillInExport(t *testing.T) {
	out := FillInExport([]*models.VehicleRecord{
		{ID: "AB12CDE", Mileage: 42000},
		{ID: "YH22VFD", Mileage: 0},
	})
	require.Equal(t, "VRM,MILEAGE,SPEC,NOTES\nAB12CDE,42000,,\nYH22VFD,,,", out)
}

func TestFillInExportEmpty(t *testing.T) {
	require.Equal(t, FillInHeader, FillInExport(nil))
}

func TestFillInRoundTripsThroughSecondaryParse(t *testing.T) {
	out := FillInExport([]*models.VehicleRecord{{ID: "AB12CDE", Mileage: 42000}})

	updates, warnings, err := ParseSecondary(out)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, updates, 1)
	require.Equal(t, "AB12CDE", updates[0].ID)
	require.Equal(t, 42000, updates[0].Mileage)
}
