package vehicles_api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BearBump/BidBox/internal/models"
	"github.com/BearBump/BidBox/internal/services/vehicles"
	"github.com/BearBump/BidBox/internal/storage/pgvehicles"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	batches map[uuid.UUID][]*models.VehicleRecord
}

func (m *memRepo) CreateBatch(_ context.Context, batch *models.ImportBatch, vs []*models.VehicleRecord) error {
	m.batches[batch.ID] = vs
	return nil
}

func (m *memRepo) GetBatchVehicles(_ context.Context, batchID uuid.UUID) ([]*models.VehicleRecord, error) {
	return m.batches[batchID], nil
}

func (m *memRepo) ReplaceBatchVehicles(_ context.Context, batchID uuid.UUID, vs []*models.VehicleRecord) error {
	m.batches[batchID] = vs
	return nil
}

func (m *memRepo) UpdateVehicleStatus(_ context.Context, batchID uuid.UUID, reg, status string, wonPrice *decimal.Decimal) error {
	for _, v := range m.batches[batchID] {
		if v.ID == reg {
			v.Status = status
			v.WonPrice = wonPrice
			return nil
		}
	}
	return errors.Errorf("vehicle %s not found", reg)
}

func (m *memRepo) ApplyValuation(_ context.Context, _ pgvehicles.ValuationUpdate) error {
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := vehicles.New(&memRepo{batches: map[uuid.UUID][]*models.VehicleRecord{}}, nil, 0)
	r := chi.NewRouter()
	New(svc).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

const importCSV = "REG,MAKE,MODEL,MILEAGE,RESERVE_OR_BUY_NOW_PRICE\nAB12CDE,Audi,A4,\"42,000\",14000\n,Ford,Focus,1000,5000\n"

func TestImportFlow(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/imports", map[string]string{"csv": importCSV})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		BatchID  uuid.UUID                `json:"batchId"`
		Vehicles []*models.VehicleRecord  `json:"vehicles"`
		Warnings []map[string]any         `json:"warnings"`
	}
	decodeBody(t, resp, &created)
	require.Len(t, created.Vehicles, 1)
	require.Len(t, created.Warnings, 1)
	require.Equal(t, "MISSING_IDENTIFIER", created.Warnings[0]["kind"])

	// fill-in worksheet
	resp2, err := http.Get(srv.URL + "/v1/imports/" + created.BatchID.String() + "/fillin")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	require.Equal(t, "text/csv", resp2.Header.Get("Content-Type"))

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp2.Body)
	require.NoError(t, err)
	require.Equal(t, "VRM,MILEAGE,SPEC,NOTES\nAB12CDE,42000,,", buf.String())

	// final import
	finalCSV := "VRM,MILEAGE,SPEC,NOTES,RETAIL VALUATION\nAB12CDE,43000,Sport,cat N,16500\n"
	resp3 := postJSON(t, srv.URL+"/v1/imports/"+created.BatchID.String()+"/final", map[string]string{"csv": finalCSV})
	require.Equal(t, http.StatusOK, resp3.StatusCode)

	var merged struct {
		Vehicles []*models.VehicleRecord `json:"vehicles"`
		Warnings []map[string]any        `json:"warnings"`
	}
	decodeBody(t, resp3, &merged)
	require.Len(t, merged.Vehicles, 1)
	require.Empty(t, merged.Warnings)
	require.Equal(t, 43000, merged.Vehicles[0].Mileage)
	require.Equal(t, "Sport", merged.Vehicles[0].Spec)
}

func TestImportParseErrorVerbatim(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/imports", map[string]string{"csv": "REG,MAKE\n\"unterminated,Audi\n"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	require.Contains(t, body["error"], "parse primary csv")
}

func TestSetStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/imports", map[string]string{"csv": importCSV})
	var created struct {
		BatchID uuid.UUID `json:"batchId"`
	}
	decodeBody(t, resp, &created)

	base := srv.URL + "/v1/imports/" + created.BatchID.String() + "/vehicles/AB12CDE/status"

	resp2 := postJSON(t, base, map[string]any{"status": "qualified"})
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	resp2.Body.Close()

	// winning without a price is rejected
	resp3 := postJSON(t, base, map[string]any{"status": "won"})
	require.Equal(t, http.StatusBadRequest, resp3.StatusCode)
	resp3.Body.Close()

	resp4 := postJSON(t, base, map[string]any{"status": "won", "wonPrice": "13500"})
	require.Equal(t, http.StatusOK, resp4.StatusCode)
	var out struct {
		Vehicle *models.VehicleRecord `json:"vehicle"`
	}
	decodeBody(t, resp4, &out)
	require.Equal(t, models.StatusWon, out.Vehicle.Status)
	require.NotNil(t, out.Vehicle.WonPrice)

	// unknown vehicle
	resp5 := postJSON(t, srv.URL+"/v1/imports/"+created.BatchID.String()+"/vehicles/ZZ99ZZZ/status",
		map[string]any{"status": "qualified"})
	require.Equal(t, http.StatusNotFound, resp5.StatusCode)
	resp5.Body.Close()
}

func TestProfitEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/profit", map[string]any{
		"retailValuation": "20000",
		"costs": map[string]any{
			"delivery":         "200",
			"mot":              "50",
			"service":          "100",
			"cosmetic":         "0",
			"warrantyAndValet": "150",
			"desiredNetProfit": "1000",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		BidPrice          decimal.Decimal `json:"bidPrice"`
		CarwowFee         decimal.Decimal `json:"carwowFee"`
		ActualNetProfit   decimal.Decimal `json:"actualNetProfit"`
		ActualGrossProfit decimal.Decimal `json:"actualGrossProfit"`
		VATAmount         decimal.Decimal `json:"vatAmount"`
	}
	decodeBody(t, resp, &out)
	// fee(20000)=389, totalCosts=889, bid = 20000 - 1.2*(1000+889)
	require.True(t, out.BidPrice.Equal(decimal.RequireFromString("17733.2")), out.BidPrice.String())
	require.True(t, out.CarwowFee.Equal(decimal.NewFromInt(389)))
	require.True(t, out.ActualNetProfit.Equal(decimal.NewFromInt(1000)))
	require.True(t, out.VATAmount.Equal(decimal.RequireFromString("377.8")))
}

func TestMaxBidEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/imports", map[string]string{"csv": importCSV})
	var created struct {
		BatchID uuid.UUID `json:"batchId"`
	}
	decodeBody(t, resp, &created)

	finalCSV := "VRM,MILEAGE,RETAIL VALUATION\nAB12CDE,43000,16500\n"
	resp2 := postJSON(t, srv.URL+"/v1/imports/"+created.BatchID.String()+"/final", map[string]string{"csv": finalCSV})
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	resp2.Body.Close()

	resp3 := postJSON(t, srv.URL+"/v1/max-bid", map[string]any{
		"batchId":   created.BatchID,
		"regNumber": "ab12cde",
		"costs":     map[string]any{"desiredNetProfit": "1000"},
	})
	require.Equal(t, http.StatusOK, resp3.StatusCode)

	var out struct {
		MaxBid  decimal.Decimal `json:"maxBid"`
		CarInfo struct {
			RegNumber   string          `json:"regNumber"`
			RetailPrice decimal.Decimal `json:"retailPrice"`
		} `json:"carInfo"`
	}
	decodeBody(t, resp3, &out)
	require.True(t, out.MaxBid.Equal(decimal.NewFromInt(14961)))
	require.Equal(t, "AB12CDE", out.CarInfo.RegNumber)
}
