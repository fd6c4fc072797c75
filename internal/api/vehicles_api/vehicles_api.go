// Package vehicles_api exposes the bidding service over JSON HTTP.
package vehicles_api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BearBump/BidBox/internal/funnel"
	"github.com/BearBump/BidBox/internal/ingest"
	"github.com/BearBump/BidBox/internal/pricing"
	"github.com/BearBump/BidBox/internal/services/vehicles"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VehiclesAPI struct {
	svc *vehicles.Service
}

func New(svc *vehicles.Service) *VehiclesAPI {
	return &VehiclesAPI{svc: svc}
}

func (a *VehiclesAPI) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/imports", a.importPrimary)
		r.Route("/imports/{batchID}", func(r chi.Router) {
			r.Get("/fillin", a.fillInExport)
			r.Post("/final", a.importFinal)
			r.Get("/vehicles", a.listVehicles)
			r.Post("/vehicles/{reg}/status", a.setStatus)
			r.Post("/classify", a.classify)
		})
		r.Post("/profit", a.profit)
		r.Post("/max-bid", a.maxBid)
	})
}

type importRequest struct {
	CSV string `json:"csv"`
}

func (a *VehiclesAPI) importPrimary(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := a.svc.ImportPrimary(r.Context(), req.CSV)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, importResponse(res))
}

func (a *VehiclesAPI) fillInExport(w http.ResponseWriter, r *http.Request) {
	batchID, ok := batchIDParam(w, r)
	if !ok {
		return
	}
	csv, err := a.svc.FillInExport(r.Context(), batchID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="fillin.csv"`)
	_, _ = w.Write([]byte(csv))
}

func (a *VehiclesAPI) importFinal(w http.ResponseWriter, r *http.Request) {
	batchID, ok := batchIDParam(w, r)
	if !ok {
		return
	}
	var req importRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := a.svc.ImportFinal(r.Context(), batchID, req.CSV)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse(res))
}

func (a *VehiclesAPI) listVehicles(w http.ResponseWriter, r *http.Request) {
	batchID, ok := batchIDParam(w, r)
	if !ok {
		return
	}
	recs, err := a.svc.ListVehicles(r.Context(), batchID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": recs})
}

type statusRequest struct {
	Status   string           `json:"status"`
	WonPrice *decimal.Decimal `json:"wonPrice,omitempty"`
}

func (a *VehiclesAPI) setStatus(w http.ResponseWriter, r *http.Request) {
	batchID, ok := batchIDParam(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := a.svc.SetStatus(r.Context(), batchID, chi.URLParam(r, "reg"), req.Status, req.WonPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicle": v})
}

func (a *VehiclesAPI) classify(w http.ResponseWriter, r *http.Request) {
	batchID, ok := batchIDParam(w, r)
	if !ok {
		return
	}
	var req funnel.Thresholds
	if !decodeJSON(w, r, &req) {
		return
	}
	recs, err := a.svc.Reclassify(r.Context(), batchID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": recs})
}

type profitRequest struct {
	RetailValuation decimal.Decimal    `json:"retailValuation"`
	Costs           pricing.CostInputs `json:"costs"`
}

func (a *VehiclesAPI) profit(w http.ResponseWriter, r *http.Request) {
	var req profitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := pricing.ComputeBidPrice(req.RetailValuation, req.Costs)
	writeJSON(w, http.StatusOK, res.Rounded())
}

type maxBidRequest struct {
	BatchID   uuid.UUID          `json:"batchId"`
	RegNumber string             `json:"regNumber"`
	Costs     pricing.CostInputs `json:"costs"`
}

func (a *VehiclesAPI) maxBid(w http.ResponseWriter, r *http.Request) {
	var req maxBidRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := a.svc.MaxBid(r.Context(), req.BatchID, req.RegNumber, req.Costs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// importResponse guarantees warnings marshal as [], never null: clients render
// them unconditionally.
func importResponse(res *vehicles.ImportResult) map[string]any {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []ingest.Warning{}
	}
	return map[string]any{
		"batchId":  res.BatchID,
		"vehicles": res.Vehicles,
		"warnings": warnings,
	}
}

func batchIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "batchID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid batch id"})
		return uuid.Nil, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err.Error())
	}
}

// writeError maps service errors to status codes. Fatal CSV parse errors go
// back verbatim so the operator sees the same message the parser produced.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var parseErr *ingest.ParseError
	var notFound *vehicles.NotFoundError
	var badReq *vehicles.BadRequestError
	switch {
	case errors.As(err, &parseErr):
		status = http.StatusBadRequest
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &badReq):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err.Error())
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
