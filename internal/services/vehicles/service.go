package vehicles

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BearBump/BidBox/internal/broker/messages"
	"github.com/BearBump/BidBox/internal/cache"
	"github.com/BearBump/BidBox/internal/funnel"
	"github.com/BearBump/BidBox/internal/ingest"
	"github.com/BearBump/BidBox/internal/models"
	"github.com/BearBump/BidBox/internal/pricing"
	"github.com/BearBump/BidBox/internal/storage/pgvehicles"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	CreateBatch(ctx context.Context, batch *models.ImportBatch, vehicles []*models.VehicleRecord) error
	GetBatchVehicles(ctx context.Context, batchID uuid.UUID) ([]*models.VehicleRecord, error)
	ReplaceBatchVehicles(ctx context.Context, batchID uuid.UUID, vehicles []*models.VehicleRecord) error
	UpdateVehicleStatus(ctx context.Context, batchID uuid.UUID, reg, status string, wonPrice *decimal.Decimal) error
	ApplyValuation(ctx context.Context, upd pgvehicles.ValuationUpdate) error
}

type Service struct {
	repo        Repository
	cache       cache.BytesCache
	vehiclesTTL time.Duration
}

func New(repo Repository, c cache.BytesCache, vehiclesTTL time.Duration) *Service {
	return &Service{repo: repo, cache: c, vehiclesTTL: vehiclesTTL}
}

// ImportResult is what both import operations hand back: the stored vehicle
// sequence plus any per-row warnings from parsing.
type ImportResult struct {
	BatchID  uuid.UUID               `json:"batchId"`
	Vehicles []*models.VehicleRecord `json:"vehicles"`
	Warnings []ingest.Warning        `json:"warnings"`
}

// ImportPrimary parses a carwow auction export and stores it as a new batch.
// Duplicate registrations keep the first occurrence.
func (s *Service) ImportPrimary(ctx context.Context, raw string) (*ImportResult, error) {
	if raw == "" {
		return nil, badRequestf("csv is empty")
	}

	records, warnings, err := ingest.ParsePrimary(raw)
	if err != nil {
		return nil, err
	}

	clean := make([]*models.VehicleRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		clean = append(clean, r)
	}

	batch := &models.ImportBatch{ID: uuid.New(), CreatedAt: time.Now().UTC()}
	for _, r := range clean {
		r.BatchID = batch.ID
	}

	if err := s.repo.CreateBatch(ctx, batch, clean); err != nil {
		return nil, err
	}
	s.cacheVehicles(ctx, batch.ID, clean)

	return &ImportResult{BatchID: batch.ID, Vehicles: clean, Warnings: warnings}, nil
}

// FillInExport renders the 4-column worksheet for a stored batch.
func (s *Service) FillInExport(ctx context.Context, batchID uuid.UUID) (string, error) {
	recs, err := s.ListVehicles(ctx, batchID)
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "", notFoundf("batch %s has no vehicles", batchID)
	}
	return ingest.FillInExport(recs), nil
}

// ImportFinal merges a filled-in worksheet back into the stored batch and
// replaces the batch contents with the merged sequence.
func (s *Service) ImportFinal(ctx context.Context, batchID uuid.UUID, raw string) (*ImportResult, error) {
	if raw == "" {
		return nil, badRequestf("csv is empty")
	}

	updates, warnings, err := ingest.ParseSecondary(raw)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetBatchVehicles(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		return nil, notFoundf("batch %s has no vehicles", batchID)
	}

	merged := ingest.Merge(current, updates)
	if err := s.repo.ReplaceBatchVehicles(ctx, batchID, merged); err != nil {
		return nil, err
	}
	s.cacheVehicles(ctx, batchID, merged)

	return &ImportResult{BatchID: batchID, Vehicles: merged, Warnings: warnings}, nil
}

// ListVehicles returns a batch in import order, cache-aside as JSON.
// The cache is best effort: on any miss or decode problem we fall back to the
// database and repopulate.
func (s *Service) ListVehicles(ctx context.Context, batchID uuid.UUID) ([]*models.VehicleRecord, error) {
	if s.cache != nil && s.vehiclesTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, batchKey(batchID)); err == nil && ok {
			var recs []*models.VehicleRecord
			if json.Unmarshal(b, &recs) == nil {
				return recs, nil
			}
		}
	}

	recs, err := s.repo.GetBatchVehicles(ctx, batchID)
	if err != nil {
		return nil, err
	}
	s.cacheVehicles(ctx, batchID, recs)
	return recs, nil
}

// SetStatus moves one vehicle through the funnel and persists the result.
func (s *Service) SetStatus(ctx context.Context, batchID uuid.UUID, reg, status string, wonPrice *decimal.Decimal) (*models.VehicleRecord, error) {
	if !funnel.IsStatus(status) {
		return nil, badRequestf("unknown status %q", status)
	}

	v, err := s.findVehicle(ctx, batchID, reg)
	if err != nil {
		return nil, err
	}

	if err := funnel.Apply(v, status, wonPrice); err != nil {
		return nil, badRequestf("%s", err)
	}
	if err := s.repo.UpdateVehicleStatus(ctx, batchID, v.ID, v.Status, v.WonPrice); err != nil {
		return nil, err
	}
	s.dropCache(ctx, batchID)
	return v, nil
}

// Reclassify runs the qualification thresholds over the batch. Only vehicles
// still on the classification side of the funnel (unclassified, qualified,
// hidden) move; bid decisions are never undone by a threshold change.
func (s *Service) Reclassify(ctx context.Context, batchID uuid.UUID, t funnel.Thresholds) ([]*models.VehicleRecord, error) {
	recs, err := s.repo.GetBatchVehicles(ctx, batchID)
	if err != nil {
		return nil, err
	}

	year := time.Now().UTC().Year()
	for _, v := range recs {
		switch v.Status {
		case models.StatusUnclassified, models.StatusQualified, models.StatusHidden:
		default:
			continue
		}
		next := funnel.Classify(v, t, year)
		if next == v.Status {
			continue
		}
		if err := funnel.Apply(v, next, nil); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateVehicleStatus(ctx, batchID, v.ID, v.Status, v.WonPrice); err != nil {
			return nil, err
		}
	}
	s.cacheVehicles(ctx, batchID, recs)
	return recs, nil
}

// ApplyValuationUpdate consumes a worker message and folds it into storage.
func (s *Service) ApplyValuationUpdate(ctx context.Context, msg messages.VehicleValuated) error {
	if msg.Reg == "" {
		return badRequestf("reg is required")
	}
	if msg.CheckedAt.IsZero() {
		msg.CheckedAt = time.Now().UTC()
	}
	if msg.NextCheckAt.IsZero() {
		msg.NextCheckAt = msg.CheckedAt.Add(60 * time.Minute)
	}

	err := s.repo.ApplyValuation(ctx, pgvehicles.ValuationUpdate{
		BatchID:         msg.BatchID,
		Reg:             msg.Reg,
		CheckedAt:       msg.CheckedAt,
		RetailValuation: msg.RetailValuation,
		Make:            msg.Make,
		Model:           msg.Model,
		NextCheckAt:     msg.NextCheckAt,
		Error:           msg.Error,
	})
	if err != nil {
		return err
	}
	s.dropCache(ctx, msg.BatchID)
	return nil
}

// MaxBidResult mirrors the quick-lookup contract: the simplified ceiling plus
// the car details backing it.
type MaxBidResult struct {
	MaxBid  decimal.Decimal `json:"maxBid"`
	CarInfo CarInfo         `json:"carInfo"`
}

type CarInfo struct {
	RegNumber   string          `json:"regNumber"`
	Make        string          `json:"make"`
	Model       string          `json:"model"`
	Year        int             `json:"year"`
	RetailPrice decimal.Decimal `json:"retailPrice"`
}

// MaxBid computes the simplified bid ceiling for one vehicle of a batch.
// A vehicle without a valuation counts as worth zero, which floors the
// ceiling at zero rather than failing the lookup.
func (s *Service) MaxBid(ctx context.Context, batchID uuid.UUID, reg string, costs pricing.CostInputs) (*MaxBidResult, error) {
	v, err := s.findVehicle(ctx, batchID, reg)
	if err != nil {
		return nil, err
	}

	valuation := decimal.Zero
	if v.RetailValuation != nil {
		valuation = *v.RetailValuation
	}

	return &MaxBidResult{
		MaxBid: pricing.MaxBid(valuation, costs),
		CarInfo: CarInfo{
			RegNumber:   v.ID,
			Make:        v.Make,
			Model:       v.Model,
			Year:        v.CarYear,
			RetailPrice: valuation,
		},
	}, nil
}

func (s *Service) findVehicle(ctx context.Context, batchID uuid.UUID, reg string) (*models.VehicleRecord, error) {
	recs, err := s.ListVehicles(ctx, batchID)
	if err != nil {
		return nil, err
	}
	id := ingest.CanonicalReg(reg)
	for _, v := range recs {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, notFoundf("vehicle %s not found in batch %s", id, batchID)
}

func (s *Service) cacheVehicles(ctx context.Context, batchID uuid.UUID, recs []*models.VehicleRecord) {
	if s.cache == nil || s.vehiclesTTL <= 0 {
		return
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, batchKey(batchID), b, s.vehiclesTTL)
}

func (s *Service) dropCache(ctx context.Context, batchID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, batchKey(batchID))
}

func batchKey(batchID uuid.UUID) string {
	return fmt.Sprintf("vehicles:batch:%s", batchID)
}
