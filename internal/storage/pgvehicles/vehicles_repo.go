package pgvehicles

import (
	"context"
	"time"

	"github.com/BearBump/BidBox/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const vehicleColumns = `
  batch_id, reg,
  sales_type, listing_id, listing_url, date_approved_by_carwow,
  make, model, mileage, car_age_years, first_registered, car_year,
  previous_owners_count, condition_grade, service_history,
  engine, fuel_type, bodycolour, transmission, seller_notes,
  listing_region, listing_city, vehicle_type, vat_applicable, imported,
  cap_clean, reserve_or_buy_now_price,
  spec, notes, retail_valuation, auto_trader_retail_rating, days_to_sell,
  status, won_price,
  valuation_checked_at, valuation_fail_count, next_valuation_at, last_valuation_error,
  created_at, updated_at`

// CreateBatch stores a batch and its vehicles in one transaction.
// Vehicles that still lack a retail valuation become due for the valuation
// worker immediately (next_valuation_at = now).
func (s *Storage) CreateBatch(ctx context.Context, batch *models.ImportBatch, vehicles []*models.VehicleRecord) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO import_batches (id, created_at) VALUES ($1, $2)`,
		batch.ID, batch.CreatedAt.UTC(),
	); err != nil {
		return errors.Wrap(err, "insert batch")
	}

	now := time.Now().UTC()
	for _, v := range vehicles {
		if err := insertVehicle(ctx, tx, batch.ID, v, now); err != nil {
			return err
		}
	}

	return errors.Wrap(tx.Commit(ctx), "commit tx")
}

// ReplaceBatchVehicles swaps the whole vehicle set of a batch, used after the
// fill-in merge. Replacing rather than updating keeps the merged sequence the
// single source of truth.
func (s *Storage) ReplaceBatchVehicles(ctx context.Context, batchID uuid.UUID, vehicles []*models.VehicleRecord) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM vehicles WHERE batch_id = $1`, batchID); err != nil {
		return errors.Wrap(err, "delete batch vehicles")
	}

	now := time.Now().UTC()
	for _, v := range vehicles {
		if err := insertVehicle(ctx, tx, batchID, v, now); err != nil {
			return err
		}
	}

	return errors.Wrap(tx.Commit(ctx), "commit tx")
}

func insertVehicle(ctx context.Context, tx pgx.Tx, batchID uuid.UUID, v *models.VehicleRecord, now time.Time) error {
	createdAt := v.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	nextValuationAt := v.NextValuationAt
	if nextValuationAt.IsZero() {
		nextValuationAt = now
	}

	_, err := tx.Exec(ctx, `
INSERT INTO vehicles (`+vehicleColumns+`)
VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
  $11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
  $21,$22,$23,$24,$25,$26,$27,$28,$29,$30,
  $31,$32,$33,$34,$35,$36,$37,$38,$39,$40
)`,
		batchID, v.ID,
		v.SalesType, v.ListingID, v.ListingURL, v.DateApprovedByCarwow,
		v.Make, v.Model, v.Mileage, v.CarAgeYears, v.FirstRegistered, v.CarYear,
		v.PreviousOwnersCount, v.ConditionGrade, v.ServiceHistory,
		v.Engine, v.FuelType, v.Bodycolour, v.Transmission, v.SellerNotes,
		v.ListingRegion, v.ListingCity, v.VehicleType, v.VATApplicable, v.Imported,
		v.CapClean, v.ReserveOrBuyNowPrice,
		v.Spec, v.Notes, nullDec(v.RetailValuation), v.AutoTraderRetailRating, v.DaysToSell,
		v.Status, nullDec(v.WonPrice),
		v.ValuationCheckedAt, v.ValuationFailCount, nextValuationAt, v.LastValuationError,
		createdAt, now,
	)
	return errors.Wrap(err, "insert vehicle")
}

// GetBatchVehicles returns the batch in import order.
func (s *Storage) GetBatchVehicles(ctx context.Context, batchID uuid.UUID) ([]*models.VehicleRecord, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+vehicleColumns+`
FROM vehicles
WHERE batch_id = $1
ORDER BY id
`, batchID)
	if err != nil {
		return nil, errors.Wrap(err, "select vehicles")
	}
	defer rows.Close()

	out := []*models.VehicleRecord{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

// UpdateVehicleStatus persists a funnel transition already validated by the
// caller.
func (s *Storage) UpdateVehicleStatus(ctx context.Context, batchID uuid.UUID, reg, status string, wonPrice *decimal.Decimal) error {
	ct, err := s.db.Exec(ctx, `
UPDATE vehicles
SET status = $3, won_price = $4, updated_at = now()
WHERE batch_id = $1 AND reg = $2
`, batchID, reg, status, nullDec(wonPrice))
	if err != nil {
		return errors.Wrap(err, "update vehicle status")
	}
	if ct.RowsAffected() == 0 {
		return errors.Errorf("vehicle %s not found in batch %s", reg, batchID)
	}
	return nil
}

type ValuationUpdate struct {
	BatchID uuid.UUID
	Reg     string

	CheckedAt time.Time

	RetailValuation *decimal.Decimal
	Make            string
	Model           string

	NextCheckAt time.Time

	Error *string
}

// ApplyValuation records a lookup outcome. Success resets the fail counter;
// an existing valuation (from the fill-in import) is never overwritten by a
// nil one.
func (s *Storage) ApplyValuation(ctx context.Context, upd ValuationUpdate) error {
	if upd.Error != nil {
		_, err := s.db.Exec(ctx, `
UPDATE vehicles
SET valuation_checked_at = $3,
    valuation_fail_count = valuation_fail_count + 1,
    next_valuation_at = $4,
    last_valuation_error = $5,
    updated_at = now()
WHERE batch_id = $1 AND reg = $2
`, upd.BatchID, upd.Reg, upd.CheckedAt.UTC(), upd.NextCheckAt.UTC(), *upd.Error)
		return errors.Wrap(err, "record valuation failure")
	}

	_, err := s.db.Exec(ctx, `
UPDATE vehicles
SET retail_valuation = COALESCE($3, retail_valuation),
    valuation_checked_at = $4,
    valuation_fail_count = 0,
    next_valuation_at = $5,
    last_valuation_error = NULL,
    updated_at = now()
WHERE batch_id = $1 AND reg = $2
`, upd.BatchID, upd.Reg, nullDec(upd.RetailValuation), upd.CheckedAt.UTC(), upd.NextCheckAt.UTC())
	return errors.Wrap(err, "apply valuation")
}

// ClaimUnvalued picks vehicles due for a valuation lookup and leases them so
// concurrent workers do not double-process. SELECT ... FOR UPDATE SKIP LOCKED.
func (s *Storage) ClaimUnvalued(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.VehicleRecord, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
SELECT `+vehicleColumns+`
FROM vehicles
WHERE retail_valuation IS NULL
  AND next_valuation_at <= $1
ORDER BY next_valuation_at ASC
LIMIT $2
FOR UPDATE SKIP LOCKED
`, now.UTC(), limit)
	if err != nil {
		return nil, errors.Wrap(err, "select unvalued vehicles")
	}
	defer rows.Close()

	var picked []*models.VehicleRecord
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		picked = append(picked, v)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	rows.Close()

	leaseUntil := now.UTC().Add(lease)
	for _, v := range picked {
		_, err := tx.Exec(ctx, `
UPDATE vehicles SET next_valuation_at = $3, updated_at = now()
WHERE batch_id = $1 AND reg = $2
`, v.BatchID, v.ID, leaseUntil)
		if err != nil {
			return nil, errors.Wrap(err, "lease vehicle")
		}
		v.NextValuationAt = leaseUntil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return picked, nil
}

func scanVehicle(rows pgx.Rows) (*models.VehicleRecord, error) {
	var (
		v               models.VehicleRecord
		retailValuation decimal.NullDecimal
		wonPrice        decimal.NullDecimal
	)
	if err := rows.Scan(
		&v.BatchID, &v.ID,
		&v.SalesType, &v.ListingID, &v.ListingURL, &v.DateApprovedByCarwow,
		&v.Make, &v.Model, &v.Mileage, &v.CarAgeYears, &v.FirstRegistered, &v.CarYear,
		&v.PreviousOwnersCount, &v.ConditionGrade, &v.ServiceHistory,
		&v.Engine, &v.FuelType, &v.Bodycolour, &v.Transmission, &v.SellerNotes,
		&v.ListingRegion, &v.ListingCity, &v.VehicleType, &v.VATApplicable, &v.Imported,
		&v.CapClean, &v.ReserveOrBuyNowPrice,
		&v.Spec, &v.Notes, &retailValuation, &v.AutoTraderRetailRating, &v.DaysToSell,
		&v.Status, &wonPrice,
		&v.ValuationCheckedAt, &v.ValuationFailCount, &v.NextValuationAt, &v.LastValuationError,
		&v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "scan vehicle")
	}
	if retailValuation.Valid {
		v.RetailValuation = &retailValuation.Decimal
	}
	if wonPrice.Valid {
		v.WonPrice = &wonPrice.Decimal
	}
	return &v, nil
}

func nullDec(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
