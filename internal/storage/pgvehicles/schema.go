package pgvehicles

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS import_batches (
  id UUID PRIMARY KEY,
  created_at TIMESTAMPTZ NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS vehicles (
  id BIGSERIAL PRIMARY KEY,
  batch_id UUID NOT NULL REFERENCES import_batches(id) ON DELETE CASCADE,
  reg TEXT NOT NULL,
  sales_type TEXT NOT NULL DEFAULT '',
  listing_id TEXT NOT NULL DEFAULT '',
  listing_url TEXT NOT NULL DEFAULT '',
  date_approved_by_carwow TEXT NOT NULL DEFAULT '',
  make TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL DEFAULT '',
  mileage INT NOT NULL DEFAULT 0,
  car_age_years INT NOT NULL DEFAULT 0,
  first_registered TEXT NOT NULL DEFAULT '',
  car_year INT NOT NULL DEFAULT 0,
  previous_owners_count INT NOT NULL DEFAULT 0,
  condition_grade INT NOT NULL DEFAULT 0,
  service_history TEXT NOT NULL DEFAULT '',
  engine TEXT NOT NULL DEFAULT '',
  fuel_type TEXT NOT NULL DEFAULT '',
  bodycolour TEXT NOT NULL DEFAULT '',
  transmission TEXT NOT NULL DEFAULT '',
  seller_notes TEXT NOT NULL DEFAULT '',
  listing_region TEXT NOT NULL DEFAULT '',
  listing_city TEXT NOT NULL DEFAULT '',
  vehicle_type TEXT NOT NULL DEFAULT '',
  vat_applicable TEXT NOT NULL DEFAULT '',
  imported TEXT NOT NULL DEFAULT '',
  cap_clean NUMERIC(12,2) NOT NULL DEFAULT 0,
  reserve_or_buy_now_price NUMERIC(12,2) NOT NULL DEFAULT 0,
  spec TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  retail_valuation NUMERIC(12,2) NULL,
  auto_trader_retail_rating INT NULL,
  days_to_sell INT NULL,
  status TEXT NOT NULL,
  won_price NUMERIC(12,2) NULL,
  valuation_checked_at TIMESTAMPTZ NULL,
  valuation_fail_count INT NOT NULL DEFAULT 0,
  next_valuation_at TIMESTAMPTZ NOT NULL,
  last_valuation_error TEXT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  UNIQUE (batch_id, reg)
)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_next_valuation_at ON vehicles(next_valuation_at)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_batch_id ON vehicles(batch_id)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
