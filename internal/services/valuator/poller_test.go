package valuator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/BearBump/BidBox/internal/broker/messages"
	"github.com/BearBump/BidBox/internal/integrations/valuation"
	"github.com/BearBump/BidBox/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	topic string
	key   []byte
	value []byte
	calls int
	err   error
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.calls++
	p.topic, p.key, p.value = topic, key, value
	return p.err
}

type fakeRL struct {
	allowed bool
	count   int64
	err     error
}

func (r fakeRL) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	return r.allowed, r.count, r.err
}

type fakeValuer struct {
	res valuation.Result
	err error
}

func (v fakeValuer) GetValuation(ctx context.Context, reg string) (valuation.Result, error) {
	return v.res, v.err
}

func TestPoller_processOne_okPublishes(t *testing.T) {
	fp := &fakeProducer{}
	p := New(nil, fakeValuer{
		res: valuation.Result{
			RetailValuation: decimal.NewFromInt(22500),
			Make:            "Volkswagen",
			Model:           "Golf",
		},
	}, fp, fakeRL{allowed: true}, "vehicle.valuated")

	v := &models.VehicleRecord{BatchID: uuid.New(), ID: "WR67VBV"}
	require.NoError(t, p.processOne(context.Background(), v))
	require.Equal(t, 1, fp.calls)
	require.Equal(t, "vehicle.valuated", fp.topic)

	var msg messages.VehicleValuated
	require.NoError(t, json.Unmarshal(fp.value, &msg))
	require.Equal(t, "WR67VBV", msg.Reg)
	require.NotNil(t, msg.RetailValuation)
	require.True(t, msg.RetailValuation.Equal(decimal.NewFromInt(22500)))
	require.Equal(t, "Volkswagen", msg.Make)
	require.Nil(t, msg.Error)
}

func TestPoller_processOne_notFoundIsNotAnError(t *testing.T) {
	fp := &fakeProducer{}
	p := New(nil, fakeValuer{err: valuation.ErrNotFound}, fp, nil, "vehicle.valuated")

	v := &models.VehicleRecord{BatchID: uuid.New(), ID: "ZZ99ZZZ"}
	require.NoError(t, p.processOne(context.Background(), v))
	require.Equal(t, 1, fp.calls)

	var msg messages.VehicleValuated
	require.NoError(t, json.Unmarshal(fp.value, &msg))
	require.Nil(t, msg.RetailValuation)
	require.Nil(t, msg.Error)
	// not-found reschedules for the next day, not the failure ladder
	require.True(t, msg.NextCheckAt.After(msg.CheckedAt.Add(23*time.Hour)))
}

func TestPoller_processOne_errorBackoff(t *testing.T) {
	fp := &fakeProducer{}
	p := New(nil, fakeValuer{err: errors.New("boom")}, fp, nil, "vehicle.valuated")

	v := &models.VehicleRecord{BatchID: uuid.New(), ID: "AB12CDE", ValuationFailCount: 1}
	require.NoError(t, p.processOne(context.Background(), v))
	require.Equal(t, 1, fp.calls)

	var msg messages.VehicleValuated
	require.NoError(t, json.Unmarshal(fp.value, &msg))
	require.NotNil(t, msg.Error)
	require.Equal(t, "boom", *msg.Error)
	// second failure lands on the 15 minute step
	require.Equal(t, msg.CheckedAt.Add(15*time.Minute), msg.NextCheckAt)
}

func TestPoller_WithSettings(t *testing.T) {
	fp := &fakeProducer{}
	p := New(nil, fakeValuer{}, fp, nil, "t").
		WithSettings(5*time.Second, 7, 9, 11*time.Second, 13)
	require.Equal(t, 5*time.Second, p.pollInterval)
	require.Equal(t, 7, p.batchSize)
	require.Equal(t, 9, p.concurrency)
	require.Equal(t, 11*time.Second, p.lease)
	require.Equal(t, int64(13), p.rateLimitPerMinute)
}
