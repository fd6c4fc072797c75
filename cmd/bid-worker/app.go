package main

import (
	"context"
	"fmt"
	"time"

	"github.com/BearBump/BidBox/config"
	"github.com/BearBump/BidBox/internal/broker/kafka"
	"github.com/BearBump/BidBox/internal/cache/rediscache"
	"github.com/BearBump/BidBox/internal/integrations/valuation"
	"github.com/BearBump/BidBox/internal/integrations/valuation/fake"
	"github.com/BearBump/BidBox/internal/integrations/valuation/providerhttp"
	"github.com/BearBump/BidBox/internal/services/valuator"
	"github.com/BearBump/BidBox/internal/storage/pgvehicles"
)

type workerFactories struct {
	newStorage         func(cfg *config.Config) (repo valuator.Repository, closeFn func(), err error)
	newProducer        func(cfg *config.Config) valuator.Producer
	newRateLimiter     func(cfg *config.Config) valuator.RateLimiter
	newValuationClient func(cfg *config.Config) valuation.Client
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (valuator.Repository, func(), error) {
			sslMode := cfg.Database.SSLMode
			if sslMode == "" {
				sslMode = "disable"
			}
			connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
				cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
			st, err := pgvehicles.New(connString)
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newProducer: func(cfg *config.Config) valuator.Producer {
			brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
			return kafka.NewProducer(brokers)
		},
		newRateLimiter: func(cfg *config.Config) valuator.RateLimiter {
			redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
			return rediscache.NewRateLimiter(redisAddr)
		},
		newValuationClient: func(cfg *config.Config) valuation.Client {
			// Talk to a real provider only when explicitly configured;
			// otherwise fall back to the deterministic local fake.
			if cfg.BidBox.ValuationProviderBaseURL != "" && cfg.BidBox.ValuationProviderMode == "http" {
				return providerhttp.New(cfg.BidBox.ValuationProviderBaseURL, cfg.BidBox.ValuationProviderAPIKey)
			}
			return fake.New()
		},
	}
}

func plannerConfigFromCfg(cfg *config.Config) valuator.PlannerConfig {
	return valuator.PlannerConfig{
		NotFoundDelay: time.Duration(cfg.BidBox.WorkerNotFoundDelaySeconds) * time.Second,
		Backoff1:      time.Duration(cfg.BidBox.WorkerBackoff1Seconds) * time.Second,
		Backoff2:      time.Duration(cfg.BidBox.WorkerBackoff2Seconds) * time.Second,
		Backoff3:      time.Duration(cfg.BidBox.WorkerBackoff3Seconds) * time.Second,
		Backoff4:      time.Duration(cfg.BidBox.WorkerBackoff4Seconds) * time.Second,
	}
}

func newBidPoller(cfg *config.Config, f workerFactories) (*valuator.Poller, func(), error) {
	topic := cfg.Kafka.VehicleValuatedTopicName
	if topic == "" {
		topic = "vehicle.valuated"
	}

	pollInterval := time.Duration(cfg.BidBox.WorkerPollIntervalSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	batchSize := cfg.BidBox.WorkerBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	concurrency := cfg.BidBox.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	lease := time.Duration(cfg.BidBox.WorkerLeaseSeconds) * time.Second
	if lease <= 0 {
		lease = 120 * time.Second
	}
	rlPerMin := int64(cfg.BidBox.WorkerRateLimitPerMinute)
	if rlPerMin <= 0 {
		rlPerMin = 120
	}

	repo, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	p := valuator.New(repo, f.newValuationClient(cfg), f.newProducer(cfg), f.newRateLimiter(cfg), topic).
		WithSettings(pollInterval, batchSize, concurrency, lease, rlPerMin).
		WithPlanner(plannerConfigFromCfg(cfg))

	return p, closeFn, nil
}

func RunBidWorker(ctx context.Context, cfg *config.Config, f workerFactories) error {
	p, closeFn, err := newBidPoller(cfg, f)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return p.Run(ctx)
}
