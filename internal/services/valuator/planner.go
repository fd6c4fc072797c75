package valuator

import "time"

type PlannerConfig struct {
	ValuedDelay time.Duration // default: 365 days

	NotFoundDelay time.Duration // default: 24 hours

	Backoff1 time.Duration // default: 5 minutes
	Backoff2 time.Duration // default: 15 minutes
	Backoff3 time.Duration // default: 30 minutes
	Backoff4 time.Duration // default: 60 minutes
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		// A valued vehicle drops out of the claim query anyway; the delay only
		// matters if the valuation is ever cleared.
		ValuedDelay: 365 * 24 * time.Hour,

		// Providers pick up freshly registered plates within a day or so.
		NotFoundDelay: 24 * time.Hour,

		Backoff1: 5 * time.Minute,
		Backoff2: 15 * time.Minute,
		Backoff3: 30 * time.Minute,
		Backoff4: 60 * time.Minute,
	}
}

type Planner struct {
	cfg PlannerConfig
}

func NewPlanner(cfg PlannerConfig) *Planner {
	def := DefaultPlannerConfig()
	if cfg.ValuedDelay <= 0 {
		cfg.ValuedDelay = def.ValuedDelay
	}
	if cfg.NotFoundDelay <= 0 {
		cfg.NotFoundDelay = def.NotFoundDelay
	}
	if cfg.Backoff1 <= 0 {
		cfg.Backoff1 = def.Backoff1
	}
	if cfg.Backoff2 <= 0 {
		cfg.Backoff2 = def.Backoff2
	}
	if cfg.Backoff3 <= 0 {
		cfg.Backoff3 = def.Backoff3
	}
	if cfg.Backoff4 <= 0 {
		cfg.Backoff4 = def.Backoff4
	}
	return &Planner{cfg: cfg}
}

// NextCheckDelay plans the re-check after a successful provider call.
func (p *Planner) NextCheckDelay(found bool) time.Duration {
	if found {
		return p.cfg.ValuedDelay
	}
	return p.cfg.NotFoundDelay
}

// BackoffDelay plans the retry after a provider failure.
func (p *Planner) BackoffDelay(nextFailCount int32) time.Duration {
	switch {
	case nextFailCount <= 1:
		return p.cfg.Backoff1
	case nextFailCount == 2:
		return p.cfg.Backoff2
	case nextFailCount == 3:
		return p.cfg.Backoff3
	default:
		return p.cfg.Backoff4
	}
}
