package stats

import (
	"context"
	"time"

	"pet-companion/internal/platform/logger"
)

const DefaultRefreshInterval = 5 * time.Minute

// Refresher recalcula el rollup al arrancar y luego cada período.
type Refresher struct {
	svc    *Service
	period time.Duration
	log    logger.Logger

	newTicker func(d time.Duration) (<-chan time.Time, func())
}

func NewRefresher(svc *Service, period time.Duration, log logger.Logger) *Refresher {
	if period <= 0 {
		period = DefaultRefreshInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Refresher{
		svc:    svc,
		period: period,
		log:    log.With(map[string]any{"component": "stats-refresher"}),
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Serve implementa suture.Service.
func (r *Refresher) Serve(ctx context.Context) error {
	ticks, stop := r.newTicker(r.period)
	defer stop()

	r.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	roll, err := r.svc.Recalculate(ctx)
	if err != nil {
		r.log.Error("stats refresh failed", map[string]any{"err": err})
		return
	}
	r.log.Debug("stats refreshed", map[string]any{
		"products": roll.TotalProducts,
		"coupons":  roll.TotalCoupons,
		"movies":   roll.TotalMovies,
	})
}

func (r *Refresher) String() string { return "stats-refresher" }
