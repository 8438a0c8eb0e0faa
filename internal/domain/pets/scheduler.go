package pets

import (
	"context"
	"time"

	"pet-companion/internal/platform/logger"
)

const DefaultDecayInterval = time.Hour

type decayer interface {
	DecayTick(ctx context.Context) (Pet, bool, error)
}

// DecayScheduler dispara DecayTick una vez por período.
// Se arranca una sola vez (supervisor) y termina cuando se cancela ctx.
type DecayScheduler struct {
	engine decayer
	period time.Duration
	log    logger.Logger

	// newTicker se reemplaza en tests para no depender del reloj.
	newTicker func(d time.Duration) (<-chan time.Time, func())
}

func NewDecayScheduler(engine decayer, period time.Duration, log logger.Logger) *DecayScheduler {
	if period <= 0 {
		period = DefaultDecayInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DecayScheduler{
		engine: engine,
		period: period,
		log:    log.With(map[string]any{"component": "decay-scheduler"}),
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Serve implementa suture.Service.
func (s *DecayScheduler) Serve(ctx context.Context) error {
	ticks, stop := s.newTicker(s.period)
	defer stop()

	s.log.Info("decay scheduler started", map[string]any{"period": s.period.String()})
	for {
		select {
		case <-ctx.Done():
			s.log.Info("decay scheduler stopped", nil)
			return ctx.Err()
		case <-ticks:
			// Los ticks corren en línea: nunca se solapan.
			s.tick(ctx)
		}
	}
}

func (s *DecayScheduler) tick(ctx context.Context) {
	p, applied, err := s.engine.DecayTick(ctx)
	if err != nil {
		s.log.Error("decay tick failed", map[string]any{"err": err})
		return
	}
	if applied {
		s.log.Debug("decay tick applied", map[string]any{"pet_id": p.ID})
	}
}

func (s *DecayScheduler) String() string { return "decay-scheduler" }
