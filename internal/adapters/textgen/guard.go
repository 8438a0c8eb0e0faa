// Package textgen arma el generador de mensajes según el provider configurado.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-companion/internal/domain/pets"
	"pet-companion/internal/platform/logger"
	"pet-companion/internal/platform/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

var (
	ErrBreakerOpen     = errors.New("textgen: circuit open")
	ErrRateLimited     = errors.New("textgen: rate limited")
	ErrUnknownProvider = errors.New("textgen: unknown provider")
)

type GuardOptions struct {
	RequestsPerMin   int
	BreakerFailures  int
	BreakerOpenAfter time.Duration
	Logger           logger.Logger
}

// Guarded protege un backend con rate limit local y circuit breaker.
// Con el breaker abierto falla rápido: el motor conserva el mensaje anterior.
type Guarded struct {
	next     pets.TextGenerator
	provider string
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[string]
	log      logger.Logger
}

func NewGuarded(provider string, next pets.TextGenerator, opts GuardOptions) *Guarded {
	if opts.RequestsPerMin <= 0 {
		opts.RequestsPerMin = 30
	}
	if opts.BreakerFailures <= 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerOpenAfter <= 0 {
		opts.BreakerOpenAfter = time.Minute
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(map[string]any{"component": "textgen", "provider": provider})

	failures := uint32(opts.BreakerFailures)
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "textgen-" + provider,
		MaxRequests: 1,
		Timeout:     opts.BreakerOpenAfter,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	perSecond := rate.Limit(float64(opts.RequestsPerMin) / 60.0)
	return &Guarded{
		next:     next,
		provider: provider,
		limiter:  rate.NewLimiter(perSecond, 1+opts.RequestsPerMin/10),
		cb:       cb,
		log:      log,
	}
}

func (g *Guarded) GenerateText(ctx context.Context, req pets.TextRequest) (string, error) {
	// Espera el turno dentro del timeout del mensaje; si no alcanza, falla.
	if err := g.limiter.Wait(ctx); err != nil {
		metrics.TextGenRequests.WithLabelValues(g.provider, "rate_limited").Inc()
		return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	text, err := g.cb.Execute(func() (string, error) {
		return g.next.GenerateText(ctx, req)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.TextGenRequests.WithLabelValues(g.provider, "breaker_open").Inc()
		return "", ErrBreakerOpen
	case err != nil:
		metrics.TextGenRequests.WithLabelValues(g.provider, "error").Inc()
		g.log.Debug("text generation failed", map[string]any{"err": err})
		return "", err
	}

	metrics.TextGenRequests.WithLabelValues(g.provider, "ok").Inc()
	return text, nil
}

// State expone el estado del breaker (closed, half-open, open).
func (g *Guarded) State() string {
	return g.cb.State().String()
}
