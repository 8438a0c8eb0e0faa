package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pet-companion/internal/domain/coupons"
	"pet-companion/internal/domain/movies"
	"pet-companion/internal/domain/pets"
	"pet-companion/internal/domain/products"
)

type MovieSource interface {
	Counts(ctx context.Context) (movies.Counts, error)
	Latest(ctx context.Context, f movies.LatestFilter) (movies.Movie, error)
}

type CouponSource interface {
	Counts(ctx context.Context) (coupons.Counts, error)
	Latest(ctx context.Context, f coupons.LatestFilter) (coupons.Coupon, error)
}

type ProductSource interface {
	Counts(ctx context.Context) (products.Counts, error)
	Latest(ctx context.Context, f products.LatestFilter) (products.Product, error)
}

// Service mantiene el rollup global. El último cálculo queda cacheado.
type Service struct {
	movies   MovieSource
	coupons  CouponSource
	products ProductSource
	now      func() time.Time

	mu      sync.RWMutex
	current *pets.Rollup
}

func NewService(m MovieSource, c CouponSource, p ProductSource) *Service {
	return &Service{
		movies:   m,
		coupons:  c,
		products: p,
		now:      time.Now,
	}
}

// Recalculate cuenta todo de nuevo y reemplaza el cache.
func (s *Service) Recalculate(ctx context.Context) (pets.Rollup, error) {
	pc, err := s.products.Counts(ctx)
	if err != nil {
		return pets.Rollup{}, fmt.Errorf("count products: %w", err)
	}
	cc, err := s.coupons.Counts(ctx)
	if err != nil {
		return pets.Rollup{}, fmt.Errorf("count coupons: %w", err)
	}
	mc, err := s.movies.Counts(ctx)
	if err != nil {
		return pets.Rollup{}, fmt.Errorf("count movies: %w", err)
	}

	r := pets.Rollup{
		TotalProducts:        pc.Total,
		TotalBought:          pc.Bought,
		TotalLiked:           pc.Liked,
		TotalCoupons:         cc.Total,
		TotalRedeemedCoupons: cc.Redeemed,
		TotalMovies:          mc.Total,
		TotalWatched:         mc.Watched,
		UpdatedAt:            s.now(),
	}

	s.mu.Lock()
	s.current = &r
	s.mu.Unlock()
	return r, nil
}

// Current devuelve el rollup cacheado; si nunca se calculó, lo calcula.
func (s *Service) Current(ctx context.Context) (pets.Rollup, error) {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()

	if cur != nil {
		return *cur, nil
	}
	return s.Recalculate(ctx)
}
