package stats

import (
	"context"
	"errors"
	"fmt"

	"pet-companion/internal/domain/coupons"
	"pet-companion/internal/domain/movies"
	"pet-companion/internal/domain/pets"
	"pet-companion/internal/domain/products"
	"pet-companion/internal/platform/logger"
)

type factFunc func(ctx context.Context) (string, error)

// Resolver implementa pets.ContextResolver con una tabla tipo -> consulta.
// Nunca falla: errores y colecciones vacías devuelven "" / nil.
type Resolver struct {
	stats *Service
	facts map[pets.InteractionType]factFunc
	log   logger.Logger
}

func NewResolver(stats *Service, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	r := &Resolver{
		stats: stats,
		log:   log.With(map[string]any{"component": "context-resolver"}),
	}
	r.facts = map[pets.InteractionType]factFunc{
		pets.InteractionAddMovie:     r.latestMovie,
		pets.InteractionMarkWatched:  r.latestWatched,
		pets.InteractionDeleteMovie:  r.remainingMovies,
		pets.InteractionAddProduct:   r.latestProduct,
		pets.InteractionBuyProduct:   r.latestBought,
		pets.InteractionLikeOne:      r.latestLiked,
		pets.InteractionLikeBoth:     r.latestLikedBoth,
		pets.InteractionAddCoupon:    r.latestCoupon,
		pets.InteractionRedeemCoupon: r.latestRedeemed,
	}
	return r
}

func (r *Resolver) Latest(ctx context.Context, t pets.InteractionType) string {
	fn, ok := r.facts[t]
	if !ok {
		return ""
	}
	s, err := fn(ctx)
	if err != nil {
		if !isNotFound(err) {
			r.log.Warn("context lookup failed", map[string]any{"type": string(t), "err": err})
		}
		return ""
	}
	return s
}

func (r *Resolver) Rollup(ctx context.Context) *pets.Rollup {
	cur, err := r.stats.Current(ctx)
	if err != nil {
		r.log.Warn("rollup unavailable", map[string]any{"err": err})
		return nil
	}
	return &cur
}

func isNotFound(err error) bool {
	return errors.Is(err, movies.ErrNotFound) ||
		errors.Is(err, coupons.ErrNotFound) ||
		errors.Is(err, products.ErrNotFound)
}

func truePtr() *bool {
	b := true
	return &b
}

// -------------------------
// movies
// -------------------------

func (r *Resolver) latestMovie(ctx context.Context) (string, error) {
	m, err := r.stats.movies.Latest(ctx, movies.LatestFilter{})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("se agregó la película %q a la lista %s", m.Title, m.List), nil
}

func (r *Resolver) latestWatched(ctx context.Context) (string, error) {
	m, err := r.stats.movies.Latest(ctx, movies.LatestFilter{Watched: truePtr()})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("vieron la película %q", m.Title), nil
}

func (r *Resolver) remainingMovies(ctx context.Context) (string, error) {
	c, err := r.stats.movies.Counts(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("se eliminó una película, quedan %d en las listas", c.Total), nil
}

// -------------------------
// products
// -------------------------

func (r *Resolver) latestProduct(ctx context.Context) (string, error) {
	p, err := r.stats.products.Latest(ctx, products.LatestFilter{})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("se agregó %q a la lista de deseos", p.Name), nil
}

func (r *Resolver) latestBought(ctx context.Context) (string, error) {
	p, err := r.stats.products.Latest(ctx, products.LatestFilter{Bought: truePtr()})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("se compró %q", p.Name), nil
}

func (r *Resolver) latestLiked(ctx context.Context) (string, error) {
	p, err := r.stats.products.Latest(ctx, products.LatestFilter{Liked: truePtr()})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("a alguien le gustó %q", p.Name), nil
}

func (r *Resolver) latestLikedBoth(ctx context.Context) (string, error) {
	p, err := r.stats.products.Latest(ctx, products.LatestFilter{LikeBoth: truePtr()})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("a los dos les gustó %q", p.Name), nil
}

// -------------------------
// coupons
// -------------------------

func (r *Resolver) latestCoupon(ctx context.Context) (string, error) {
	c, err := r.stats.coupons.Latest(ctx, coupons.LatestFilter{})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("se creó el cupón %q para %s", c.Title, c.Owner), nil
}

// Los cupones de un solo uso se borran al canjear: sin registro => "".
func (r *Resolver) latestRedeemed(ctx context.Context) (string, error) {
	c, err := r.stats.coupons.Latest(ctx, coupons.LatestFilter{Redeemed: truePtr()})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("se canjeó el cupón %q", c.Title), nil
}
