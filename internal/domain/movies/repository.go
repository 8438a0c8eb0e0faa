package movies

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("movie not found")

type Repository interface {
	Create(ctx context.Context, m Movie) error
	GetByID(ctx context.Context, id string) (Movie, error)
	// List filtra por lista; list vacío => todas. Orden: created_at desc.
	List(ctx context.Context, list List) ([]Movie, error)
	SetWatched(ctx context.Context, id string, watched bool, at time.Time) error
	Delete(ctx context.Context, id string) error

	// Latest devuelve la película con updated_at más reciente que cumple el filtro.
	Latest(ctx context.Context, f LatestFilter) (Movie, error)
	Counts(ctx context.Context) (Counts, error)
}

type LatestFilter struct {
	Watched *bool
}
