package products

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	Create(ctx context.Context, p Product) error
	GetByID(ctx context.Context, id string) (Product, error)
	// List ordena por created_at desc.
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error

	Latest(ctx context.Context, f LatestFilter) (Product, error)
	Counts(ctx context.Context) (Counts, error)
}

// LatestFilter: campos nil no filtran.
type LatestFilter struct {
	Bought   *bool
	LikeBoth *bool
	// Liked: le gustó al menos a uno.
	Liked *bool
}
