package coupons

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("coupon not found")

type Repository interface {
	Create(ctx context.Context, c Coupon) error
	GetByID(ctx context.Context, id string) (Coupon, error)
	// List excluye vencidos a filter.Now. Orden: created_at desc.
	List(ctx context.Context, filter ListFilter) ([]Coupon, error)
	SetRedeemed(ctx context.Context, id string, redeemed bool, at time.Time) error
	Delete(ctx context.Context, id string) error

	Latest(ctx context.Context, f LatestFilter) (Coupon, error)
	// Counts no incluye vencidos.
	Counts(ctx context.Context, now time.Time) (Counts, error)
}

type ListFilter struct {
	Owner Owner // vacío => todos
	Now   time.Time
}

type LatestFilter struct {
	Redeemed *bool
	Now      time.Time
}
