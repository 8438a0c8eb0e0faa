package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-companion/internal/domain/coupons"
)

type couponRepo struct {
	mu   sync.RWMutex
	byID map[string]coupons.Coupon
}

func NewCouponRepo() coupons.Repository {
	return &couponRepo{
		byID: make(map[string]coupons.Coupon),
	}
}

func (r *couponRepo) Create(ctx context.Context, c coupons.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("coupon id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("coupon already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *couponRepo) GetByID(ctx context.Context, id string) (coupons.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return coupons.Coupon{}, coupons.ErrNotFound
	}
	return c, nil
}

func (r *couponRepo) List(ctx context.Context, f coupons.ListFilter) ([]coupons.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]coupons.Coupon, 0)
	for _, c := range r.byID {
		if c.Expired(f.Now) {
			continue
		}
		if f.Owner != "" && c.Owner != f.Owner {
			continue
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *couponRepo) SetRedeemed(ctx context.Context, id string, redeemed bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return coupons.ErrNotFound
	}
	c.Redeemed = redeemed
	c.UpdatedAt = at
	r.byID[id] = c
	return nil
}

func (r *couponRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return coupons.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *couponRepo) Latest(ctx context.Context, f coupons.LatestFilter) (coupons.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner coupons.Coupon
	has := false
	for _, c := range r.byID {
		if !f.Now.IsZero() && c.Expired(f.Now) {
			continue
		}
		if f.Redeemed != nil && c.Redeemed != *f.Redeemed {
			continue
		}
		if !has || c.UpdatedAt.After(winner.UpdatedAt) {
			winner = c
			has = true
		}
	}
	if !has {
		return coupons.Coupon{}, coupons.ErrNotFound
	}
	return winner, nil
}

func (r *couponRepo) Counts(ctx context.Context, now time.Time) (coupons.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out coupons.Counts
	for _, c := range r.byID {
		if c.Expired(now) {
			continue
		}
		out.Total++
		if c.Redeemed {
			out.Redeemed++
		}
	}
	return out, nil
}
