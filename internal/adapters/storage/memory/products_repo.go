package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-companion/internal/domain/products"
)

type productRepo struct {
	mu   sync.RWMutex
	byID map[string]products.Product
}

func NewProductRepo() products.Repository {
	return &productRepo{
		byID: make(map[string]products.Product),
	}
}

func (r *productRepo) Create(ctx context.Context, p products.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("product id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("product already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id string) (products.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return products.Product{}, products.ErrNotFound
	}
	return p, nil
}

func (r *productRepo) List(ctx context.Context) ([]products.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]products.Product, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *productRepo) Update(ctx context.Context, p products.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[p.ID]; !ok {
		return products.ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return products.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *productRepo) Latest(ctx context.Context, f products.LatestFilter) (products.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner products.Product
	has := false
	for _, p := range r.byID {
		if f.Bought != nil && p.Bought != *f.Bought {
			continue
		}
		if f.LikeBoth != nil && p.LikeBoth != *f.LikeBoth {
			continue
		}
		if f.Liked != nil && (p.LikeNico || p.LikeBarbara) != *f.Liked {
			continue
		}
		if !has || p.UpdatedAt.After(winner.UpdatedAt) {
			winner = p
			has = true
		}
	}
	if !has {
		return products.Product{}, products.ErrNotFound
	}
	return winner, nil
}

func (r *productRepo) Counts(ctx context.Context) (products.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var c products.Counts
	for _, p := range r.byID {
		c.Total++
		if p.Bought {
			c.Bought++
		}
		if p.LikeBoth {
			c.Liked++
		}
	}
	return c, nil
}
