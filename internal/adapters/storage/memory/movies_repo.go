package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-companion/internal/domain/movies"
)

type movieRepo struct {
	mu   sync.RWMutex
	byID map[string]movies.Movie
}

func NewMovieRepo() movies.Repository {
	return &movieRepo{
		byID: make(map[string]movies.Movie),
	}
}

func (r *movieRepo) Create(ctx context.Context, m movies.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("movie id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("movie already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *movieRepo) GetByID(ctx context.Context, id string) (movies.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return movies.Movie{}, movies.ErrNotFound
	}
	return m, nil
}

func (r *movieRepo) List(ctx context.Context, list movies.List) ([]movies.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]movies.Movie, 0)
	for _, m := range r.byID {
		if list == "" || m.List == list {
			out = append(out, m)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *movieRepo) SetWatched(ctx context.Context, id string, watched bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return movies.ErrNotFound
	}
	m.Watched = watched
	m.UpdatedAt = at
	r.byID[id] = m
	return nil
}

func (r *movieRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return movies.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *movieRepo) Latest(ctx context.Context, f movies.LatestFilter) (movies.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner movies.Movie
	has := false
	for _, m := range r.byID {
		if f.Watched != nil && m.Watched != *f.Watched {
			continue
		}
		if !has || m.UpdatedAt.After(winner.UpdatedAt) {
			winner = m
			has = true
		}
	}
	if !has {
		return movies.Movie{}, movies.ErrNotFound
	}
	return winner, nil
}

func (r *movieRepo) Counts(ctx context.Context) (movies.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var c movies.Counts
	for _, m := range r.byID {
		c.Total++
		if m.Watched {
			c.Watched++
		}
	}
	return c, nil
}
