package movies

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-companion/internal/domain/pets"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Movie
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Movie{}}
}

func (r *testRepo) Create(ctx context.Context, m Movie) error {
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Movie, error) {
	m, ok := r.byID[id]
	if !ok {
		return Movie{}, ErrNotFound
	}
	return m, nil
}

func (r *testRepo) List(ctx context.Context, list List) ([]Movie, error) {
	out := make([]Movie, 0)
	for _, m := range r.byID {
		if list == "" || m.List == list {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) SetWatched(ctx context.Context, id string, watched bool, at time.Time) error {
	m, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	m.Watched = watched
	m.UpdatedAt = at
	r.byID[id] = m
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) Latest(ctx context.Context, f LatestFilter) (Movie, error) {
	return Movie{}, ErrNotFound
}

func (r *testRepo) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	for _, m := range r.byID {
		c.Total++
		if m.Watched {
			c.Watched++
		}
	}
	return c, nil
}

type testEmitter struct {
	got []pets.InteractionType
}

func (e *testEmitter) Emit(ctx context.Context, t pets.InteractionType) {
	e.got = append(e.got, t)
}

func newTestService() (*Service, *testRepo, *testEmitter) {
	repo := newTestRepo()
	em := &testEmitter{}
	svc := NewService(repo, em)
	svc.now = func() time.Time { return time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC) }
	return svc, repo, em
}

// -------------------------
// Tests
// -------------------------

func TestCreate_EmitsAddMovie(t *testing.T) {
	svc, repo, em := newTestService()

	m, err := svc.Create(context.Background(), CreateInput{Title: " Amélie ", APIID: "194", List: ListTogether})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if m.ID == "" || m.Title != "Amélie" || m.Watched {
		t.Fatalf("unexpected movie %#v", m)
	}
	if _, ok := repo.byID[m.ID]; !ok {
		t.Fatalf("expected movie stored")
	}
	if len(em.got) != 1 || em.got[0] != pets.InteractionAddMovie {
		t.Fatalf("expected addMovie emitted, got %v", em.got)
	}
}

func TestCreate_InvalidInput(t *testing.T) {
	svc, _, em := newTestService()

	cases := []CreateInput{
		{Title: "", APIID: "1", List: ListNico},
		{Title: "X", APIID: " ", List: ListNico},
		{Title: "X", APIID: "1", List: "Dani"},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%#v: expected ErrInvalidInput, got %v", in, err)
		}
	}
	if len(em.got) != 0 {
		t.Fatalf("invalid input must not emit")
	}
}

func TestSetWatched_EmitsOnlyOnTransition(t *testing.T) {
	svc, _, em := newTestService()
	m, _ := svc.Create(context.Background(), CreateInput{Title: "Up", APIID: "14160", List: ListBarbara})
	em.got = nil

	if _, err := svc.SetWatched(context.Background(), m.ID, true); err != nil {
		t.Fatalf("SetWatched error: %v", err)
	}
	// repetido: sin cambio, sin evento
	if _, err := svc.SetWatched(context.Background(), m.ID, true); err != nil {
		t.Fatalf("SetWatched #2 error: %v", err)
	}
	got, err := svc.SetWatched(context.Background(), m.ID, false)
	if err != nil {
		t.Fatalf("SetWatched(false) error: %v", err)
	}
	if got.Watched {
		t.Fatalf("expected unwatched")
	}

	if len(em.got) != 1 || em.got[0] != pets.InteractionMarkWatched {
		t.Fatalf("expected exactly one markWatched, got %v", em.got)
	}
}

func TestSetWatched_NotFound(t *testing.T) {
	svc, _, em := newTestService()
	if _, err := svc.SetWatched(context.Background(), "missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(em.got) != 0 {
		t.Fatalf("expected no events")
	}
}

func TestDelete_EmitsDeleteMovie(t *testing.T) {
	svc, repo, em := newTestService()
	m, _ := svc.Create(context.Background(), CreateInput{Title: "Coco", APIID: "354912", List: ListNico})
	em.got = nil

	if err := svc.Delete(context.Background(), m.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("expected movie removed")
	}
	if len(em.got) != 1 || em.got[0] != pets.InteractionDeleteMovie {
		t.Fatalf("expected deleteMovie emitted, got %v", em.got)
	}

	if err := svc.Delete(context.Background(), m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if len(em.got) != 1 {
		t.Fatalf("failed delete must not emit")
	}
}

func TestList_FilterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	_, _ = svc.Create(context.Background(), CreateInput{Title: "A", APIID: "1", List: ListNico})
	_, _ = svc.Create(context.Background(), CreateInput{Title: "B", APIID: "2", List: ListBarbara})

	all, err := svc.List(context.Background(), "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 movies, got %d (%v)", len(all), err)
	}
	nico, _ := svc.List(context.Background(), ListNico)
	if len(nico) != 1 || nico[0].Title != "A" {
		t.Fatalf("unexpected filtered list %#v", nico)
	}
	if _, err := svc.List(context.Background(), "Otro"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown list")
	}
}
