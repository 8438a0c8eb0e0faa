package stats

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pet-companion/internal/domain/coupons"
	"pet-companion/internal/domain/movies"
	"pet-companion/internal/domain/pets"
	"pet-companion/internal/domain/products"
)

// -------------------------
// Test sources
// -------------------------

type testMovies struct {
	counts  movies.Counts
	latest  map[bool]movies.Movie // key: filtro watched
	err     error
	countCB func()
}

func (m *testMovies) Counts(ctx context.Context) (movies.Counts, error) {
	if m.countCB != nil {
		m.countCB()
	}
	return m.counts, m.err
}

func (m *testMovies) Latest(ctx context.Context, f movies.LatestFilter) (movies.Movie, error) {
	if m.err != nil {
		return movies.Movie{}, m.err
	}
	mv, ok := m.latest[f.Watched != nil]
	if !ok {
		return movies.Movie{}, movies.ErrNotFound
	}
	return mv, nil
}

type testCoupons struct {
	counts coupons.Counts
	latest *coupons.Coupon
}

func (c *testCoupons) Counts(ctx context.Context) (coupons.Counts, error) { return c.counts, nil }

func (c *testCoupons) Latest(ctx context.Context, f coupons.LatestFilter) (coupons.Coupon, error) {
	if c.latest == nil {
		return coupons.Coupon{}, coupons.ErrNotFound
	}
	if f.Redeemed != nil && c.latest.Redeemed != *f.Redeemed {
		return coupons.Coupon{}, coupons.ErrNotFound
	}
	return *c.latest, nil
}

type testProducts struct {
	counts  products.Counts
	latest  products.Product
	filters []products.LatestFilter
}

func (p *testProducts) Counts(ctx context.Context) (products.Counts, error) { return p.counts, nil }

func (p *testProducts) Latest(ctx context.Context, f products.LatestFilter) (products.Product, error) {
	p.filters = append(p.filters, f)
	return p.latest, nil
}

var testNow = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

func newTestStats(m *testMovies, c *testCoupons, p *testProducts) *Service {
	svc := NewService(m, c, p)
	svc.now = func() time.Time { return testNow }
	return svc
}

// -------------------------
// Service
// -------------------------

func TestRecalculate_Totals(t *testing.T) {
	svc := newTestStats(
		&testMovies{counts: movies.Counts{Total: 5, Watched: 2}},
		&testCoupons{counts: coupons.Counts{Total: 3, Redeemed: 1}},
		&testProducts{counts: products.Counts{Total: 4, Bought: 2, Liked: 1}},
	)

	r, err := svc.Recalculate(context.Background())
	if err != nil {
		t.Fatalf("Recalculate error: %v", err)
	}
	want := pets.Rollup{
		TotalProducts: 4, TotalBought: 2, TotalLiked: 1,
		TotalCoupons: 3, TotalRedeemedCoupons: 1,
		TotalMovies: 5, TotalWatched: 2,
		UpdatedAt: testNow,
	}
	if r != want {
		t.Fatalf("expected %#v, got %#v", want, r)
	}
}

func TestCurrent_UsesCache(t *testing.T) {
	calls := 0
	m := &testMovies{countCB: func() { calls++ }}
	svc := newTestStats(m, &testCoupons{}, &testProducts{})

	for i := 0; i < 3; i++ {
		if _, err := svc.Current(context.Background()); err != nil {
			t.Fatalf("Current error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single computation, got %d", calls)
	}
}

func TestRecalculate_Error(t *testing.T) {
	boom := errors.New("db down")
	svc := newTestStats(&testMovies{err: boom}, &testCoupons{}, &testProducts{})
	if _, err := svc.Recalculate(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

// -------------------------
// Resolver
// -------------------------

func TestResolver_Latest(t *testing.T) {
	svc := newTestStats(
		&testMovies{
			counts: movies.Counts{Total: 2},
			latest: map[bool]movies.Movie{
				false: {Title: "Coco", List: movies.ListTogether},
				true:  {Title: "Up"},
			},
		},
		&testCoupons{latest: &coupons.Coupon{Title: "Cena", Owner: coupons.OwnerNico}},
		&testProducts{latest: products.Product{Name: "Taza"}},
	)
	r := NewResolver(svc, nil)

	cases := map[pets.InteractionType]string{
		pets.InteractionAddMovie:    `"Coco" a la lista Juntos`,
		pets.InteractionMarkWatched: `"Up"`,
		pets.InteractionDeleteMovie: "quedan 2",
		pets.InteractionBuyProduct:  `"Taza"`,
		pets.InteractionAddCoupon:   `"Cena" para Nico`,
	}
	for it, want := range cases {
		if got := r.Latest(context.Background(), it); !strings.Contains(got, want) {
			t.Fatalf("%s: expected %q in %q", it, want, got)
		}
	}
}

func TestResolver_LikeOneAsksForLikedProduct(t *testing.T) {
	prods := &testProducts{latest: products.Product{Name: "Taza", LikeNico: true}}
	r := NewResolver(newTestStats(&testMovies{}, &testCoupons{}, prods), nil)

	got := r.Latest(context.Background(), pets.InteractionLikeOne)
	if !strings.Contains(got, `"Taza"`) {
		t.Fatalf("unexpected fact %q", got)
	}
	if len(prods.filters) != 1 {
		t.Fatalf("expected one lookup, got %d", len(prods.filters))
	}
	f := prods.filters[0]
	if f.Liked == nil || !*f.Liked || f.LikeBoth != nil || f.Bought != nil {
		t.Fatalf("expected Liked=true filter only, got %#v", f)
	}
}

func TestResolver_DegradesToEmpty(t *testing.T) {
	svc := newTestStats(
		&testMovies{err: errors.New("db down")},
		&testCoupons{},
		&testProducts{},
	)
	r := NewResolver(svc, nil)

	if got := r.Latest(context.Background(), pets.InteractionAddMovie); got != "" {
		t.Fatalf("expected empty on error, got %q", got)
	}
	// cupón de un solo uso ya borrado
	if got := r.Latest(context.Background(), pets.InteractionRedeemCoupon); got != "" {
		t.Fatalf("expected empty on missing coupon, got %q", got)
	}
	if got := r.Latest(context.Background(), "hugCarrot"); got != "" {
		t.Fatalf("expected empty for unknown type, got %q", got)
	}
	if roll := r.Rollup(context.Background()); roll != nil {
		t.Fatalf("expected nil rollup when counts fail")
	}
}

// -------------------------
// Refresher
// -------------------------

func TestRefresher_RefreshesOnStartAndTick(t *testing.T) {
	calls := make(chan struct{}, 4)
	m := &testMovies{countCB: func() { calls <- struct{}{} }}
	svc := newTestStats(m, &testCoupons{}, &testProducts{})

	ref := NewRefresher(svc, time.Minute, nil)
	ticks := make(chan time.Time)
	ref.newTicker = func(time.Duration) (<-chan time.Time, func()) { return ticks, func() {} }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ref.Serve(ctx) }()

	<-calls
	ticks <- testNow
	<-calls

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
}
