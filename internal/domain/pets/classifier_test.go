package pets

import "testing"

func TestClassify_Table(t *testing.T) {
	cases := map[InteractionType]Delta{
		InteractionAddMovie:     {Curiosity: 10},
		InteractionMarkWatched:  {Happiness: 15},
		InteractionDeleteMovie:  {Curiosity: -5},
		InteractionAddProduct:   {Curiosity: 8},
		InteractionBuyProduct:   {Happiness: 12},
		InteractionLikeOne:      {Energy: 5},
		InteractionLikeBoth:     {Happiness: 20},
		InteractionAddCoupon:    {Curiosity: 7},
		InteractionRedeemCoupon: {Happiness: 18},
	}
	for it, want := range cases {
		if got := Classify(it); got != want {
			t.Fatalf("%s: expected %#v, got %#v", it, want, got)
		}
		if !it.Known() {
			t.Fatalf("%s should be known", it)
		}
	}
	if len(InteractionTypes()) != len(cases) {
		t.Fatalf("expected %d interaction types, got %d", len(cases), len(InteractionTypes()))
	}
}

func TestClassify_UnknownIsZero(t *testing.T) {
	for _, it := range []InteractionType{"", "hugCarrot", "ADDMOVIE "} {
		if d := Classify(it); !d.IsZero() {
			t.Fatalf("%q: expected zero delta, got %#v", it, d)
		}
		if it.Known() {
			t.Fatalf("%q should not be known", it)
		}
	}
}

func TestParseInteractionType(t *testing.T) {
	if got := ParseInteractionType(" addmovie "); got != InteractionAddMovie {
		t.Fatalf("expected addMovie, got %q", got)
	}
	if got := ParseInteractionType("REDEEMCOUPON"); got != InteractionRedeemCoupon {
		t.Fatalf("expected redeemCoupon, got %q", got)
	}
	if got := ParseInteractionType("feedCarrot"); got != "feedCarrot" {
		t.Fatalf("expected raw value, got %q", got)
	}
}

func TestStatsApply_Clamps(t *testing.T) {
	s := Stats{Happiness: 98, Energy: 2, Curiosity: 50}
	got := s.Apply(Delta{Happiness: 20, Energy: -10, Curiosity: 0})
	if got != (Stats{Happiness: 100, Energy: 0, Curiosity: 50}) {
		t.Fatalf("unexpected clamp result %#v", got)
	}
}

func TestRollupSummary(t *testing.T) {
	r := Rollup{TotalProducts: 4, TotalBought: 2, TotalLiked: 1, TotalCoupons: 3, TotalRedeemedCoupons: 1, TotalMovies: 5, TotalWatched: 2}
	want := "En total hay 4 productos (2 comprados, 1 favoritos de ambos), 3 cupones (1 canjeados) y 5 películas (2 vistas)."
	if got := r.Summary(); got != want {
		t.Fatalf("unexpected summary:\n%s\n%s", got, want)
	}
}
