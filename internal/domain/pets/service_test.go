package pets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// -------------------------
// Test doubles
// -------------------------

type testRepo struct {
	mu  sync.Mutex
	pet *Pet

	creates      int
	statsWrites  int
	messageWrite int

	failStats   error
	failMessage error
}

func (r *testRepo) Get(ctx context.Context) (Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pet == nil {
		return Pet{}, ErrNotFound
	}
	return *r.pet, nil
}

func (r *testRepo) Create(ctx context.Context, p Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pet != nil {
		return errors.New("repo: already exists")
	}
	r.creates++
	cp := p
	r.pet = &cp
	return nil
}

func (r *testRepo) SaveStats(ctx context.Context, p Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failStats != nil {
		return r.failStats
	}
	r.statsWrites++
	msg := r.pet.LastMessage
	cp := p
	cp.LastMessage = msg
	r.pet = &cp
	return nil
}

func (r *testRepo) SaveMessage(ctx context.Context, id, msg string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMessage != nil {
		return r.failMessage
	}
	r.messageWrite++
	r.pet.LastMessage = msg
	r.pet.UpdatedAt = at
	return nil
}

func (r *testRepo) seed(p Pet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pet = &p
}

type testMessages struct {
	mu    sync.Mutex
	calls []MessageInput
	err   error
	block bool
}

func (m *testMessages) Generate(ctx context.Context, in MessageInput) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, in)
	err, block := m.err, m.block
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return "hola", nil
}

func (m *testMessages) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type testSink struct {
	mu   sync.Mutex
	pets []Pet
}

func (s *testSink) Broadcast(p Pet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pets = append(s.pets, p)
}

func (s *testSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pets)
}

type testResolver struct {
	latest map[InteractionType]string
	rollup *Rollup
}

func (r testResolver) Latest(ctx context.Context, t InteractionType) string { return r.latest[t] }
func (r testResolver) Rollup(ctx context.Context) *Rollup                 { return r.rollup }

var baseTime = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

func newTestService(repo *testRepo, msgs *testMessages, sink *testSink) *Service {
	svc := NewService(repo, Options{
		Name:           "Rabanito",
		MessageTimeout: 50 * time.Millisecond,
		Messages:       msgs,
		Broadcaster:    sink,
	})
	svc.now = func() time.Time { return baseTime }
	return svc
}

func seededPet(stats Stats, last time.Time) Pet {
	return Pet{
		ID:                "pet-1",
		Name:              "Rabanito",
		Stats:             stats,
		LastInteractionAt: last,
		LastMessage:       "mensaje previo",
		CreatedAt:         last,
		UpdatedAt:         last,
	}
}

// -------------------------
// Get / lifecycle
// -------------------------

func TestService_Get_CreatesWithDefaults(t *testing.T) {
	repo := &testRepo{}
	msgs := &testMessages{}
	sink := &testSink{}
	svc := newTestService(repo, msgs, sink)

	p, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if p.Name != "Rabanito" || p.Stats != DefaultStats() {
		t.Fatalf("unexpected defaults: %#v", p)
	}
	if p.LastInteractionType != nil {
		t.Fatalf("expected nil last interaction type")
	}
	if p.LastMessage != "hola" {
		t.Fatalf("expected initial message, got %q", p.LastMessage)
	}
	if msgs.count() != 1 || sink.count() != 1 {
		t.Fatalf("expected 1 message and 1 broadcast on creation, got %d/%d", msgs.count(), sink.count())
	}

	// Segundo Get no crea ni regenera.
	if _, err := svc.Get(context.Background()); err != nil {
		t.Fatalf("Get #2 error: %v", err)
	}
	if repo.creates != 1 || msgs.count() != 1 {
		t.Fatalf("expected no regeneration on read, creates=%d messages=%d", repo.creates, msgs.count())
	}
}

func TestService_Get_ConcurrentCreatesOnce(t *testing.T) {
	repo := &testRepo{}
	svc := newTestService(repo, &testMessages{}, &testSink{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Get(context.Background()); err != nil {
				t.Errorf("Get error: %v", err)
			}
		}()
	}
	wg.Wait()

	if repo.creates != 1 {
		t.Fatalf("expected exactly 1 create, got %d", repo.creates)
	}
}

// -------------------------
// HandleInteraction
// -------------------------

func TestService_HandleInteraction_AddCouponOnFreshPet(t *testing.T) {
	repo := &testRepo{}
	sink := &testSink{}
	svc := newTestService(repo, &testMessages{}, sink)

	p, err := svc.HandleInteraction(context.Background(), InteractionAddCoupon)
	if err != nil {
		t.Fatalf("HandleInteraction error: %v", err)
	}
	if p.Curiosity != 57 || p.Happiness != 50 || p.Energy != 80 {
		t.Fatalf("unexpected stats %#v", p.Stats)
	}
	if p.LastInteractionType == nil || *p.LastInteractionType != InteractionAddCoupon {
		t.Fatalf("expected lastInteractionType addCoupon, got %v", p.LastInteractionType)
	}
	if !p.LastInteractionAt.Equal(baseTime) {
		t.Fatalf("expected lastInteractionAt=now")
	}

	stored, _ := repo.Get(context.Background())
	if stored.Curiosity != 57 || stored.LastMessage != "hola" {
		t.Fatalf("expected persisted stats and message, got %#v", stored)
	}
	// creación + interacción
	if sink.count() != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", sink.count())
	}
	last := sink.pets[len(sink.pets)-1]
	if last.Curiosity != 57 || last.LastMessage != "hola" {
		t.Fatalf("broadcast must carry the full updated record, got %#v", last)
	}
}

func TestService_HandleInteraction_ClampsAtMax(t *testing.T) {
	repo := &testRepo{}
	repo.seed(seededPet(Stats{Happiness: 95, Energy: 80, Curiosity: 50}, baseTime))
	svc := newTestService(repo, &testMessages{}, &testSink{})

	p, err := svc.HandleInteraction(context.Background(), InteractionLikeBoth)
	if err != nil {
		t.Fatalf("HandleInteraction error: %v", err)
	}
	if p.Happiness != 100 {
		t.Fatalf("expected happiness clamped to 100, got %d", p.Happiness)
	}
}

func TestService_HandleInteraction_StatsStayInRangeOverSequences(t *testing.T) {
	repo := &testRepo{}
	svc := newTestService(repo, &testMessages{}, &testSink{})

	seq := append(InteractionTypes(), "mystery")
	for round := 0; round < 12; round++ {
		for _, it := range seq {
			p, err := svc.HandleInteraction(context.Background(), it)
			if err != nil {
				t.Fatalf("HandleInteraction error: %v", err)
			}
			assertInRange(t, p.Stats)
		}
		for i := 0; i < 10; i++ {
			p, err := svc.HandleInteraction(context.Background(), InteractionDeleteMovie)
			if err != nil {
				t.Fatalf("HandleInteraction error: %v", err)
			}
			assertInRange(t, p.Stats)
		}
	}
}

func TestService_HandleInteraction_UnknownTypeStillNotifies(t *testing.T) {
	repo := &testRepo{}
	start := Stats{Happiness: 40, Energy: 41, Curiosity: 42}
	repo.seed(seededPet(start, baseTime.Add(-time.Hour)))
	msgs := &testMessages{}
	sink := &testSink{}
	svc := newTestService(repo, msgs, sink)

	p, err := svc.HandleInteraction(context.Background(), InteractionType("hugCarrot"))
	if err != nil {
		t.Fatalf("HandleInteraction error: %v", err)
	}
	if p.Stats != start {
		t.Fatalf("expected unchanged stats, got %#v", p.Stats)
	}
	if msgs.count() != 1 || sink.count() != 1 {
		t.Fatalf("expected message + broadcast, got %d/%d", msgs.count(), sink.count())
	}
}

func TestService_HandleInteraction_MessageFailureStillCommits(t *testing.T) {
	repo := &testRepo{}
	repo.seed(seededPet(DefaultStats(), baseTime))
	msgs := &testMessages{err: errors.New("upstream 500")}
	sink := &testSink{}
	svc := newTestService(repo, msgs, sink)

	p, err := svc.HandleInteraction(context.Background(), InteractionRedeemCoupon)
	if err != nil {
		t.Fatalf("expected no error on message failure, got %v", err)
	}
	if p.Happiness != 68 {
		t.Fatalf("expected happiness 68, got %d", p.Happiness)
	}
	if p.LastMessage != "mensaje previo" {
		t.Fatalf("expected previous message retained, got %q", p.LastMessage)
	}
	stored, _ := repo.Get(context.Background())
	if stored.Happiness != 68 {
		t.Fatalf("expected stats persisted, got %d", stored.Happiness)
	}
	if sink.count() != 1 {
		t.Fatalf("expected broadcast even when message fails")
	}
}

func TestService_HandleInteraction_MessageTimeoutStillCommits(t *testing.T) {
	repo := &testRepo{}
	repo.seed(seededPet(DefaultStats(), baseTime))
	msgs := &testMessages{block: true}
	svc := newTestService(repo, msgs, &testSink{})

	p, err := svc.HandleInteraction(context.Background(), InteractionMarkWatched)
	if err != nil {
		t.Fatalf("expected no error on message timeout, got %v", err)
	}
	if p.Happiness != 65 {
		t.Fatalf("expected happiness 65, got %d", p.Happiness)
	}
	stored, _ := repo.Get(context.Background())
	if stored.Happiness != 65 {
		t.Fatalf("expected stats persisted after timeout")
	}
}

func TestService_HandleInteraction_PersistenceFailureSurfaces(t *testing.T) {
	boom := errors.New("db down")
	repo := &testRepo{failStats: boom}
	repo.seed(seededPet(DefaultStats(), baseTime))
	msgs := &testMessages{}
	sink := &testSink{}
	svc := newTestService(repo, msgs, sink)

	_, err := svc.HandleInteraction(context.Background(), InteractionAddMovie)
	if !errors.Is(err, boom) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if msgs.count() != 0 || sink.count() != 0 {
		t.Fatalf("expected no message/broadcast after failed persistence")
	}
}

func TestService_HandleInteraction_UsesResolverContext(t *testing.T) {
	repo := &testRepo{}
	repo.seed(seededPet(DefaultStats(), baseTime))
	msgs := &testMessages{}
	svc := NewService(repo, Options{
		Messages: msgs,
		Resolver: testResolver{
			latest: map[InteractionType]string{InteractionRedeemCoupon: "se canjeó el cupón Cena"},
			rollup: &Rollup{TotalCoupons: 3, TotalRedeemedCoupons: 1},
		},
	})
	svc.now = func() time.Time { return baseTime }

	p, err := svc.HandleInteraction(context.Background(), InteractionRedeemCoupon)
	if err != nil {
		t.Fatalf("HandleInteraction error: %v", err)
	}
	if p.StatsSnapshot == nil || p.StatsSnapshot.TotalCoupons != 3 {
		t.Fatalf("expected stats snapshot captured, got %#v", p.StatsSnapshot)
	}
	in := msgs.calls[0]
	if len(in.Context) != 2 || in.Context[0] != "se canjeó el cupón Cena" {
		t.Fatalf("unexpected message context %#v", in.Context)
	}
}

func TestService_HandleInteraction_Serialized(t *testing.T) {
	repo := &testRepo{}
	repo.seed(seededPet(Stats{Happiness: 0, Energy: 0, Curiosity: 0}, baseTime))
	svc := newTestService(repo, &testMessages{}, &testSink{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.HandleInteraction(context.Background(), InteractionLikeOne); err != nil {
				t.Errorf("HandleInteraction error: %v", err)
			}
		}()
	}
	wg.Wait()

	stored, _ := repo.Get(context.Background())
	// 10 x +5 energía sin updates perdidos
	if stored.Energy != 50 {
		t.Fatalf("expected energy 50 (no lost updates), got %d", stored.Energy)
	}
}

// -------------------------
// DecayTick
// -------------------------

func TestService_DecayTick_UnderThreeHoursIsNoop(t *testing.T) {
	repo := &testRepo{}
	last := baseTime.Add(-2*time.Hour - 59*time.Minute)
	repo.seed(seededPet(DefaultStats(), last))
	msgs := &testMessages{}
	sink := &testSink{}
	svc := newTestService(repo, msgs, sink)

	p, applied, err := svc.DecayTick(context.Background())
	if err != nil {
		t.Fatalf("DecayTick error: %v", err)
	}
	if applied {
		t.Fatalf("expected no-op")
	}
	if !p.LastInteractionAt.Equal(last) {
		t.Fatalf("lastInteractionAt must not change on no-op")
	}
	if repo.statsWrites != 0 || msgs.count() != 0 || sink.count() != 0 {
		t.Fatalf("expected no persist/message/broadcast, got %d/%d/%d", repo.statsWrites, msgs.count(), sink.count())
	}
}

func TestService_DecayTick_FourHoursIdle(t *testing.T) {
	repo := &testRepo{}
	repo.seed(seededPet(DefaultStats(), baseTime.Add(-4*time.Hour)))
	sink := &testSink{}
	svc := newTestService(repo, &testMessages{}, sink)

	p, applied, err := svc.DecayTick(context.Background())
	if err != nil || !applied {
		t.Fatalf("expected applied decay, err=%v applied=%v", err, applied)
	}
	want := Stats{Happiness: 45, Energy: 77, Curiosity: 50}
	if p.Stats != want {
		t.Fatalf("expected %#v, got %#v", want, p.Stats)
	}
	if !p.LastInteractionAt.Equal(baseTime) {
		t.Fatalf("expected lastInteractionAt updated to now")
	}
	if p.LastMessage != "hola" || sink.count() != 1 {
		t.Fatalf("expected message + broadcast after decay")
	}
}

func TestService_DecayTick_PersistenceFailureSurfaces(t *testing.T) {
	boom := errors.New("db down")
	repo := &testRepo{failStats: boom}
	seed := seededPet(DefaultStats(), baseTime.Add(-13*time.Hour))
	repo.seed(seed)
	msgs := &testMessages{}
	sink := &testSink{}
	svc := newTestService(repo, msgs, sink)

	_, applied, err := svc.DecayTick(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if applied {
		t.Fatalf("failed decay must not report applied")
	}
	if msgs.count() != 0 || sink.count() != 0 {
		t.Fatalf("expected no message/broadcast after failed persistence")
	}

	stored, _ := repo.Get(context.Background())
	if stored.Stats != seed.Stats || !stored.LastInteractionAt.Equal(seed.LastInteractionAt) {
		t.Fatalf("stored pet changed despite failed write: %#v", stored)
	}
}

func TestService_DecayTick_TwelveHoursIdleExactDelta(t *testing.T) {
	repo := &testRepo{}
	repo.seed(seededPet(Stats{Happiness: 90, Energy: 90, Curiosity: 90}, baseTime.Add(-30*time.Hour)))
	svc := newTestService(repo, &testMessages{}, &testSink{})

	p, applied, err := svc.DecayTick(context.Background())
	if err != nil || !applied {
		t.Fatalf("expected applied decay, err=%v applied=%v", err, applied)
	}
	want := Stats{Happiness: 70, Energy: 80, Curiosity: 75}
	if p.Stats != want {
		t.Fatalf("expected %#v, got %#v", want, p.Stats)
	}
}

func TestService_DecayTick_ClampsAtMin(t *testing.T) {
	repo := &testRepo{}
	repo.seed(seededPet(Stats{Happiness: 5, Energy: 3, Curiosity: 1}, baseTime.Add(-13*time.Hour)))
	svc := newTestService(repo, &testMessages{}, &testSink{})

	p, _, err := svc.DecayTick(context.Background())
	if err != nil {
		t.Fatalf("DecayTick error: %v", err)
	}
	if p.Stats != (Stats{}) {
		t.Fatalf("expected all stats clamped to 0, got %#v", p.Stats)
	}
}

func TestService_DecayTick_KeepsLastInteractionType(t *testing.T) {
	repo := &testRepo{}
	pet := seededPet(DefaultStats(), baseTime.Add(-7*time.Hour))
	it := InteractionBuyProduct
	pet.LastInteractionType = &it
	repo.seed(pet)
	svc := newTestService(repo, &testMessages{}, &testSink{})

	p, _, err := svc.DecayTick(context.Background())
	if err != nil {
		t.Fatalf("DecayTick error: %v", err)
	}
	if p.LastInteractionType == nil || *p.LastInteractionType != InteractionBuyProduct {
		t.Fatalf("decay must not change lastInteractionType")
	}
	if p.Stats != (Stats{Happiness: 40, Energy: 75, Curiosity: 43}) {
		t.Fatalf("unexpected stats after 6-12h bracket: %#v", p.Stats)
	}
}

func TestService_RedeemThenDecay_IsNoop(t *testing.T) {
	repo := &testRepo{}
	repo.seed(seededPet(DefaultStats(), baseTime.Add(-48*time.Hour)))
	sink := &testSink{}
	svc := newTestService(repo, &testMessages{}, sink)

	after, err := svc.HandleInteraction(context.Background(), InteractionRedeemCoupon)
	if err != nil {
		t.Fatalf("HandleInteraction error: %v", err)
	}

	p, applied, err := svc.DecayTick(context.Background())
	if err != nil {
		t.Fatalf("DecayTick error: %v", err)
	}
	if applied {
		t.Fatalf("expected no decay right after an interaction")
	}
	if p.Stats != after.Stats || sink.count() != 1 {
		t.Fatalf("decay with 0 idle hours must be invisible")
	}
}

func assertInRange(t *testing.T, s Stats) {
	t.Helper()
	for name, v := range map[string]int{"happiness": s.Happiness, "energy": s.Energy, "curiosity": s.Curiosity} {
		if v < StatMin || v > StatMax {
			t.Fatalf("%s out of range: %d", name, v)
		}
	}
}
