package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pet-companion/internal/domain/pets"
	"pet-companion/internal/platform/metrics"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// -------------------------
// Fakes
// -------------------------

type testEngine struct {
	mu    sync.Mutex
	got   []pets.InteractionType
	err   error
	calls chan struct{}
}

func newTestEngine() *testEngine {
	return &testEngine{calls: make(chan struct{}, 16)}
}

func (e *testEngine) HandleInteraction(_ context.Context, t pets.InteractionType) (pets.Pet, error) {
	e.mu.Lock()
	e.got = append(e.got, t)
	err := e.err
	e.mu.Unlock()
	e.calls <- struct{}{}
	return pets.Pet{}, err
}

func (e *testEngine) types() []pets.InteractionType {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]pets.InteractionType(nil), e.got...)
}

func (e *testEngine) waitCalls(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-e.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout waiting for call %d/%d", i+1, n)
		}
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("boom") }
func (failingPublisher) Close() error                            { return nil }

// -------------------------
// Helpers
// -------------------------

func startConsumer(t *testing.T, engine *testEngine) (*Publisher, func()) {
	t.Helper()
	ps := NewPubSub(nil)
	c := NewConsumer(ps, engine, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = c.Serve(ctx)
		close(done)
	}()

	select {
	case <-c.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("consumer never subscribed")
	}

	stop := func() {
		cancel()
		<-done
		_ = ps.Close()
	}
	return NewPublisher(ps, nil), stop
}

// -------------------------
// Tests
// -------------------------

func TestEmit_DeliversEveryInteraction(t *testing.T) {
	engine := newTestEngine()
	pub, stop := startConsumer(t, engine)
	defer stop()

	pub.Emit(context.Background(), pets.InteractionAddMovie)
	pub.Emit(context.Background(), pets.InteractionMarkWatched)
	pub.Emit(context.Background(), pets.InteractionType("weird"))
	engine.waitCalls(t, 3)

	// gochannel no garantiza orden entre publicaciones no bloqueantes
	seen := map[pets.InteractionType]bool{}
	for _, it := range engine.types() {
		seen[it] = true
	}
	for _, want := range []pets.InteractionType{pets.InteractionAddMovie, pets.InteractionMarkWatched, "weird"} {
		if !seen[want] {
			t.Fatalf("expected %q to be delivered, got %v", want, engine.types())
		}
	}
}

func TestConsumer_EngineErrorDoesNotStopConsumption(t *testing.T) {
	engine := newTestEngine()
	engine.err = errors.New("db down")
	pub, stop := startConsumer(t, engine)
	defer stop()

	pub.Emit(context.Background(), pets.InteractionLikeOne)
	engine.waitCalls(t, 1)

	engine.mu.Lock()
	engine.err = nil
	engine.mu.Unlock()

	pub.Emit(context.Background(), pets.InteractionLikeBoth)
	engine.waitCalls(t, 1)

	if got := engine.types(); len(got) != 2 {
		t.Fatalf("expected no redelivery, got %v", got)
	}
}

func TestConsumer_SkipsMalformedPayload(t *testing.T) {
	engine := newTestEngine()
	ps := NewPubSub(nil)
	defer ps.Close()
	c := NewConsumer(ps, engine, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Serve(ctx) }()
	<-c.Ready()

	if err := ps.Publish(TopicInteraction, message.NewMessage(watermill.NewUUID(), []byte("{nope"))); err != nil {
		t.Fatalf("publish: %v", err)
	}
	NewPublisher(ps, nil).Emit(context.Background(), pets.InteractionAddCoupon)
	engine.waitCalls(t, 1)

	if got := engine.types(); len(got) != 1 || got[0] != pets.InteractionAddCoupon {
		t.Fatalf("unexpected calls %v", got)
	}
}

func TestEmit_PublishErrorIsSwallowed(t *testing.T) {
	// no debe entrar en pánico ni bloquear
	NewPublisher(failingPublisher{}, nil).Emit(context.Background(), pets.InteractionBuyProduct)
}

func TestMetrics_PublishAndConsumeCountedSeparately(t *testing.T) {
	published := metrics.EventsPublished.WithLabelValues(TopicInteraction, "published")
	consumed := metrics.EventsConsumed.WithLabelValues(TopicInteraction, "consumed")
	pubBefore := testutil.ToFloat64(published)
	conBefore := testutil.ToFloat64(consumed)

	engine := newTestEngine()
	pub, stop := startConsumer(t, engine)
	defer stop()

	pub.Emit(context.Background(), pets.InteractionAddProduct)
	engine.waitCalls(t, 1)

	// el ack y el contador ocurren después de HandleInteraction
	deadline := time.Now().Add(2 * time.Second)
	for testutil.ToFloat64(consumed) == conBefore && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if got := testutil.ToFloat64(published) - pubBefore; got != 1 {
		t.Fatalf("expected 1 publish, got %v", got)
	}
	if got := testutil.ToFloat64(consumed) - conBefore; got != 1 {
		t.Fatalf("expected 1 consume, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(TopicInteraction, "consumed")); got != 0 {
		t.Fatalf("consumer outcomes leaked into the publish counter: %v", got)
	}
}
