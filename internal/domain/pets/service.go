package pets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"pet-companion/internal/platform/logger"
	"pet-companion/internal/platform/metrics"

	"github.com/google/uuid"
)

const (
	DefaultName           = "Rabanito"
	DefaultMessageTimeout = 15 * time.Second
)

// Service es el motor de estado de la mascota y el único que muta sus stats.
// Toda mutación (interacción, decay, creación) corre completa bajo mu,
// incluyendo mensaje y broadcast. Las lecturas no toman el lock.
type Service struct {
	repo     Repository
	messages MessageGenerator
	resolver ContextResolver
	sink     Broadcaster
	log      logger.Logger

	name           string
	messageTimeout time.Duration
	now            func() time.Time

	mu sync.Mutex
}

type Options struct {
	Name           string
	MessageTimeout time.Duration

	Messages    MessageGenerator // nil => LocalMessageGenerator
	Resolver    ContextResolver  // nil => sin contexto
	Broadcaster Broadcaster      // nil => sin push
	Logger      logger.Logger
}

func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo:           repo,
		messages:       opts.Messages,
		resolver:       opts.Resolver,
		sink:           opts.Broadcaster,
		log:            opts.Logger,
		name:           strings.TrimSpace(opts.Name),
		messageTimeout: opts.MessageTimeout,
		now:            time.Now,
	}
	if s.messages == nil {
		s.messages = LocalMessageGenerator{}
	}
	if s.resolver == nil {
		s.resolver = nopResolver{}
	}
	if s.sink == nil {
		s.sink = nopBroadcaster{}
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.name == "" {
		s.name = DefaultName
	}
	if s.messageTimeout <= 0 {
		s.messageTimeout = DefaultMessageTimeout
	}
	s.log = s.log.With(map[string]any{"component": "pets"})
	return s
}

// Get devuelve la mascota, creándola si no existe. No regenera el mensaje.
func (s *Service) Get(ctx context.Context) (Pet, error) {
	p, err := s.repo.Get(ctx)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Pet{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadOrCreateLocked(context.WithoutCancel(ctx))
}

// HandleInteraction aplica el delta de t, persiste, regenera el mensaje y hace broadcast.
// Si falla la persistencia de stats se devuelve el error; si falla el mensaje no.
func (s *Service) HandleInteraction(ctx context.Context, t InteractionType) (Pet, error) {
	// Una vez empezada, la interacción corre hasta el final.
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadOrCreateLocked(ctx)
	if err != nil {
		return Pet{}, err
	}

	now := s.now()
	p.Stats = p.Stats.Apply(Classify(t))
	p.LastInteractionAt = now
	tt := t
	p.LastInteractionType = &tt
	p.UpdatedAt = now
	if r := s.resolver.Rollup(ctx); r != nil {
		p.StatsSnapshot = r
	}

	if err := s.repo.SaveStats(ctx, p); err != nil {
		return Pet{}, fmt.Errorf("save pet stats: %w", err)
	}

	metrics.PetInteractions.WithLabelValues(string(t), strconv.FormatBool(t.Known())).Inc()
	metrics.ObserveStats(p.Happiness, p.Energy, p.Curiosity)
	s.log.Info("interaction applied", map[string]any{
		"type":      string(t),
		"happiness": p.Happiness,
		"energy":    p.Energy,
		"curiosity": p.Curiosity,
	})

	s.refreshMessageLocked(ctx, &p)
	s.sink.Broadcast(p)
	return p, nil
}

// DecayTick aplica el decaimiento por inactividad. applied=false => no-op total
// (sin persistir, sin mensaje, sin broadcast).
func (s *Service) DecayTick(ctx context.Context) (Pet, bool, error) {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadOrCreateLocked(ctx)
	if err != nil {
		metrics.PetDecayTicks.WithLabelValues("error").Inc()
		return Pet{}, false, err
	}

	now := s.now()
	hours := IdleHours(p.LastInteractionAt, now)
	d, ok := DecayFor(hours)
	if !ok {
		metrics.PetDecayTicks.WithLabelValues("noop").Inc()
		s.log.Debug("decay skipped", map[string]any{"idle_hours": hours})
		return p, false, nil
	}

	p.Stats = p.Stats.Apply(d)
	p.LastInteractionAt = now
	p.UpdatedAt = now
	if r := s.resolver.Rollup(ctx); r != nil {
		p.StatsSnapshot = r
	}

	if err := s.repo.SaveStats(ctx, p); err != nil {
		metrics.PetDecayTicks.WithLabelValues("error").Inc()
		return Pet{}, false, fmt.Errorf("save pet stats: %w", err)
	}

	metrics.PetDecayTicks.WithLabelValues("applied").Inc()
	metrics.ObserveStats(p.Happiness, p.Energy, p.Curiosity)
	s.log.Info("decay applied", map[string]any{
		"idle_hours": hours,
		"happiness":  p.Happiness,
		"energy":     p.Energy,
		"curiosity":  p.Curiosity,
	})

	s.refreshMessageLocked(ctx, &p)
	s.sink.Broadcast(p)
	return p, true, nil
}

// loadOrCreateLocked requiere mu tomado.
func (s *Service) loadOrCreateLocked(ctx context.Context) (Pet, error) {
	p, err := s.repo.Get(ctx)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Pet{}, fmt.Errorf("load pet: %w", err)
	}

	now := s.now()
	p = Pet{
		ID:                uuid.NewString(),
		Name:              s.name,
		Stats:             DefaultStats(),
		LastInteractionAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, fmt.Errorf("create pet: %w", err)
	}
	s.log.Info("pet created", map[string]any{"pet_id": p.ID, "name": p.Name})

	s.refreshMessageLocked(ctx, &p)
	s.sink.Broadcast(p)
	return p, nil
}

// refreshMessageLocked es best-effort: cualquier error se loguea y el mensaje
// anterior queda como estaba. Los stats ya están persistidos.
func (s *Service) refreshMessageLocked(ctx context.Context, p *Pet) {
	in := MessageInput{
		Name:     p.Name,
		Stats:    p.Stats,
		LastType: p.LastInteractionType,
	}
	if p.LastInteractionType != nil {
		if fact := s.resolver.Latest(ctx, *p.LastInteractionType); fact != "" {
			in.Context = append(in.Context, fact)
		}
	}
	if p.StatsSnapshot != nil {
		in.Context = append(in.Context, p.StatsSnapshot.Summary())
	}

	mctx, cancel := context.WithTimeout(ctx, s.messageTimeout)
	defer cancel()

	start := time.Now()
	msg, err := s.messages.Generate(mctx, in)
	metrics.PetMessageDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PetMessages.WithLabelValues("error").Inc()
		s.log.Warn("message generation failed", map[string]any{"pet_id": p.ID, "err": err})
		return
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		metrics.PetMessages.WithLabelValues("error").Inc()
		return
	}

	now := s.now()
	if err := s.repo.SaveMessage(ctx, p.ID, msg, now); err != nil {
		metrics.PetMessages.WithLabelValues("error").Inc()
		s.log.Error("save pet message failed", map[string]any{"pet_id": p.ID, "err": err})
		return
	}
	metrics.PetMessages.WithLabelValues("ok").Inc()
	p.LastMessage = msg
	p.UpdatedAt = now
}
