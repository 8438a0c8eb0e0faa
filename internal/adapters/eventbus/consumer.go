package eventbus

import (
	"context"
	"fmt"
	"sync"

	"pet-companion/internal/domain/pets"
	"pet-companion/internal/platform/logger"
	"pet-companion/internal/platform/metrics"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

type interactionHandler interface {
	HandleInteraction(ctx context.Context, t pets.InteractionType) (pets.Pet, error)
}

// Consumer entrega cada InteractionEvent al motor, de a uno.
// Los mensajes siempre se ackean: un evento que falla no se reintenta.
type Consumer struct {
	sub    message.Subscriber
	engine interactionHandler
	log    logger.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

func NewConsumer(sub message.Subscriber, engine interactionHandler, log logger.Logger) *Consumer {
	if log == nil {
		log = logger.Nop()
	}
	return &Consumer{
		sub:    sub,
		engine: engine,
		log:    log.With(map[string]any{"component": "interaction-consumer"}),
		ready:  make(chan struct{}),
	}
}

// Ready se cierra cuando la primera suscripción quedó activa.
func (c *Consumer) Ready() <-chan struct{} { return c.ready }

// Serve implementa suture.Service.
func (c *Consumer) Serve(ctx context.Context) error {
	msgs, err := c.sub.Subscribe(ctx, TopicInteraction)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", TopicInteraction, err)
	}
	c.readyOnce.Do(func() { close(c.ready) })
	c.log.Info("interaction consumer started", nil)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				// pub/sub cerrado
				return nil
			}
			c.handle(ctx, msg)
			msg.Ack()
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	var ev InteractionEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		metrics.EventsConsumed.WithLabelValues(TopicInteraction, "decode_error").Inc()
		c.log.Warn("discarding malformed interaction", map[string]any{"message_uuid": msg.UUID, "err": err})
		return
	}

	t := pets.ParseInteractionType(ev.Type)
	if _, err := c.engine.HandleInteraction(ctx, t); err != nil {
		metrics.EventsConsumed.WithLabelValues(TopicInteraction, "failed").Inc()
		c.log.Error("interaction failed", map[string]any{"type": ev.Type, "message_uuid": msg.UUID, "err": err})
		return
	}
	metrics.EventsConsumed.WithLabelValues(TopicInteraction, "consumed").Inc()
}

func (c *Consumer) String() string { return "interaction-consumer" }
