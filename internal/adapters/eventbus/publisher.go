package eventbus

import (
	"context"

	"pet-companion/internal/domain/pets"
	"pet-companion/internal/platform/logger"
	"pet-companion/internal/platform/metrics"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// Publisher implementa pets.Emitter sobre un message.Publisher.
// Emit nunca falla hacia el caller: los errores se loguean.
type Publisher struct {
	pub message.Publisher
	log logger.Logger
}

func NewPublisher(pub message.Publisher, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{pub: pub, log: log.With(map[string]any{"component": "eventbus"})}
}

func (p *Publisher) Emit(_ context.Context, t pets.InteractionType) {
	payload, err := json.Marshal(InteractionEvent{Type: string(t)})
	if err != nil {
		metrics.EventsPublished.WithLabelValues(TopicInteraction, "error").Inc()
		p.log.Error("encode interaction failed", map[string]any{"type": string(t), "err": err})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pub.Publish(TopicInteraction, msg); err != nil {
		metrics.EventsPublished.WithLabelValues(TopicInteraction, "error").Inc()
		p.log.Error("publish interaction failed", map[string]any{"type": string(t), "err": err})
		return
	}
	metrics.EventsPublished.WithLabelValues(TopicInteraction, "published").Inc()
}
