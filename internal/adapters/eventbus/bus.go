// Package eventbus lleva las interacciones de los módulos de dominio al motor
// de la mascota por un pub/sub en memoria (watermill gochannel).
package eventbus

import (
	"pet-companion/internal/platform/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const TopicInteraction = "pet.interaction"

const defaultBuffer = 64

// InteractionEvent es el payload publicado en TopicInteraction.
type InteractionEvent struct {
	Type string `json:"type"`
}

// NewPubSub crea el pub/sub compartido por Publisher y Consumer.
// No es persistente: lo publicado sin suscriptores se pierde.
func NewPubSub(log logger.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: defaultBuffer,
	}, NewLoggerAdapter(log))
}

// loggerAdapter expone nuestro Logger como watermill.LoggerAdapter.
type loggerAdapter struct {
	log logger.Logger
}

func NewLoggerAdapter(log logger.Logger) watermill.LoggerAdapter {
	if log == nil {
		log = logger.Nop()
	}
	return loggerAdapter{log: log.With(map[string]any{"component": "eventbus"})}
}

func (a loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	f := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		f[k] = v
	}
	f["err"] = err
	a.log.Error(msg, f)
}

func (a loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, map[string]any(fields))
}

func (a loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, map[string]any(fields))
}

// Trace va a Debug: el logger no tiene un nivel más bajo.
func (a loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, map[string]any(fields))
}

func (a loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return loggerAdapter{log: a.log.With(map[string]any(fields))}
}
