package pets

import (
	"context"
)

// ContextResolver trae hechos cortos de los módulos de dominio para el mensaje.
// Nunca falla: sin datos devuelve "" / nil.
type ContextResolver interface {
	Latest(ctx context.Context, t InteractionType) string
	Rollup(ctx context.Context) *Rollup
}

// MessageInput es lo que recibe el generador de mensajes.
type MessageInput struct {
	Name     string
	Stats    Stats
	LastType *InteractionType
	Context  []string
}

// MessageGenerator produce una frase corta en primera persona.
type MessageGenerator interface {
	Generate(ctx context.Context, in MessageInput) (string, error)
}

// TextRequest es una llamada de completion corta. MaxTokens acota la salida en el request.
type TextRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// TextGenerator es el servicio externo de texto (openai, ollama...).
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// Broadcaster empuja el registro completo a los listeners. Fire-and-forget.
type Broadcaster interface {
	Broadcast(p Pet)
}

// Emitter es como los módulos de dominio notifican interacciones. Fire-and-forget.
type Emitter interface {
	Emit(ctx context.Context, t InteractionType)
}

type nopResolver struct{}

func (nopResolver) Latest(context.Context, InteractionType) string { return "" }
func (nopResolver) Rollup(context.Context) *Rollup                 { return nil }

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(Pet) {}

// NopEmitter descarta las interacciones (tests y módulos sin bus).
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, InteractionType) {}
