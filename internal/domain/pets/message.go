package pets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultMaxTokens   = 60
	DefaultTemperature = 0.8
)

var ErrEmptyMessage = errors.New("empty message")

// TextMessageGenerator arma el prompt y delega en un TextGenerator externo.
type TextMessageGenerator struct {
	text        TextGenerator
	maxTokens   int
	temperature float64
}

func NewTextMessageGenerator(text TextGenerator, maxTokens int, temperature float64) *TextMessageGenerator {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &TextMessageGenerator{
		text:        text,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (g *TextMessageGenerator) Generate(ctx context.Context, in MessageInput) (string, error) {
	out, err := g.text.GenerateText(ctx, TextRequest{
		System:      systemPrompt(in.Name),
		User:        userPrompt(in),
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate text: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyMessage
	}
	return out, nil
}

func systemPrompt(name string) string {
	return fmt.Sprintf("Eres %s, un conejo virtual que describe sus emociones en español, en primera persona y en una sola frase corta.", name)
}

func userPrompt(in MessageInput) string {
	last := "ninguna"
	if in.LastType != nil && *in.LastType != "" {
		last = string(*in.LastType)
	}

	var b strings.Builder
	b.WriteString("Estos son tus datos actuales:\n")
	fmt.Fprintf(&b, "- Felicidad: %d%%\n", in.Stats.Happiness)
	fmt.Fprintf(&b, "- Energía: %d%%\n", in.Stats.Energy)
	fmt.Fprintf(&b, "- Curiosidad: %d%%\n", in.Stats.Curiosity)
	fmt.Fprintf(&b, "- Última interacción: %s\n", last)

	for _, c := range in.Context {
		if c = strings.TrimSpace(c); c != "" {
			fmt.Fprintf(&b, "- Contexto: %s\n", c)
		}
	}

	b.WriteString("\nHaz un mensaje breve y amistoso en español.")
	return b.String()
}

// LocalMessageGenerator no usa red: elige la frase por reglas con prioridad.
// Sirve en modo dev y cuando no hay provider configurado.
type LocalMessageGenerator struct{}

func (LocalMessageGenerator) Generate(_ context.Context, in MessageInput) (string, error) {
	s := in.Stats

	var msg string
	switch {
	case s.Energy < 20:
		msg = "Estoy agotado, necesito que hagamos algo juntos pronto."
	case s.Happiness < 30:
		msg = "Me siento un poco triste, los extraño."
	case s.Happiness >= 80 && s.Energy >= 50:
		msg = "¡Estoy feliz y lleno de energía!"
	case s.Curiosity >= 70:
		msg = "¡Tengo mucha curiosidad por lo que viene!"
	case in.LastType != nil && *in.LastType == InteractionDeleteMovie:
		msg = "Esa película ya no está, pero seguro encontramos otra mejor."
	default:
		msg = "Estoy tranquilo, esperando la próxima aventura."
	}

	if strings.TrimSpace(in.Name) == "" {
		return msg, nil
	}
	return in.Name + ": " + msg, nil
}
