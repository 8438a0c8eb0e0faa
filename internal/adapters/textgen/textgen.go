package textgen

import (
	"fmt"
	"strings"

	"pet-companion/internal/adapters/textgen/ollama"
	"pet-companion/internal/adapters/textgen/openai"
	"pet-companion/internal/domain/pets"
	"pet-companion/internal/platform/config"
	"pet-companion/internal/platform/logger"
)

const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// NewMessageGenerator elige el generador según textgen.provider.
// "local" no usa red; los demás pasan por Guarded.
func NewMessageGenerator(tg config.TextGenConfig, pet config.PetConfig, log logger.Logger) (pets.MessageGenerator, error) {
	provider := strings.ToLower(strings.TrimSpace(tg.Provider))

	var backend pets.TextGenerator
	switch provider {
	case "", ProviderLocal:
		return pets.LocalMessageGenerator{}, nil
	case ProviderOpenAI:
		c, err := openai.New(openai.Options{
			APIKey:  tg.APIKey,
			BaseURL: tg.BaseURL,
			Model:   tg.Model,
			Timeout: tg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		backend = c
	case ProviderOllama:
		c, err := ollama.New(tg.BaseURL, tg.Model, tg.Timeout)
		if err != nil {
			return nil, err
		}
		backend = c
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, tg.Provider)
	}

	guarded := NewGuarded(provider, backend, GuardOptions{
		RequestsPerMin:   tg.RequestsPerMin,
		BreakerFailures:  tg.BreakerFailures,
		BreakerOpenAfter: tg.BreakerOpenAfter,
		Logger:           log,
	})
	return pets.NewTextMessageGenerator(guarded, pet.MaxTokens, pet.Temperature), nil
}
