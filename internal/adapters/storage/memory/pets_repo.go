package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"pet-companion/internal/domain/pets"
)

// petRepo guarda la única mascota del proceso.
type petRepo struct {
	mu  sync.RWMutex
	pet *pets.Pet
}

func NewPetRepo() pets.Repository {
	return &petRepo{}
}

func (r *petRepo) Get(ctx context.Context) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.pet == nil {
		return pets.Pet{}, pets.ErrNotFound
	}
	return clonePet(*r.pet), nil
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if r.pet != nil {
		return errors.New("pet already exists")
	}
	cp := clonePet(p)
	r.pet = &cp
	return nil
}

// SaveStats no toca LastMessage: ese campo solo lo escribe SaveMessage.
func (r *petRepo) SaveStats(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pet == nil || r.pet.ID != p.ID {
		return pets.ErrNotFound
	}
	cp := clonePet(p)
	cp.LastMessage = r.pet.LastMessage
	r.pet = &cp
	return nil
}

func (r *petRepo) SaveMessage(ctx context.Context, id, msg string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pet == nil || r.pet.ID != id {
		return pets.ErrNotFound
	}
	r.pet.LastMessage = msg
	r.pet.UpdatedAt = at
	return nil
}

// clonePet copia los punteros para que nadie mute el estado guardado.
func clonePet(p pets.Pet) pets.Pet {
	if p.LastInteractionType != nil {
		t := *p.LastInteractionType
		p.LastInteractionType = &t
	}
	if p.StatsSnapshot != nil {
		s := *p.StatsSnapshot
		p.StatsSnapshot = &s
	}
	return p
}
