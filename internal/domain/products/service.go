package products

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-companion/internal/domain/pets"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo   Repository
	events pets.Emitter
	now    func() time.Time
}

func NewService(repo Repository, events pets.Emitter) *Service {
	if events == nil {
		events = pets.NopEmitter{}
	}
	return &Service{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

type CreateInput struct {
	Name      string
	ImageURL  string
	StoreName string
	StoreLink string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Product{}, ErrInvalidInput
	}

	now := s.now()
	p := Product{
		ID:        uuid.NewString(),
		Name:      name,
		ImageURL:  strings.TrimSpace(in.ImageURL),
		StoreName: strings.TrimSpace(in.StoreName),
		StoreLink: strings.TrimSpace(in.StoreLink),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, err
	}

	s.events.Emit(ctx, pets.InteractionAddProduct)
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// UpdateInput: nil => sin cambios (PATCH).
type UpdateInput struct {
	Name        *string
	ImageURL    *string
	StoreName   *string
	StoreLink   *string
	Bought      *bool
	LikeNico    *bool
	LikeBarbara *bool
}

// Update aplica el patch y emite según las transiciones:
//   - bought false->true: buyProduct
//   - un like nuevo sin llegar a likeBoth: likeOne
//   - likeBoth false->true: likeBoth
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	before := p

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Product{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.StoreName != nil {
		p.StoreName = strings.TrimSpace(*in.StoreName)
	}
	if in.StoreLink != nil {
		p.StoreLink = strings.TrimSpace(*in.StoreLink)
	}
	if in.Bought != nil {
		p.Bought = *in.Bought
	}
	if in.LikeNico != nil {
		p.LikeNico = *in.LikeNico
	}
	if in.LikeBarbara != nil {
		p.LikeBarbara = *in.LikeBarbara
	}
	p.recompute()
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}

	for _, t := range transitions(before, p) {
		s.events.Emit(ctx, t)
	}
	return p, nil
}

func transitions(before, after Product) []pets.InteractionType {
	var out []pets.InteractionType
	if !before.Bought && after.Bought {
		out = append(out, pets.InteractionBuyProduct)
	}
	likedOne := (!before.LikeNico && after.LikeNico) || (!before.LikeBarbara && after.LikeBarbara)
	if likedOne && !after.LikeBoth {
		out = append(out, pets.InteractionLikeOne)
	}
	if !before.LikeBoth && after.LikeBoth {
		out = append(out, pets.InteractionLikeBoth)
	}
	return out
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Latest(ctx context.Context, f LatestFilter) (Product, error) {
	return s.repo.Latest(ctx, f)
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.repo.Counts(ctx)
}
