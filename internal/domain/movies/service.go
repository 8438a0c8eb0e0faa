package movies

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
	Title  string
	APIID  string
	List   List
	Poster string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Movie, error) {
	title := strings.TrimSpace(in.Title)
	apiID := strings.TrimSpace(in.APIID)
	if title == "" || apiID == "" || !in.List.Valid() {
		return Movie{}, ErrInvalidInput
	}

	now := s.now()
	m := Movie{
		ID:        uuid.NewString(),
		Title:     title,
		APIID:     apiID,
		List:      in.List,
		Poster:    strings.TrimSpace(in.Poster),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return Movie{}, err
	}

	s.events.Emit(ctx, pets.InteractionAddMovie)
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Movie, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Movie{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, list List) ([]Movie, error) {
	if list != "" && !list.Valid() {
		return nil, ErrInvalidInput
	}
	return s.repo.List(ctx, list)
}

// SetWatched emite markWatched solo en la transición no vista -> vista.
func (s *Service) SetWatched(ctx context.Context, id string, watched bool) (Movie, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return Movie{}, err
	}
	if m.Watched == watched {
		return m, nil
	}

	now := s.now()
	if err := s.repo.SetWatched(ctx, m.ID, watched, now); err != nil {
		return Movie{}, err
	}
	m.Watched = watched
	m.UpdatedAt = now

	if watched {
		s.events.Emit(ctx, pets.InteractionMarkWatched)
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Emit(ctx, pets.InteractionDeleteMovie)
	return nil
}

func (s *Service) Latest(ctx context.Context, f LatestFilter) (Movie, error) {
	return s.repo.Latest(ctx, f)
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.repo.Counts(ctx)
}
