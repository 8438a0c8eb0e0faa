package coupons

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
	Title       string
	Description string
	Owner       Owner
	Reusable    bool
	ExpiresAt   *time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Coupon, error) {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	if title == "" || desc == "" {
		return Coupon{}, ErrInvalidInput
	}

	owner := in.Owner
	if owner == "" {
		owner = DefaultOwner
	}
	if !owner.Valid() {
		return Coupon{}, ErrInvalidInput
	}

	now := s.now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return Coupon{}, ErrInvalidInput
	}

	c := Coupon{
		ID:          uuid.NewString(),
		Title:       title,
		Description: desc,
		Owner:       owner,
		Reusable:    in.Reusable,
		ExpiresAt:   in.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Coupon{}, err
	}

	s.events.Emit(ctx, pets.InteractionAddCoupon)
	return c, nil
}

// GetByID trata un cupón vencido como inexistente.
func (s *Service) GetByID(ctx context.Context, id string) (Coupon, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Coupon{}, ErrInvalidInput
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Coupon{}, err
	}
	if c.Expired(s.now()) {
		return Coupon{}, ErrNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, owner Owner) ([]Coupon, error) {
	if owner != "" && !owner.Valid() {
		return nil, ErrInvalidInput
	}
	return s.repo.List(ctx, ListFilter{Owner: owner, Now: s.now()})
}

// RedeemResult: Deleted=true si el cupón no era reutilizable y se borró al canjear.
type RedeemResult struct {
	Coupon  Coupon
	Deleted bool
}

// Redeem canjea (redeemed=true) o descanjea (redeemed=false) un cupón.
//   - canje de cupón de un solo uso: se borra
//   - canje de cupón reutilizable: queda marcado
//   - descanje: solo desmarca, sin interacción
func (s *Service) Redeem(ctx context.Context, id string, redeemed bool) (RedeemResult, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return RedeemResult{}, err
	}

	if !redeemed {
		if c.Redeemed {
			now := s.now()
			if err := s.repo.SetRedeemed(ctx, c.ID, false, now); err != nil {
				return RedeemResult{}, err
			}
			c.Redeemed = false
			c.UpdatedAt = now
		}
		return RedeemResult{Coupon: c}, nil
	}

	if !c.Reusable {
		if err := s.repo.Delete(ctx, c.ID); err != nil {
			return RedeemResult{}, err
		}
		s.events.Emit(ctx, pets.InteractionRedeemCoupon)
		return RedeemResult{Coupon: c, Deleted: true}, nil
	}

	now := s.now()
	if err := s.repo.SetRedeemed(ctx, c.ID, true, now); err != nil {
		return RedeemResult{}, err
	}
	c.Redeemed = true
	c.UpdatedAt = now

	s.events.Emit(ctx, pets.InteractionRedeemCoupon)
	return RedeemResult{Coupon: c}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Latest(ctx context.Context, f LatestFilter) (Coupon, error) {
	if f.Now.IsZero() {
		f.Now = s.now()
	}
	return s.repo.Latest(ctx, f)
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.repo.Counts(ctx, s.now())
}
