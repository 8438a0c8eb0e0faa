package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pet-companion/internal/domain/pets"

	"github.com/goccy/go-json"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Get(ctx context.Context) (pets.Pet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, name,
			happiness, energy, curiosity,
			last_interaction_at, last_interaction_type,
			last_message, stats_snapshot,
			created_at, updated_at
		FROM pets
		WHERE singleton
	`)

	var p pets.Pet
	var lastType sql.NullString
	var snapshot []byte
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Happiness,
		&p.Energy,
		&p.Curiosity,
		&p.LastInteractionAt,
		&lastType,
		&p.LastMessage,
		&snapshot,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}

	if lastType.Valid {
		t := pets.InteractionType(lastType.String)
		p.LastInteractionType = &t
	}
	if len(snapshot) > 0 {
		var roll pets.Rollup
		if err := json.Unmarshal(snapshot, &roll); err != nil {
			return pets.Pet{}, fmt.Errorf("decode stats_snapshot: %w", err)
		}
		p.StatsSnapshot = &roll
	}

	return p, nil
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	snapshot, err := encodeSnapshot(p.StatsSnapshot)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pets (
			id, name,
			happiness, energy, curiosity,
			last_interaction_at, last_interaction_type,
			last_message, stats_snapshot,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		p.ID,
		p.Name,
		p.Happiness,
		p.Energy,
		p.Curiosity,
		p.LastInteractionAt,
		toNullType(p.LastInteractionType),
		p.LastMessage,
		snapshot,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// SaveStats persiste todo menos last_message.
func (r *PetsRepo) SaveStats(ctx context.Context, p pets.Pet) error {
	snapshot, err := encodeSnapshot(p.StatsSnapshot)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			happiness = $2,
			energy = $3,
			curiosity = $4,
			last_interaction_at = $5,
			last_interaction_type = $6,
			stats_snapshot = $7,
			updated_at = $8
		WHERE id = $1
	`,
		p.ID,
		p.Happiness,
		p.Energy,
		p.Curiosity,
		p.LastInteractionAt,
		toNullType(p.LastInteractionType),
		snapshot,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) SaveMessage(ctx context.Context, id, msg string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET last_message = $2, updated_at = $3
		WHERE id = $1
	`, id, msg, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func toNullType(t *pets.InteractionType) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*t), Valid: true}
}

// stats_snapshot es JSONB; nil => NULL.
func encodeSnapshot(r *pets.Rollup) (any, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode stats_snapshot: %w", err)
	}
	return string(b), nil
}
