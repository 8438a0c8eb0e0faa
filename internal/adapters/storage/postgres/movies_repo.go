package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pet-companion/internal/domain/movies"
)

type MoviesRepo struct {
	db *sql.DB
}

func NewMoviesRepo(db *sql.DB) *MoviesRepo {
	return &MoviesRepo{db: db}
}

const movieColumns = `id, title, api_id, list, watched, poster, created_at, updated_at`

func (r *MoviesRepo) Create(ctx context.Context, m movies.Movie) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO movies (`+movieColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		m.ID,
		m.Title,
		m.APIID,
		string(m.List),
		m.Watched,
		m.Poster,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MoviesRepo) GetByID(ctx context.Context, id string) (movies.Movie, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return movies.Movie{}, movies.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id)
	return scanMovie(row)
}

func (r *MoviesRepo) List(ctx context.Context, list movies.List) ([]movies.Movie, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+movieColumns+`
		FROM movies
		WHERE ($1::text = '' OR list = $1::text)
		ORDER BY created_at DESC
	`, string(list))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]movies.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MoviesRepo) SetWatched(ctx context.Context, id string, watched bool, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE movies SET watched = $2, updated_at = $3 WHERE id = $1
	`, id, watched, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return movies.ErrNotFound
	}
	return nil
}

func (r *MoviesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return movies.ErrNotFound
	}
	return nil
}

func (r *MoviesRepo) Latest(ctx context.Context, f movies.LatestFilter) (movies.Movie, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+movieColumns+`
		FROM movies
		WHERE ($1::boolean IS NULL OR watched = $1)
		ORDER BY updated_at DESC
		LIMIT 1
	`, toNullBool(f.Watched))
	return scanMovie(row)
}

func (r *MoviesRepo) Counts(ctx context.Context) (movies.Counts, error) {
	var c movies.Counts
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE watched)
		FROM movies
	`).Scan(&c.Total, &c.Watched)
	return c, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(s rowScanner) (movies.Movie, error) {
	var m movies.Movie
	var list string
	if err := s.Scan(
		&m.ID,
		&m.Title,
		&m.APIID,
		&list,
		&m.Watched,
		&m.Poster,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return movies.Movie{}, movies.ErrNotFound
		}
		return movies.Movie{}, err
	}
	m.List = movies.List(list)
	return m, nil
}

func toNullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
