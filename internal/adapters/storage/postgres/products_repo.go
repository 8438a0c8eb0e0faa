package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-companion/internal/domain/products"
)

type ProductsRepo struct {
	db *sql.DB
}

func NewProductsRepo(db *sql.DB) *ProductsRepo {
	return &ProductsRepo{db: db}
}

const productColumns = `id, name, image_url, store_name, store_link, bought, like_nico, like_barbara, like_both, created_at, updated_at`

func (r *ProductsRepo) Create(ctx context.Context, p products.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		p.ID,
		p.Name,
		p.ImageURL,
		p.StoreName,
		p.StoreLink,
		p.Bought,
		p.LikeNico,
		p.LikeBarbara,
		p.LikeBoth,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *ProductsRepo) GetByID(ctx context.Context, id string) (products.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return products.Product{}, products.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

func (r *ProductsRepo) List(ctx context.Context) ([]products.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]products.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductsRepo) Update(ctx context.Context, p products.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET
			name = $2,
			image_url = $3,
			store_name = $4,
			store_link = $5,
			bought = $6,
			like_nico = $7,
			like_barbara = $8,
			like_both = $9,
			updated_at = $10
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.ImageURL,
		p.StoreName,
		p.StoreLink,
		p.Bought,
		p.LikeNico,
		p.LikeBarbara,
		p.LikeBoth,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return products.ErrNotFound
	}
	return nil
}

func (r *ProductsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return products.ErrNotFound
	}
	return nil
}

func (r *ProductsRepo) Latest(ctx context.Context, f products.LatestFilter) (products.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1::boolean IS NULL OR bought = $1)
		  AND ($2::boolean IS NULL OR like_both = $2)
		  AND ($3::boolean IS NULL OR (like_nico OR like_barbara) = $3)
		ORDER BY updated_at DESC
		LIMIT 1
	`, toNullBool(f.Bought), toNullBool(f.LikeBoth), toNullBool(f.Liked))
	return scanProduct(row)
}

func (r *ProductsRepo) Counts(ctx context.Context) (products.Counts, error) {
	var c products.Counts
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE bought),
			COUNT(*) FILTER (WHERE like_both)
		FROM products
	`).Scan(&c.Total, &c.Bought, &c.Liked)
	return c, err
}

func scanProduct(s rowScanner) (products.Product, error) {
	var p products.Product
	if err := s.Scan(
		&p.ID,
		&p.Name,
		&p.ImageURL,
		&p.StoreName,
		&p.StoreLink,
		&p.Bought,
		&p.LikeNico,
		&p.LikeBarbara,
		&p.LikeBoth,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return products.Product{}, products.ErrNotFound
		}
		return products.Product{}, err
	}
	return p, nil
}
