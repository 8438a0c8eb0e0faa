package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pet-companion/internal/domain/coupons"
)

type CouponsRepo struct {
	db *sql.DB
}

func NewCouponsRepo(db *sql.DB) *CouponsRepo {
	return &CouponsRepo{db: db}
}

const couponColumns = `id, title, description, owner, redeemed, reusable, expires_at, created_at, updated_at`

func (r *CouponsRepo) Create(ctx context.Context, c coupons.Coupon) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO coupons (`+couponColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		c.ID,
		c.Title,
		c.Description,
		string(c.Owner),
		c.Redeemed,
		c.Reusable,
		toNullTime(c.ExpiresAt),
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *CouponsRepo) GetByID(ctx context.Context, id string) (coupons.Coupon, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return coupons.Coupon{}, coupons.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id)
	return scanCoupon(row)
}

func (r *CouponsRepo) List(ctx context.Context, f coupons.ListFilter) ([]coupons.Coupon, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+couponColumns+`
		FROM coupons
		WHERE ($1::text = '' OR owner = $1::text)
		  AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY created_at DESC
	`, string(f.Owner), f.Now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]coupons.Coupon, 0)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CouponsRepo) SetRedeemed(ctx context.Context, id string, redeemed bool, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE coupons SET redeemed = $2, updated_at = $3 WHERE id = $1
	`, id, redeemed, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return coupons.ErrNotFound
	}
	return nil
}

func (r *CouponsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return coupons.ErrNotFound
	}
	return nil
}

func (r *CouponsRepo) Latest(ctx context.Context, f coupons.LatestFilter) (coupons.Coupon, error) {
	var now sql.NullTime
	if !f.Now.IsZero() {
		now = sql.NullTime{Time: f.Now, Valid: true}
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+couponColumns+`
		FROM coupons
		WHERE ($1::boolean IS NULL OR redeemed = $1)
		  AND ($2::timestamptz IS NULL OR expires_at IS NULL OR expires_at > $2)
		ORDER BY updated_at DESC
		LIMIT 1
	`, toNullBool(f.Redeemed), now)
	return scanCoupon(row)
}

func (r *CouponsRepo) Counts(ctx context.Context, now time.Time) (coupons.Counts, error) {
	var c coupons.Counts
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE redeemed)
		FROM coupons
		WHERE expires_at IS NULL OR expires_at > $1
	`, now).Scan(&c.Total, &c.Redeemed)
	return c, err
}

func scanCoupon(s rowScanner) (coupons.Coupon, error) {
	var c coupons.Coupon
	var owner string
	var exp sql.NullTime
	if err := s.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&owner,
		&c.Redeemed,
		&c.Reusable,
		&exp,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return coupons.Coupon{}, coupons.ErrNotFound
		}
		return coupons.Coupon{}, err
	}
	c.Owner = coupons.Owner(owner)
	if exp.Valid {
		t := exp.Time
		c.ExpiresAt = &t
	}
	return c, nil
}
