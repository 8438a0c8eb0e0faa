package app

import (
	"context"
	"database/sql"
	"fmt"

	mem "pet-companion/internal/adapters/storage/memory"
	pg "pet-companion/internal/adapters/storage/postgres"
	"pet-companion/internal/domain/coupons"
	"pet-companion/internal/domain/movies"
	"pet-companion/internal/domain/pets"
	"pet-companion/internal/domain/products"
	"pet-companion/internal/platform/config"
)

type repos struct {
	pets     pets.Repository
	movies   movies.Repository
	coupons  coupons.Repository
	products products.Repository
}

// openStorage: con DSN usa Postgres (y migra si corresponde); sin DSN, in-memory.
func openStorage(ctx context.Context, cfg config.DatabaseConfig) (repos, *sql.DB, error) {
	if cfg.DSN == "" {
		return repos{
			pets:     mem.NewPetRepo(),
			movies:   mem.NewMovieRepo(),
			coupons:  mem.NewCouponRepo(),
			products: mem.NewProductRepo(),
		}, nil, nil
	}

	db, err := pg.Open(cfg.DSN, pg.PoolOptions{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return repos{}, nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.Migrate {
		if err := pg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return repos{}, nil, err
		}
	}

	return repos{
		pets:     pg.NewPetsRepo(db),
		movies:   pg.NewMoviesRepo(db),
		coupons:  pg.NewCouponsRepo(db),
		products: pg.NewProductsRepo(db),
	}, db, nil
}
