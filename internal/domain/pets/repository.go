package pets

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("pet not found")
)

// Repository persiste el registro único de la mascota.
// Get devuelve ErrNotFound si todavía no existe.
type Repository interface {
	Get(ctx context.Context) (Pet, error)
	Create(ctx context.Context, p Pet) error

	// SaveStats guarda stats, última interacción, snapshot y updated_at.
	SaveStats(ctx context.Context, p Pet) error

	// SaveMessage solo toca last_message/updated_at.
	SaveMessage(ctx context.Context, id, msg string, at time.Time) error
}
