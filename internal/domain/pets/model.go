package pets

import (
	"fmt"
	"time"
)

// InteractionType identifica el evento de dominio que afecta el ánimo de la mascota.
// @Enum addMovie, markWatched, deleteMovie, addProduct, buyProduct, likeOne, likeBoth, addCoupon, redeemCoupon
type InteractionType string

const (
	InteractionAddMovie     InteractionType = "addMovie"
	InteractionMarkWatched  InteractionType = "markWatched"
	InteractionDeleteMovie  InteractionType = "deleteMovie"
	InteractionAddProduct   InteractionType = "addProduct"
	InteractionBuyProduct   InteractionType = "buyProduct"
	InteractionLikeOne      InteractionType = "likeOne"
	InteractionLikeBoth     InteractionType = "likeBoth"
	InteractionAddCoupon    InteractionType = "addCoupon"
	InteractionRedeemCoupon InteractionType = "redeemCoupon"
)

// Known indica si el tipo pertenece al set cerrado de interacciones.
func (t InteractionType) Known() bool {
	_, ok := deltas[t]
	return ok
}

const (
	StatMin = 0
	StatMax = 100

	DefaultHappiness = 50
	DefaultEnergy    = 80
	DefaultCuriosity = 50
)

// Stats es el vector de ánimo. Cada valor vive en [StatMin, StatMax].
type Stats struct {
	Happiness int
	Energy    int
	Curiosity int
}

// DefaultStats son los valores con los que nace la mascota.
func DefaultStats() Stats {
	return Stats{
		Happiness: DefaultHappiness,
		Energy:    DefaultEnergy,
		Curiosity: DefaultCuriosity,
	}
}

// Delta es un cambio con signo sobre el vector de ánimo.
type Delta struct {
	Happiness int
	Energy    int
	Curiosity int
}

func (d Delta) IsZero() bool {
	return d == Delta{}
}

// Apply suma el delta y clampea cada dimensión.
func (s Stats) Apply(d Delta) Stats {
	return Stats{
		Happiness: clamp(s.Happiness + d.Happiness),
		Energy:    clamp(s.Energy + d.Energy),
		Curiosity: clamp(s.Curiosity + d.Curiosity),
	}
}

func clamp(v int) int {
	if v < StatMin {
		return StatMin
	}
	if v > StatMax {
		return StatMax
	}
	return v
}

// Pet es la única mascota del deployment. Solo el Service muta sus stats.
type Pet struct {
	ID   string
	Name string

	Stats

	LastInteractionAt   time.Time
	LastInteractionType *InteractionType

	// Vacío hasta que se genera el primer mensaje.
	LastMessage string

	// Cache de solo lectura para la generación de mensajes.
	StatsSnapshot *Rollup

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rollup agrupa los contadores globales de los módulos de dominio.
type Rollup struct {
	TotalProducts        int       `json:"total_products"`
	TotalBought          int       `json:"total_bought"`
	TotalLiked           int       `json:"total_liked"`
	TotalCoupons         int       `json:"total_coupons"`
	TotalRedeemedCoupons int       `json:"total_redeemed_coupons"`
	TotalMovies          int       `json:"total_movies"`
	TotalWatched         int       `json:"total_watched"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Summary arma la frase corta con los totales.
func (r Rollup) Summary() string {
	return fmt.Sprintf(
		"En total hay %d productos (%d comprados, %d favoritos de ambos), %d cupones (%d canjeados) y %d películas (%d vistas).",
		r.TotalProducts, r.TotalBought, r.TotalLiked,
		r.TotalCoupons, r.TotalRedeemedCoupons,
		r.TotalMovies, r.TotalWatched,
	)
}
