package pets

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

type RouteOptions struct {
	// InteractMiddleware se aplica solo a POST /pets/interact/{type} (rate limit).
	InteractMiddleware []func(http.Handler) http.Handler
	// Stream se monta en GET /pets/ws si no es nil.
	Stream http.Handler
}

func RegisterRoutes(r chi.Router, svc *Service, opts RouteOptions) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", getPetHandler(svc))
		pr.With(opts.InteractMiddleware...).Post("/interact/{type}", interactHandler(svc))
		if opts.Stream != nil {
			pr.Method(http.MethodGet, "/ws", opts.Stream)
		}
	})
}

// PetView es la forma pública de la mascota (HTTP y websocket).
type PetView struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Happiness           int              `json:"happiness"`
	Energy              int              `json:"energy"`
	Curiosity           int              `json:"curiosity"`
	LastInteractionAt   time.Time        `json:"last_interaction_at"`
	LastInteractionType *InteractionType `json:"last_interaction_type"`
	LastMessage         string           `json:"last_message"`
	StatsSnapshot       *Rollup          `json:"stats_snapshot,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

func NewPetView(p Pet) PetView {
	return PetView{
		ID:                  p.ID,
		Name:                p.Name,
		Happiness:           p.Happiness,
		Energy:              p.Energy,
		Curiosity:           p.Curiosity,
		LastInteractionAt:   p.LastInteractionAt,
		LastInteractionType: p.LastInteractionType,
		LastMessage:         p.LastMessage,
		StatsSnapshot:       p.StatsSnapshot,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// getPetHandler godoc
// @Summary Estado actual de la mascota
// @Description Devuelve la mascota (la crea con valores por defecto si no existe). No regenera el mensaje.
// @Tags pets
// @Produce json
// @Success 200 {object} PetView
// @Failure 500 {string} string "internal error"
// @Router /pets [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, NewPetView(p))
	}
}

// interactHandler godoc
// @Summary Registrar una interacción
// @Description Aplica el delta de la interacción, regenera el mensaje y notifica a los suscriptores. Tipos desconocidos no cambian los stats.
// @Tags pets
// @Produce json
// @Param type path string true "Tipo de interacción" Enums(addMovie,markWatched,deleteMovie,addProduct,buyProduct,likeOne,likeBoth,addCoupon,redeemCoupon)
// @Success 200 {object} PetView
// @Failure 429 {string} string "too many requests"
// @Failure 500 {string} string "internal error"
// @Router /pets/interact/{type} [post]
func interactHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := ParseInteractionType(chi.URLParam(r, "type"))

		p, err := svc.HandleInteraction(r.Context(), t)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, NewPetView(p))
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
