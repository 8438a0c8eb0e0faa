package coupons

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/coupons", func(cr chi.Router) {
		cr.Post("/", createCouponHandler(svc))
		cr.Get("/", listCouponsHandler(svc))
		cr.Get("/owners", listOwnersHandler())
		cr.Get("/{couponID}", getCouponHandler(svc))
		cr.Patch("/{couponID}/redeem", redeemCouponHandler(svc))
		cr.Delete("/{couponID}", deleteCouponHandler(svc))
	})
}

// createCouponRequest es el cuerpo para crear un cupón.
type createCouponRequest struct {
	Title       string     `json:"title" validate:"required,max=120"`
	Description string     `json:"description" validate:"required,max=500"`
	Owner       Owner      `json:"owner" validate:"omitempty,oneof=Nico Barbara" enums:"Nico,Barbara"`
	Reusable    bool       `json:"reusable"`
	ExpiresAt   *time.Time `json:"expires_at"` // RFC3339, opcional
}

type redeemRequest struct {
	Redeemed *bool `json:"redeemed" validate:"required"`
}

type couponResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Owner       Owner      `json:"owner"`
	Redeemed    bool       `json:"redeemed"`
	Reusable    bool       `json:"reusable"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// redeemResponse: si deleted=true el cupón ya no existe.
type redeemResponse struct {
	Deleted bool            `json:"deleted"`
	Coupon  *couponResponse `json:"coupon,omitempty"`
}

func toCouponResponse(c Coupon) couponResponse {
	return couponResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Owner:       c.Owner,
		Redeemed:    c.Redeemed,
		Reusable:    c.Reusable,
		ExpiresAt:   c.ExpiresAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// createCouponHandler godoc
// @Summary Crear cupón
// @Description Crea un cupón para un dueño (Barbara por defecto). expires_at debe estar en el futuro.
// @Tags coupons
// @Accept json
// @Produce json
// @Param payload body createCouponRequest true "Datos del cupón"
// @Success 201 {object} couponResponse
// @Failure 400 {string} string "invalid json / validation error"
// @Failure 500 {string} string "internal error"
// @Router /coupons [post]
func createCouponHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCouponRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		c, err := svc.Create(r.Context(), CreateInput{
			Title:       req.Title,
			Description: req.Description,
			Owner:       req.Owner,
			Reusable:    req.Reusable,
			ExpiresAt:   req.ExpiresAt,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toCouponResponse(c))
	}
}

// listCouponsHandler godoc
// @Summary Listar cupones vigentes
// @Tags coupons
// @Produce json
// @Param owner query string false "Dueño" Enums(Nico,Barbara)
// @Success 200 {array} couponResponse
// @Failure 400 {string} string "invalid owner"
// @Router /coupons [get]
func listCouponsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), Owner(r.URL.Query().Get("owner")))
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]couponResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCouponResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listOwnersHandler godoc
// @Summary Dueños válidos de cupones
// @Tags coupons
// @Produce json
// @Success 200 {array} string
// @Router /coupons/owners [get]
func listOwnersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Owners())
	}
}

// getCouponHandler godoc
// @Summary Obtener cupón
// @Tags coupons
// @Produce json
// @Param couponID path string true "ID del cupón"
// @Success 200 {object} couponResponse
// @Failure 404 {string} string "coupon not found"
// @Router /coupons/{couponID} [get]
func getCouponHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "couponID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCouponResponse(c))
	}
}

// redeemCouponHandler godoc
// @Summary Canjear / descanjear cupón
// @Description Un cupón de un solo uso se elimina al canjearse. Solo el canje cuenta como interacción de la mascota.
// @Tags coupons
// @Accept json
// @Produce json
// @Param couponID path string true "ID del cupón"
// @Param payload body redeemRequest true "Estado"
// @Success 200 {object} redeemResponse
// @Failure 400 {string} string "invalid json / validation error"
// @Failure 404 {string} string "coupon not found"
// @Router /coupons/{couponID}/redeem [patch]
func redeemCouponHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req redeemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		res, err := svc.Redeem(r.Context(), chi.URLParam(r, "couponID"), *req.Redeemed)
		if err != nil {
			writeError(w, err)
			return
		}

		if res.Deleted {
			writeJSON(w, http.StatusOK, redeemResponse{Deleted: true})
			return
		}
		c := toCouponResponse(res.Coupon)
		writeJSON(w, http.StatusOK, redeemResponse{Coupon: &c})
	}
}

// deleteCouponHandler godoc
// @Summary Eliminar cupón
// @Tags coupons
// @Param couponID path string true "ID del cupón"
// @Success 204
// @Failure 404 {string} string "coupon not found"
// @Router /coupons/{couponID} [delete]
func deleteCouponHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "couponID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "coupon not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
