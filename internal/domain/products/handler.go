package products

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
	r.Route("/products", func(pr chi.Router) {
		pr.Post("/", createProductHandler(svc))
		pr.Get("/", listProductsHandler(svc))
		pr.Get("/{productID}", getProductHandler(svc))
		pr.Patch("/{productID}", updateProductHandler(svc))
		pr.Delete("/{productID}", deleteProductHandler(svc))
	})
}

// createProductRequest es el cuerpo para agregar un producto a la wishlist.
type createProductRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	ImageURL  string `json:"image_url" validate:"omitempty,url"`
	StoreName string `json:"store_name" validate:"omitempty,max=120"`
	StoreLink string `json:"store_link" validate:"omitempty,url"`
}

// updateProductRequest: campos ausentes no se modifican.
type updateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	StoreName   *string `json:"store_name" validate:"omitempty,max=120"`
	StoreLink   *string `json:"store_link" validate:"omitempty,url"`
	Bought      *bool   `json:"bought"`
	LikeNico    *bool   `json:"like_nico"`
	LikeBarbara *bool   `json:"like_barbara"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"image_url,omitempty"`
	StoreName   string    `json:"store_name,omitempty"`
	StoreLink   string    `json:"store_link,omitempty"`
	Bought      bool      `json:"bought"`
	LikeNico    bool      `json:"like_nico"`
	LikeBarbara bool      `json:"like_barbara"`
	LikeBoth    bool      `json:"like_both"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProductResponse(p Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		ImageURL:    p.ImageURL,
		StoreName:   p.StoreName,
		StoreLink:   p.StoreLink,
		Bought:      p.Bought,
		LikeNico:    p.LikeNico,
		LikeBarbara: p.LikeBarbara,
		LikeBoth:    p.LikeBoth,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// createProductHandler godoc
// @Summary Agregar producto
// @Tags products
// @Accept json
// @Produce json
// @Param payload body createProductRequest true "Datos del producto"
// @Success 201 {object} productResponse
// @Failure 400 {string} string "invalid json / validation error"
// @Failure 500 {string} string "internal error"
// @Router /products [post]
func createProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{
			Name:      req.Name,
			ImageURL:  req.ImageURL,
			StoreName: req.StoreName,
			StoreLink: req.StoreLink,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toProductResponse(p))
	}
}

// listProductsHandler godoc
// @Summary Listar productos
// @Tags products
// @Produce json
// @Success 200 {array} productResponse
// @Failure 500 {string} string "internal error"
// @Router /products [get]
func listProductsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]productResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProductResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getProductHandler godoc
// @Summary Obtener producto
// @Tags products
// @Produce json
// @Param productID path string true "ID del producto"
// @Success 200 {object} productResponse
// @Failure 404 {string} string "product not found"
// @Router /products/{productID} [get]
func getProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "productID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProductResponse(p))
	}
}

// updateProductHandler godoc
// @Summary Actualizar producto
// @Description Compra y likes cuentan como interacciones de la mascota cuando cambian a true. like_both se calcula.
// @Tags products
// @Accept json
// @Produce json
// @Param productID path string true "ID del producto"
// @Param payload body updateProductRequest true "Campos a modificar"
// @Success 200 {object} productResponse
// @Failure 400 {string} string "invalid json / validation error"
// @Failure 404 {string} string "product not found"
// @Router /products/{productID} [patch]
func updateProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "productID"), UpdateInput{
			Name:        req.Name,
			ImageURL:    req.ImageURL,
			StoreName:   req.StoreName,
			StoreLink:   req.StoreLink,
			Bought:      req.Bought,
			LikeNico:    req.LikeNico,
			LikeBarbara: req.LikeBarbara,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProductResponse(p))
	}
}

// deleteProductHandler godoc
// @Summary Eliminar producto
// @Tags products
// @Param productID path string true "ID del producto"
// @Success 204
// @Failure 404 {string} string "product not found"
// @Router /products/{productID} [delete]
func deleteProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "productID")); err != nil {
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
		http.Error(w, "product not found", http.StatusNotFound)
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
