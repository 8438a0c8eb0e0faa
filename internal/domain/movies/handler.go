package movies

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
	r.Route("/movies", func(mr chi.Router) {
		mr.Post("/", createMovieHandler(svc))
		mr.Get("/", listMoviesHandler(svc))
		mr.Get("/{movieID}", getMovieHandler(svc))
		mr.Patch("/{movieID}/watched", setWatchedHandler(svc))
		mr.Delete("/{movieID}", deleteMovieHandler(svc))
	})
}

// createMovieRequest es el cuerpo para agregar una película a una lista.
type createMovieRequest struct {
	Title  string `json:"title" validate:"required,max=200"`
	APIID  string `json:"api_id" validate:"required,max=64"`
	List   List   `json:"list" validate:"required,oneof=Barbara Nico Juntos" enums:"Barbara,Nico,Juntos"`
	Poster string `json:"poster" validate:"omitempty,url"`
}

type setWatchedRequest struct {
	Watched *bool `json:"watched" validate:"required"`
}

type movieResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	APIID     string    `json:"api_id"`
	List      List      `json:"list"`
	Watched   bool      `json:"watched"`
	Poster    string    `json:"poster,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toMovieResponse(m Movie) movieResponse {
	return movieResponse{
		ID:        m.ID,
		Title:     m.Title,
		APIID:     m.APIID,
		List:      m.List,
		Watched:   m.Watched,
		Poster:    m.Poster,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// createMovieHandler godoc
// @Summary Agregar película
// @Description Agrega una película a la lista indicada. La mascota gana curiosidad.
// @Tags movies
// @Accept json
// @Produce json
// @Param payload body createMovieRequest true "Datos de la película"
// @Success 201 {object} movieResponse
// @Failure 400 {string} string "invalid json / validation error"
// @Failure 500 {string} string "internal error"
// @Router /movies [post]
func createMovieHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMovieRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), CreateInput{
			Title:  req.Title,
			APIID:  req.APIID,
			List:   req.List,
			Poster: req.Poster,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMovieResponse(m))
	}
}

// listMoviesHandler godoc
// @Summary Listar películas
// @Description Lista las películas, opcionalmente de una sola lista.
// @Tags movies
// @Produce json
// @Param list query string false "Lista" Enums(Barbara,Nico,Juntos)
// @Success 200 {array} movieResponse
// @Failure 400 {string} string "invalid list"
// @Failure 500 {string} string "internal error"
// @Router /movies [get]
func listMoviesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := List(r.URL.Query().Get("list"))

		items, err := svc.List(r.Context(), list)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]movieResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMovieResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMovieHandler godoc
// @Summary Obtener película
// @Tags movies
// @Produce json
// @Param movieID path string true "ID de la película"
// @Success 200 {object} movieResponse
// @Failure 404 {string} string "movie not found"
// @Router /movies/{movieID} [get]
func getMovieHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.GetByID(r.Context(), chi.URLParam(r, "movieID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMovieResponse(m))
	}
}

// setWatchedHandler godoc
// @Summary Marcar película como vista / no vista
// @Description Solo el paso a vista cuenta como interacción de la mascota.
// @Tags movies
// @Accept json
// @Produce json
// @Param movieID path string true "ID de la película"
// @Param payload body setWatchedRequest true "Estado"
// @Success 200 {object} movieResponse
// @Failure 400 {string} string "invalid json / validation error"
// @Failure 404 {string} string "movie not found"
// @Router /movies/{movieID}/watched [patch]
func setWatchedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setWatchedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		m, err := svc.SetWatched(r.Context(), chi.URLParam(r, "movieID"), *req.Watched)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMovieResponse(m))
	}
}

// deleteMovieHandler godoc
// @Summary Eliminar película
// @Tags movies
// @Param movieID path string true "ID de la película"
// @Success 204
// @Failure 404 {string} string "movie not found"
// @Router /movies/{movieID} [delete]
func deleteMovieHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "movieID")); err != nil {
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
		http.Error(w, "movie not found", http.StatusNotFound)
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
