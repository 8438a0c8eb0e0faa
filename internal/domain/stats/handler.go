package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/stats", getStatsHandler(svc))
}

// getStatsHandler godoc
// @Summary Totales globales
// @Description Devuelve el último rollup calculado. Con refresh=true lo recalcula antes de responder.
// @Tags stats
// @Produce json
// @Param refresh query bool false "Forzar recálculo"
// @Success 200 {object} pets.Rollup
// @Failure 500 {string} string "internal error"
// @Router /stats [get]
func getStatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		get := svc.Current
		if r.URL.Query().Get("refresh") == "true" {
			get = svc.Recalculate
		}

		roll, err := get(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, roll)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
