package router

import (
	"net/http"
	"time"

	"pet-companion/internal/adapters/broadcast/websocket"
	"pet-companion/internal/domain/coupons"
	"pet-companion/internal/domain/movies"
	"pet-companion/internal/domain/pets"
	"pet-companion/internal/domain/products"
	"pet-companion/internal/domain/stats"
	"pet-companion/internal/middleware"
	"pet-companion/internal/platform/logger"
	"pet-companion/internal/platform/metrics"

	_ "pet-companion/internal/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Logger logger.Logger

	Pets     *pets.Service
	Movies   *movies.Service
	Coupons  *coupons.Service
	Products *products.Service
	Stats    *stats.Service
	Hub      *websocket.Hub // nil => sin /pets/ws

	CORSOrigins []string

	// Rate limit de POST /pets/interact/{type} por IP. 0 => sin límite.
	InteractRequests int
	InteractWindow   time.Duration
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	petRoutes := pets.RouteOptions{}
	if opts.InteractRequests > 0 && opts.InteractWindow > 0 {
		petRoutes.InteractMiddleware = append(petRoutes.InteractMiddleware,
			httprate.LimitByIP(opts.InteractRequests, opts.InteractWindow))
	}
	if opts.Hub != nil {
		petRoutes.Stream = opts.Hub.Handler(opts.Pets.Get, opts.CORSOrigins)
	}

	// Rutas por módulo
	pets.RegisterRoutes(r, opts.Pets, petRoutes)
	movies.RegisterRoutes(r, opts.Movies)
	coupons.RegisterRoutes(r, opts.Coupons)
	products.RegisterRoutes(r, opts.Products)
	stats.RegisterRoutes(r, opts.Stats)

	return r
}
