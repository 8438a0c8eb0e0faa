// Package app arma el proceso: storage, servicios, bus, hub, router y
// el árbol de supervisión que corre los loops de fondo.
package app

import (
	"context"
	"database/sql"
	"net/http"

	"pet-companion/internal/adapters/broadcast/websocket"
	"pet-companion/internal/adapters/eventbus"
	"pet-companion/internal/adapters/textgen"
	"pet-companion/internal/domain/coupons"
	"pet-companion/internal/domain/movies"
	"pet-companion/internal/domain/pets"
	"pet-companion/internal/domain/products"
	"pet-companion/internal/domain/stats"
	"pet-companion/internal/platform/config"
	"pet-companion/internal/platform/logger"
	"pet-companion/internal/router"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/thejerf/suture/v4"
)

type App struct {
	cfg *config.Config
	log logger.Logger

	db      *sql.DB
	pubsub  *gochannel.GoChannel
	handler http.Handler
	sup     *suture.Supervisor

	Pets     *pets.Service
	Movies   *movies.Service
	Coupons  *coupons.Service
	Products *products.Service
	Stats    *stats.Service
	Hub      *websocket.Hub
	Consumer *eventbus.Consumer
}

func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}

	r, db, err := openStorage(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	messages, err := textgen.NewMessageGenerator(cfg.TextGen, cfg.Pet, log)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	a := &App{cfg: cfg, log: log, db: db}

	// Los módulos de dominio publican; el consumer alimenta al motor.
	a.pubsub = eventbus.NewPubSub(log)
	emitter := eventbus.NewPublisher(a.pubsub, log)

	a.Movies = movies.NewService(r.movies, emitter)
	a.Coupons = coupons.NewService(r.coupons, emitter)
	a.Products = products.NewService(r.products, emitter)
	a.Stats = stats.NewService(a.Movies, a.Coupons, a.Products)

	a.Hub = websocket.NewHub(log)
	a.Pets = pets.NewService(r.pets, pets.Options{
		Name:           cfg.Pet.Name,
		MessageTimeout: cfg.Pet.MessageTimeout,
		Messages:       messages,
		Resolver:       stats.NewResolver(a.Stats, log),
		Broadcaster:    a.Hub,
		Logger:         log,
	})
	a.Consumer = eventbus.NewConsumer(a.pubsub, a.Pets, log)

	a.handler = router.NewRouter(router.Options{
		Logger:           log,
		Pets:             a.Pets,
		Movies:           a.Movies,
		Coupons:          a.Coupons,
		Products:         a.Products,
		Stats:            a.Stats,
		Hub:              a.Hub,
		CORSOrigins:      cfg.Server.CORSOrigins,
		InteractRequests: cfg.RateLimit.InteractRequests,
		InteractWindow:   cfg.RateLimit.InteractWindow,
	})

	a.sup = suture.New("pet-companion", suture.Spec{
		EventHook: func(ev suture.Event) {
			log.Warn(ev.String(), ev.Map())
		},
		Timeout: cfg.Server.ShutdownTimeout,
	})
	a.sup.Add(a.Hub)
	a.sup.Add(a.Consumer)
	a.sup.Add(pets.NewDecayScheduler(a.Pets, cfg.Pet.DecayInterval, log))
	a.sup.Add(stats.NewRefresher(a.Stats, cfg.Stats.RefreshInterval, log))

	return a, nil
}

// Handler expone el router (tests y Run).
func (a *App) Handler() http.Handler { return a.handler }

// Background arranca hub, consumer, scheduler y refresher sin el servidor HTTP.
// El canal recibe el error final del supervisor.
func (a *App) Background(ctx context.Context) <-chan error {
	return a.sup.ServeBackground(ctx)
}

// Run agrega el servidor HTTP y bloquea hasta que ctx se cancela.
func (a *App) Run(ctx context.Context) error {
	a.sup.Add(&httpService{
		srv:             NewHTTPServer(a.cfg, a.handler),
		shutdownTimeout: a.cfg.Server.ShutdownTimeout,
		log:             a.log.With(map[string]any{"component": "http"}),
	})
	return a.sup.Serve(ctx)
}

// NewHTTPServer aplica los timeouts de server.*. Config.Validate garantiza que
// write_timeout alcanza para una interacción con el mensaje agotando su timeout.
func NewHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

func (a *App) Close() error {
	if err := a.pubsub.Close(); err != nil {
		a.log.Warn("close pubsub failed", map[string]any{"err": err})
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
