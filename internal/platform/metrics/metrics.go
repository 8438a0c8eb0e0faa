// Package metrics expone las métricas Prometheus del servicio en /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PetInteractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet_interactions_total",
			Help: "Interacciones aplicadas a la mascota",
		},
		[]string{"type", "known"},
	)

	PetDecayTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet_decay_ticks_total",
			Help: "Ticks de decaimiento por resultado (applied, noop, error)",
		},
		[]string{"result"},
	)

	PetMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet_message_generation_total",
			Help: "Generación de mensajes por resultado (ok, error)",
		},
		[]string{"result"},
	)

	PetMessageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pet_message_generation_seconds",
			Help:    "Duración de la llamada de generación de mensajes",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20},
		},
	)

	PetStat = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pet_stat",
			Help: "Valor actual de cada dimensión del ánimo",
		},
		[]string{"stat"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients_active",
			Help: "Clientes websocket conectados",
		},
	)

	WebSocketDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Mensajes descartados por buffers llenos",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_bus_published_total",
			Help: "Publicaciones en el bus de interacciones por resultado (published, error)",
		},
		[]string{"topic", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_bus_consumed_total",
			Help: "Mensajes consumidos del bus por resultado (consumed, failed, decode_error)",
		},
		[]string{"topic", "result"},
	)

	TextGenRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textgen_requests_total",
			Help: "Llamadas al backend de texto por provider y resultado",
		},
		[]string{"provider", "result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Requests HTTP",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de requests HTTP",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveStats publica el vector de ánimo.
func ObserveStats(happiness, energy, curiosity int) {
	PetStat.WithLabelValues("happiness").Set(float64(happiness))
	PetStat.WithLabelValues("energy").Set(float64(energy))
	PetStat.WithLabelValues("curiosity").Set(float64(curiosity))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
