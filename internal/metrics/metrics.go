// Package metrics exposes the Prometheus counters shared across services:
// processed/errors/fallback-used-rate and per-queue depth. A Registry is a
// struct of vectors, constructed once, registered with the default
// registry, and exposed over promhttp.
package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Registry holds every metric a pipeline component can record against.
// component labels are the five service names (newspoller, marketstreamer,
// sentimentprocessor, signalcacher, strategyjoin).
type Registry struct {
	Processed       *prometheus.CounterVec
	Errors          *prometheus.CounterVec
	FallbackUsed    *prometheus.CounterVec
	QueueDepth      *prometheus.GaugeVec
}

func NewRegistry() *Registry {
	r := &Registry{
		Processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentipipe_processed_total",
			Help: "Total number of messages successfully processed by component",
		}, []string{"component"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentipipe_errors_total",
			Help: "Total number of processing errors by component and error kind",
		}, []string{"component", "kind"}),
		FallbackUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentipipe_fallback_used_total",
			Help: "Total number of sentiment signals produced by a non-primary oracle",
		}, []string{"model"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sentipipe_queue_depth",
			Help: "Last observed depth of a broker queue",
		}, []string{"queue"}),
	}

	prometheus.MustRegister(r.Processed, r.Errors, r.FallbackUsed, r.QueueDepth)
	return r
}

func (r *Registry) RecordProcessed(component string) {
	r.Processed.WithLabelValues(component).Inc()
}

func (r *Registry) RecordError(component, kind string) {
	r.Errors.WithLabelValues(component, kind).Inc()
}

func (r *Registry) RecordFallbackUsed(model string) {
	r.FallbackUsed.WithLabelValues(model).Inc()
}

func (r *Registry) SetQueueDepth(queue string, depth float64) {
	r.QueueDepth.WithLabelValues(queue).Set(depth)
}

// Handler exposes the registry over /metrics for Prometheus scraping.
func (r *Registry) Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer launches the shared /metrics and /healthz HTTP server every
// service binary exposes, routed through gorilla/mux. It returns
// immediately; the server runs in a background goroutine until the
// process exits.
func (r *Registry) StartServer(port string) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", r.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return srv
}
