package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/wecode/proxyman/app"
	"github.com/wecode/proxyman/pmux"
)

var _ app.Service = &Metrics{}

type Metrics struct {
	registry *prometheus.Registry
	picks    *prometheus.CounterVec
	enabled  bool
	server   *http.Server
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	picks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "proxyman",
		Subsystem: "registry",
		Name:      "picks_total",
		Help:      "Descriptors handed out by the registry.",
	}, []string{"proxy", "fallback"})
	registry.MustRegister(picks, collectors.NewGoCollector())
	return &Metrics{
		registry: registry,
		picks:    picks,
	}
}

func (m *Metrics) Configure(c app.Config) error {
	m.enabled = c.BoolOr("enable", false)
	m.server = &http.Server{
		Addr:              c.StrOr("addr", "localhost:2112"),
		Handler:           m.Handler(),
		ReadHeaderTimeout: c.DurOr("read_timeout", 5*time.Second),
	}
	return nil
}

func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return mux
}

// ObservePick counts a descriptor handed out by the registry
func (m *Metrics) ObservePick(d pmux.Descriptor, fallback bool) {
	m.picks.WithLabelValues(d.String(), strconv.FormatBool(fallback)).Inc()
}

func (m *Metrics) Start(ctx app.Context) {
	if !m.enabled || m.server == nil {
		return
	}
	go m.main(ctx)
}

func (m *Metrics) main(ctx app.Context) {
	go func() {
		<-ctx.Done()
		m.server.Close()
	}()
	log.Info().Str("addr", m.server.Addr).Msg("serving metrics")
	err := m.server.ListenAndServe()
	if err != http.ErrServerClosed {
		log.Err(err).Msg("metrics server stopped")
	}
}
