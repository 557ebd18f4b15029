// Package metrics implementa ports.Metrics con contadores Prometheus sobre un registry propio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Proyectos-api/internal/application/ports"
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus colectores de negocio y de HTTP.
type Prometheus struct {
	registry        *prometheus.Registry
	transitions     *prometheus.CounterVec
	accessDecisions *prometheus.CounterVec
	redemptions     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registra los colectores en un registry nuevo (más los de proceso y runtime de Go).
func New(namespace string) *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Prometheus{
		registry: reg,
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliverable_transitions_total",
			Help:      "Intentos de transición de entregables por arista y resultado",
		}, []string{"from", "to", "outcome"}),
		accessDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_decisions_total",
			Help:      "Decisiones de visibilidad por motivo",
		}, []string{"reason", "allowed"}),
		redemptions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitation_redemptions_total",
			Help:      "Canjes de invitación por resultado",
		}, []string{"outcome"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (p *Prometheus) TransitionObserved(from, to, outcome string) {
	p.transitions.WithLabelValues(from, to, outcome).Inc()
}

func (p *Prometheus) AccessDecided(reason string, allowed bool) {
	p.accessDecisions.WithLabelValues(reason, strconv.FormatBool(allowed)).Inc()
}

func (p *Prometheus) InvitationRedeemed(outcome string) {
	p.redemptions.WithLabelValues(outcome).Inc()
}

// ObserveRequest registra la duración de una petición. route es el patrón, no la URL concreta.
func (p *Prometheus) ObserveRequest(method, route string, status int, d time.Duration) {
	p.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler expone el registry en formato de texto Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry para tests.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}
