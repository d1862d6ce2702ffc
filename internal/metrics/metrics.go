// Package metrics exports booking and gRPC counters to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nutrition-scheduler/internal/booking"
)

const namespace = "nutrition"

type Metrics struct {
	reg *prometheus.Registry

	Transitions     *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers all collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Appointment state transitions by operation and outcome",
		}, []string{"op", "result"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_notifications_total",
			Help:      "Notification dispatches by kind and outcome",
		}, []string{"kind", "result"}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "Unary gRPC requests by method and status code",
		}, []string{"method", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "Unary gRPC latency",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method"}),
	}
}

func (m *Metrics) ObserveTransition(op string, err error) {
	m.Transitions.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) ObserveNotification(kind string, err error) {
	r := "ok"
	if err != nil {
		r = "error"
	}
	m.Notifications.WithLabelValues(kind, r).Inc()
}

func (m *Metrics) ObserveRequest(method, code string, d time.Duration) {
	m.Requests.WithLabelValues(method, code).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, booking.ErrNotFound):
		return "not_found"
	case errors.Is(err, booking.ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, booking.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}

var _ booking.Recorder = (*Metrics)(nil)
