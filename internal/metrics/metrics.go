package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RentalTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_transitions_total",
			Help: "Rental state transitions by resulting status",
		},
		[]string{"status"},
	)
	AllocationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rental_allocation_out_of_stock_total",
			Help: "Rental creations rejected because the vehicle had no stock left",
		},
	)
	PaymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "Payments recorded by transaction status",
		},
		[]string{"status"},
	)
	SettlementsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inspections_settled_total",
			Help: "Return inspections settled",
		},
	)
	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_event_publish_failures_total",
			Help: "Domain events that could not be handed to the broker",
		},
		[]string{"type"},
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by the mux route
// template, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		RequestTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
