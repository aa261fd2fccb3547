// Package metrics defines the Prometheus collectors of the CRM.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

type Metrics struct {
	Logins             *prometheus.CounterVec   // result: success, failure
	ClientsImported    prometheus.Counter       // rows committed by imports
	ImportRowsSkipped  *prometheus.CounterVec   // reason: missing_name, missing_email, ...
	ImportDuration     *prometheus.HistogramVec // outcome: ok, denied, rejected, failed
	HTTPRequests       *prometheus.CounterVec   // method, route, status
	HTTPRequestLatency *prometheus.HistogramVec // method, route
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		ClientsImported: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clients_imported_total",
			Help:      "Clients inserted by bulk import.",
		}),
		ImportRowsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_skipped_total",
			Help:      "Import rows skipped, by reason.",
		}, []string{"reason"}),
		ImportDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Duration of bulk imports.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// NewNop returns collectors registered on a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
