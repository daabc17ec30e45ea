package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	Port        int
}

// Engine-level counters, registered on the default Prometheus registry.
var (
	// AssessmentsTotal counts completed assessments by risk category.
	AssessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_completed_total",
		Help: "Completed loan assessments by risk category.",
	}, []string{"risk_category"})

	// CollaboratorFailures counts recoverable AI collaborator failures by
	// signal source. These never fail a request; the signal is dropped.
	CollaboratorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_collaborator_failures_total",
		Help: "Recoverable AI collaborator failures by signal source.",
	}, []string{"source"})
)

// InitMetrics initializes the Prometheus metrics exporter.
// Returns the MeterProvider and an HTTP handler for /metrics endpoint.
func InitMetrics(_ MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	handler := promhttp.Handler()

	return provider, handler, nil
}
