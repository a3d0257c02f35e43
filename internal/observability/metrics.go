// Package observability wires OpenTelemetry tracing and metrics for the
// service.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics installs a global meter provider backed by a Prometheus
// exporter. It returns the /metrics handler and a shutdown function.
func InitMetrics() (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(
		metric.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)

	return promhttp.Handler(), provider.Shutdown, nil
}

// StatusCounter reports how many jobs are in each status.
type StatusCounter func(ctx context.Context) (map[string]int64, error)

// RegisterJobGauge exposes transcode.jobs{status}, evaluated on every
// scrape. Counting errors are logged and the scrape carries on without the
// gauge.
func RegisterJobGauge(meter otelmetric.Meter, count StatusCounter, logger *slog.Logger) error {
	_, err := meter.Int64ObservableGauge("transcode.jobs",
		otelmetric.WithDescription("Current number of jobs by status"),
		otelmetric.WithInt64Callback(func(ctx context.Context, obs otelmetric.Int64Observer) error {
			counts, err := count(ctx)
			if err != nil {
				logger.Warn("failed to count jobs for metrics", "error", err)
				return nil
			}
			for status, n := range counts {
				obs.Observe(n, otelmetric.WithAttributes(attribute.String("status", status)))
			}
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to register job gauge: %w", err)
	}
	return nil
}
