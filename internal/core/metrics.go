// AngelaMos | 2026
// metrics.go

package core

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/science-ai/backend/internal/config"
)

// Metrics owns the application instruments. A disabled Metrics records into
// a no-op meter so callers never branch on configuration.
type Metrics struct {
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry

	usageIncrements    metric.Int64Counter
	usageSkipped       metric.Int64Counter
	quotaDenials       metric.Int64Counter
	usageResets        metric.Int64Counter
	citationsFormatted metric.Int64Counter
	bibliographyExport metric.Int64Counter
}

func NewMetrics(cfg config.MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return newMetricsFromMeter(noop.NewMeterProvider().Meter(instrumentationName), nil, nil)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return newMetricsFromMeter(provider.Meter(instrumentationName), provider, registry)
}

func newMetricsFromMeter(
	meter metric.Meter,
	provider *sdkmetric.MeterProvider,
	registry *prometheus.Registry,
) (*Metrics, error) {
	m := &Metrics{provider: provider, registry: registry}

	var err error

	m.usageIncrements, err = meter.Int64Counter(
		"science_ai_usage_increments",
		metric.WithDescription("Units added to usage counters"),
	)
	if err != nil {
		return nil, fmt.Errorf("create usage increments counter: %w", err)
	}

	m.usageSkipped, err = meter.Int64Counter(
		"science_ai_usage_skipped",
		metric.WithDescription("Usage entries ignored as invalid"),
	)
	if err != nil {
		return nil, fmt.Errorf("create usage skipped counter: %w", err)
	}

	m.quotaDenials, err = meter.Int64Counter(
		"science_ai_quota_denials",
		metric.WithDescription("Quota checks that refused an action"),
	)
	if err != nil {
		return nil, fmt.Errorf("create quota denials counter: %w", err)
	}

	m.usageResets, err = meter.Int64Counter(
		"science_ai_usage_resets",
		metric.WithDescription("Daily and monthly counter resets applied"),
	)
	if err != nil {
		return nil, fmt.Errorf("create usage resets counter: %w", err)
	}

	m.citationsFormatted, err = meter.Int64Counter(
		"science_ai_citations_formatted",
		metric.WithDescription("Citations rendered, by style"),
	)
	if err != nil {
		return nil, fmt.Errorf("create citations counter: %w", err)
	}

	m.bibliographyExport, err = meter.Int64Counter(
		"science_ai_bibliography_exports",
		metric.WithDescription("Bibliography exports, by format"),
	)
	if err != nil {
		return nil, fmt.Errorf("create exports counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordUsageIncrement(ctx context.Context, counter string, amount int64) {
	m.usageIncrements.Add(ctx, amount,
		metric.WithAttributes(attribute.String("counter", counter)))
}

func (m *Metrics) RecordUsageSkipped(ctx context.Context, reason string) {
	m.usageSkipped.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) RecordQuotaDenied(ctx context.Context, plan, counter string) {
	m.quotaDenials.Add(ctx, 1, metric.WithAttributes(
		attribute.String("plan", plan),
		attribute.String("counter", counter),
	))
}

func (m *Metrics) RecordReset(ctx context.Context, kind string) {
	m.usageResets.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordCitation(ctx context.Context, style string, count int) {
	m.citationsFormatted.Add(ctx, int64(count),
		metric.WithAttributes(attribute.String("style", style)))
}

func (m *Metrics) RecordExport(ctx context.Context, format string) {
	m.bibliographyExport.Add(ctx, 1,
		metric.WithAttributes(attribute.String("format", format)))
}

// Handler serves the Prometheus exposition format. It answers 404 when
// metrics are disabled.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	if err := m.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}
	return nil
}
