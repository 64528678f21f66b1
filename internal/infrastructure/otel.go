package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/CayleighSitchon/water-quality-analysis/internal/config"
	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts"
)

const (
	ServiceName = "wqreport"
	MeterName   = "wqreport"
)

// Telemetry holds the tracer and meter for one CLI run. Metrics are gathered
// into a private Prometheus registry and written as a node_exporter textfile
// on Shutdown, since a batch run has no scrape endpoint.
type Telemetry struct {
	Tracer  trace.Tracer
	Meter   metric.Meter
	Metrics *PipelineMetrics

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *prometheus.Registry
	traceFile      *os.File
	metricsFile    string
	logger         *slog.Logger
}

// InitializeTelemetry sets up tracing and metrics according to cfg. With
// telemetry disabled the tracer is a no-op and metrics stay in memory.
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(contracts.Version),
	)

	t := &Telemetry{
		registry: prometheus.NewRegistry(),
		logger:   logger,
	}

	if cfg.Enabled && cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		t.traceFile = f
		t.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(t.tracerProvider)
		t.Tracer = t.tracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(contracts.Version))
	} else {
		t.Tracer = noop.NewTracerProvider().Tracer(MeterName)
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(t.registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	t.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.Meter = t.meterProvider.Meter(MeterName, metric.WithInstrumentationVersion(contracts.Version))

	t.Metrics, err = NewPipelineMetrics(t.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	if cfg.Enabled {
		t.metricsFile = cfg.MetricsFile
	}

	logger.Debug("Telemetry initialized",
		slog.Bool("enabled", cfg.Enabled),
		slog.String("trace_file", cfg.TraceFile),
		slog.String("metrics_file", cfg.MetricsFile))

	return t, nil
}

// Gatherer exposes the registry backing the meter provider.
func (t *Telemetry) Gatherer() prometheus.Gatherer {
	return t.registry
}

// Shutdown flushes spans, writes the metrics textfile if configured and
// releases the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.metricsFile != "" {
		if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
			errs = append(errs, err)
		} else if err := prometheus.WriteToTextfile(t.metricsFile, t.registry); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics textfile: %w", err))
		} else {
			t.logger.Info("Metrics written", slog.String("path", t.metricsFile))
		}
	}

	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if t.traceFile != nil {
		if err := t.traceFile.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// PipelineMetrics are the instruments recorded by the pipeline steps.
type PipelineMetrics struct {
	RowsLoaded     metric.Int64Counter
	RowsDropped    metric.Int64Counter
	ChartsRendered metric.Int64Counter
	StepDuration   metric.Float64Histogram
	StepErrors     metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"wq_rows_loaded",
		metric.WithDescription("Rows read from monthly workbooks"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"wq_rows_dropped",
		metric.WithDescription("Rows discarded by the cleaning filter"),
	)
	if err != nil {
		return nil, err
	}

	chartsRendered, err := meter.Int64Counter(
		"wq_charts_rendered",
		metric.WithDescription("Chart images written"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"wq_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepErrors, err := meter.Int64Counter(
		"wq_step_errors",
		metric.WithDescription("Pipeline steps that failed"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:     rowsLoaded,
		RowsDropped:    rowsDropped,
		ChartsRendered: chartsRendered,
		StepDuration:   stepDuration,
		StepErrors:     stepErrors,
	}, nil
}

// RecordCleaning records one month's load and drop counts.
func (m *PipelineMetrics) RecordCleaning(ctx context.Context, month string, total int, dropped map[string]int) {
	if m == nil {
		return
	}
	monthAttr := attribute.String("month", month)
	m.RowsLoaded.Add(ctx, int64(total), metric.WithAttributes(monthAttr))
	for reason, n := range dropped {
		m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(monthAttr, attribute.String("reason", reason)))
	}
}

// RecordChart counts a written chart of the given kind.
func (m *PipelineMetrics) RecordChart(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.ChartsRendered.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordStep records a step duration and, on failure, an error count.
func (m *PipelineMetrics) RecordStep(ctx context.Context, step string, seconds float64, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
		m.StepErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
	}
	m.StepDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
}
