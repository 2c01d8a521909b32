package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"tablenorm/internal/config"
	apperrors "tablenorm/internal/errors"
)

// MeterName is the instrumentation scope of tracers and meters
const MeterName = "tablenorm"

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	TraceFile      string // spans are written here as JSON lines; empty disables tracing
	MetricsFile    string // Prometheus text format, written on Shutdown; empty disables
}

// OTelProviders holds the OpenTelemetry providers of one process
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *promclient.Registry
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *RunMetrics
	Logger         *slog.Logger

	traceFile   *os.File
	metricsFile string
}

// NewOTelConfig derives the OpenTelemetry configuration from the telemetry settings
func NewOTelConfig(cfg config.TelemetryConfig) *OTelConfig {
	return &OTelConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: config.AppVersion,
		TraceFile:      cfg.TraceFile,
		MetricsFile:    cfg.MetricsFile,
	}
}

// InitializeOTel sets up tracing and metrics and installs the providers as
// the OpenTelemetry globals.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = &OTelConfig{ServiceName: config.AppName, ServiceVersion: config.AppVersion}
	}
	if logger == nil {
		logger = GetLogger()
	}

	res := createResource(cfg)
	providers := &OTelProviders{
		Logger:      logger.With(slog.String("component", "telemetry")),
		metricsFile: cfg.MetricsFile,
	}

	if err := initializeTracing(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(cfg, res, providers); err != nil {
		providers.closeTraceFile()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	providers.Logger.Debug("OpenTelemetry initialized",
		slog.Bool("tracing_enabled", providers.TracerProvider != nil),
		slog.String("trace_file", cfg.TraceFile),
		slog.String("metrics_file", cfg.MetricsFile))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) *resource.Resource {
	hostname, _ := os.Hostname()
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("service.instance.id", fmt.Sprintf("%s-%d", hostname, os.Getpid())),
	)
}

// initializeTracing sets up span export to the trace file
func initializeTracing(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	if cfg.TraceFile == "" {
		providers.Tracer = otel.Tracer(MeterName)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	file, err := os.Create(cfg.TraceFile)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(file))
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	providers.traceFile = file
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	otel.SetTracerProvider(tp)
	return nil
}

// initializeMetrics sets up a meter provider read by a Prometheus exporter
// that registers into a private registry
func initializeMetrics(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	meter := mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	runMetrics, err := CreateRunMetrics(meter)
	if err != nil {
		_ = mp.Shutdown(context.Background())
		return fmt.Errorf("failed to create run metrics: %w", err)
	}

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = meter
	providers.Metrics = runMetrics

	otel.SetMeterProvider(mp)
	return nil
}

// WriteMetrics writes the current metric values to path in the Prometheus
// text format, for node_exporter's textfile collector or a later scrape.
func (p *OTelProviders) WriteMetrics(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := promclient.WriteToTextfile(path, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// Shutdown writes the metrics file, flushes pending spans and releases the
// providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.metricsFile != "" && p.Registry != nil {
		if err := p.WriteMetrics(p.metricsFile); err != nil {
			errs = append(errs, err)
		}
	}

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := p.closeTraceFile(); err != nil {
		errs = append(errs, fmt.Errorf("trace file close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %w", errors.Join(errs...))
	}
	return nil
}

func (p *OTelProviders) closeTraceFile() error {
	if p.traceFile == nil {
		return nil
	}
	err := p.traceFile.Close()
	p.traceFile = nil
	return err
}

// RunMetrics holds the instruments recorded once per processed file
type RunMetrics struct {
	FilesProcessed    metric.Int64Counter
	RowsRead          metric.Int64Counter
	RowsWritten       metric.Int64Counter
	DuplicatesRemoved metric.Int64Counter
	ValuesFilled      metric.Int64Counter
	ValuesUnparsed    metric.Int64Counter
	Duration          metric.Float64Histogram
}

// CreateRunMetrics creates the run instruments on meter
func CreateRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	var (
		m   RunMetrics
		err error
	)

	if m.FilesProcessed, err = meter.Int64Counter(
		"tablenorm_files_processed",
		metric.WithDescription("Number of input files processed"),
	); err != nil {
		return nil, err
	}

	if m.RowsRead, err = meter.Int64Counter(
		"tablenorm_rows_read",
		metric.WithDescription("Rows read from input files"),
	); err != nil {
		return nil, err
	}

	if m.RowsWritten, err = meter.Int64Counter(
		"tablenorm_rows_written",
		metric.WithDescription("Rows written to output files"),
	); err != nil {
		return nil, err
	}

	if m.DuplicatesRemoved, err = meter.Int64Counter(
		"tablenorm_duplicates_removed",
		metric.WithDescription("Duplicate rows dropped"),
	); err != nil {
		return nil, err
	}

	if m.ValuesFilled, err = meter.Int64Counter(
		"tablenorm_values_filled",
		metric.WithDescription("Missing numeric values replaced by the fill value"),
	); err != nil {
		return nil, err
	}

	if m.ValuesUnparsed, err = meter.Int64Counter(
		"tablenorm_values_unparsed",
		metric.WithDescription("Cells that could not be read as their column type"),
	); err != nil {
		return nil, err
	}

	if m.Duration, err = meter.Float64Histogram(
		"tablenorm_run_duration",
		metric.WithDescription("Time to read, clean and write one file"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RunRecord describes the outcome of processing one file
type RunRecord struct {
	RowsRead          int
	RowsWritten       int
	DuplicatesRemoved int
	ValuesFilled      int
	ValuesUnparsed    int
	Duration          time.Duration
	Err               error
}

// Record adds one processed file to the run metrics. A nil receiver is a no-op.
func (m *RunMetrics) Record(ctx context.Context, r RunRecord) {
	if m == nil {
		return
	}

	status := attribute.String("status", "success")
	attrs := []attribute.KeyValue{status}
	if r.Err != nil {
		status = attribute.String("status", "failure")
		errType := "UNKNOWN"
		if appErr, ok := apperrors.AsAppError(r.Err); ok {
			errType = string(appErr.Type)
		}
		attrs = []attribute.KeyValue{status, attribute.String("error_type", errType)}
	}

	m.FilesProcessed.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.Duration.Record(ctx, r.Duration.Seconds(), metric.WithAttributes(status))

	m.RowsRead.Add(ctx, int64(r.RowsRead))
	m.RowsWritten.Add(ctx, int64(r.RowsWritten))
	m.DuplicatesRemoved.Add(ctx, int64(r.DuplicatesRemoved))
	m.ValuesFilled.Add(ctx, int64(r.ValuesFilled))
	m.ValuesUnparsed.Add(ctx, int64(r.ValuesUnparsed))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
