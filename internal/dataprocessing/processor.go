package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "tablenorm/internal/errors"
	"tablenorm/internal/exporter"
	"tablenorm/internal/files"
	"tablenorm/internal/infrastructure"
	"tablenorm/internal/normalizer"
	"tablenorm/internal/table"
	"tablenorm/internal/validation"
)

// Job names one input file and where its cleaned table goes
type Job struct {
	Input  string
	Output string
}

// Result is the outcome of one Job. Table, Stats and Summary are only set
// when Err is nil.
type Result struct {
	Job      Job
	Table    *table.Table
	Stats    normalizer.Stats
	Summary  Summary
	Duration time.Duration
	Err      error
}

// Processor runs the validate, read, normalize and write pipeline for one
// file at a time. It holds no per-job state, so one Processor can serve
// concurrent jobs.
type Processor struct {
	settings   Settings
	validator  *validation.FileValidator
	reader     *files.Reader
	normalizer *normalizer.Normalizer
	exporter   *exporter.Exporter
	metrics    *infrastructure.RunMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewProcessor creates a processor. metrics may be nil.
func NewProcessor(settings Settings, metrics *infrastructure.RunMetrics, logger *slog.Logger) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	norm, err := normalizer.New(settings.Normalizer, logger)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid cleaning configuration", err)
	}
	if settings.Workers < 1 {
		settings.Workers = 1
	}

	p := &Processor{
		settings:   settings,
		validator:  validation.NewFileValidator(logger),
		reader:     files.NewReader(logger),
		normalizer: norm,
		exporter:   exporter.New(settings.Export, logger),
		metrics:    metrics,
		tracer:     otel.Tracer(infrastructure.MeterName),
		logger:     logger.With(slog.String("component", "processor")),
	}
	p.logger.Debug("processor configured", slog.String("settings", settings.String()))
	return p, nil
}

// Process cleans job.Input into job.Output. Either the complete output file
// is written or nothing is: invalid paths, unreadable input and cancellation
// all stop the job before the output is touched.
func (p *Processor) Process(ctx context.Context, job Job) (*Result, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := p.tracer.Start(ctx, "process",
		trace.WithAttributes(
			attribute.String("input", job.Input),
			attribute.String("output", job.Output)))
	defer span.End()

	start := time.Now()
	result, err := p.process(ctx, job)
	result.Duration = time.Since(start)

	record := infrastructure.RunRecord{Duration: result.Duration, Err: err}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		p.metrics.Record(ctx, record)
		p.logger.ErrorContext(ctx, "file processing failed",
			slog.String("input", job.Input),
			slog.String("output", job.Output),
			slog.String("error", err.Error()))
		result.Err = err
		return result, err
	}

	filled, unparsed := 0, 0
	for _, cs := range result.Stats.Columns {
		filled += cs.Filled
		unparsed += cs.Unparsed
	}
	record.RowsRead = result.Stats.RowsIn
	record.RowsWritten = result.Stats.RowsOut
	record.DuplicatesRemoved = result.Stats.DuplicatesRemoved
	record.ValuesFilled = filled
	record.ValuesUnparsed = unparsed
	p.metrics.Record(ctx, record)

	p.logger.InfoContext(ctx, "file processed",
		slog.String("input", job.Input),
		slog.String("output", job.Output),
		slog.Int("rows_read", record.RowsRead),
		slog.Int("rows_written", record.RowsWritten),
		slog.Int("duplicates_removed", record.DuplicatesRemoved),
		slog.Duration("duration", result.Duration))
	return result, nil
}

func (p *Processor) process(ctx context.Context, job Job) (*Result, error) {
	result := &Result{Job: job}

	if err := p.validate(job); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("processing %s: %w", job.Input, err)
	}

	raw, err := p.reader.Load(ctx, job.Input, p.settings.Read)
	if err != nil {
		return result, err
	}

	cleaned, stats := p.normalizer.Normalize(ctx, raw)
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("processing %s: %w", job.Input, err)
	}

	if err := p.exporter.Export(ctx, job.Output, cleaned); err != nil {
		return result, err
	}

	result.Table = cleaned
	result.Stats = stats
	result.Summary = Summarize(job, cleaned, stats, p.settings.PreviewRows)
	return result, nil
}

func (p *Processor) validate(job Job) error {
	if err := p.validator.ValidateInputFile(job.Input); err != nil {
		return err
	}
	if err := p.validator.ValidateOutputPath(job.Output); err != nil {
		return err
	}
	return p.validator.ValidateDistinctPaths(job.Input, job.Output)
}
