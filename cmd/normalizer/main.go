package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tablenorm/internal/config"
	"tablenorm/internal/dataprocessing"
	apperrors "tablenorm/internal/errors"
	"tablenorm/internal/files"
	"tablenorm/internal/infrastructure"
)

// cliOptions holds the command line. Only flags the user actually set
// override the file and environment configuration.
type cliOptions struct {
	configPath string
	in         string
	out        string
	batchDir   string
	outDir     string
	format     string
	fill       string
	dateOrder  string
	workers    int
	logLevel   string
	metrics    string
	trace      string
	summary    string
	sample     bool

	set map[string]bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	opts := &cliOptions{set: make(map[string]bool)}

	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file (defaults to tablenorm.yaml or configs/tablenorm.yaml when present)")
	fs.StringVar(&opts.in, "in", "", "input file (defaults to "+config.DefaultSampleInput+")")
	fs.StringVar(&opts.out, "out", "", "output file; the extension selects the format (defaults to "+config.DefaultSampleOutput+")")
	fs.StringVar(&opts.batchDir, "batch", "", "clean every table file in this directory instead of -in")
	fs.StringVar(&opts.outDir, "out-dir", "", "output directory for -batch (defaults to the batch directory)")
	fs.StringVar(&opts.format, "format", "", "output format for -batch: csv, tsv, xlsx, parquet or db (defaults to the input's)")
	fs.StringVar(&opts.fill, "fill", "", "fill strategy for missing numbers: none, constant, mean or median")
	fs.StringVar(&opts.dateOrder, "date-order", "", "order of ambiguous dates: DMY or MDY")
	fs.IntVar(&opts.workers, "workers", 0, "files cleaned concurrently in batch mode")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&opts.metrics, "metrics", "", "write run metrics to this file in Prometheus text format")
	fs.StringVar(&opts.trace, "trace", "", "write trace spans to this file as JSON")
	fs.StringVar(&opts.summary, "summary", "", "write the run summary to this file as JSON")
	fs.BoolVar(&opts.sample, "sample", false, "create the sample messy input at -in when it does not exist")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// applyFlags overrides cfg with the flags that were set and fills in the
// default sample paths for single-file runs.
func applyFlags(cfg *config.Config, opts *cliOptions) {
	if opts.set["in"] {
		cfg.Input.File = opts.in
	}
	if opts.set["out"] {
		cfg.Output.File = opts.out
	}
	if opts.set["batch"] {
		cfg.Input.Dir = opts.batchDir
	}
	if opts.set["out-dir"] {
		cfg.Output.Dir = opts.outDir
	}
	if opts.set["fill"] {
		cfg.Cleaning.Fill = opts.fill
	}
	if opts.set["date-order"] {
		cfg.Cleaning.DateOrder = opts.dateOrder
	}
	if opts.set["workers"] {
		cfg.Workers = opts.workers
	}
	if opts.set["log-level"] {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.set["metrics"] {
		cfg.Telemetry.MetricsFile = opts.metrics
	}
	if opts.set["trace"] {
		cfg.Telemetry.TraceFile = opts.trace
	}

	if cfg.Input.Dir != "" {
		if cfg.Output.Dir == "" {
			cfg.Output.Dir = cfg.Input.Dir
		}
		return
	}
	if cfg.Input.File == "" {
		cfg.Input.File = config.DefaultSampleInput
	}
	if cfg.Output.File == "" {
		cfg.Output.File = config.DefaultSampleOutput
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return apperrors.ExitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return apperrors.ExitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fail(stderr, err)
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return fail(stderr, err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(stderr, "Warning: failed to initialize logger, using default:", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return fail(stderr, apperrors.NewConfigError("failed to initialize telemetry", err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Error("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.WithTraceID(ctx, infrastructure.GenerateTraceID())

	logger.InfoContext(ctx, "Starting tablenorm",
		slog.String("version", config.AppVersion),
		slog.String("input", cfg.Input.File),
		slog.String("input_dir", cfg.Input.Dir),
		slog.String("output", cfg.Output.File),
		slog.String("output_dir", cfg.Output.Dir))

	if opts.sample {
		if cfg.Input.Dir != "" {
			return fail(stderr, apperrors.NewValidationError("-sample cannot be combined with -batch"))
		}
		created, err := files.NewManager(logger).EnsureSample(cfg.Input.File)
		if err != nil {
			return fail(stderr, apperrors.NewStorageError("failed to create sample input", err))
		}
		if created {
			fmt.Fprintf(stdout, "Sample input written to %s\n", cfg.Input.File)
		}
	}

	settings, err := dataprocessing.SettingsFromConfig(cfg)
	if err != nil {
		return fail(stderr, err)
	}
	processor, err := dataprocessing.NewProcessor(settings, providers.Metrics, logger)
	if err != nil {
		return fail(stderr, err)
	}

	var summaries []dataprocessing.Summary
	var runErr error
	if cfg.Input.Dir != "" {
		summaries, runErr = runBatch(ctx, processor, cfg, opts.format, stdout)
	} else {
		summaries, runErr = runSingle(ctx, processor, cfg, stdout)
	}

	if opts.summary != "" && len(summaries) > 0 {
		if err := dataprocessing.WriteSummaryJSON(ctx, opts.summary, summaries, logger); err != nil {
			fmt.Fprintln(stderr, "Warning:", err)
		}
	}

	if runErr != nil {
		logger.ErrorContext(ctx, "Run failed", slog.String("error", runErr.Error()))
		return fail(stderr, runErr)
	}
	logger.InfoContext(ctx, "Run completed", slog.Int("files", len(summaries)))
	return apperrors.ExitOK
}

func runSingle(ctx context.Context, p *dataprocessing.Processor, cfg *config.Config, stdout io.Writer) ([]dataprocessing.Summary, error) {
	if cfg.Output.File == "" {
		return nil, apperrors.NewValidationError("no output file given")
	}

	fmt.Fprintf(stdout, "Cleaning %s\n", cfg.Input.File)
	result, err := p.Process(ctx, dataprocessing.Job{Input: cfg.Input.File, Output: cfg.Output.File})
	if err != nil {
		return nil, err
	}

	if err := result.Summary.Render(stdout); err != nil {
		return nil, fmt.Errorf("failed to print summary: %w", err)
	}
	return []dataprocessing.Summary{result.Summary}, nil
}

func runBatch(ctx context.Context, p *dataprocessing.Processor, cfg *config.Config, format string, stdout io.Writer) ([]dataprocessing.Summary, error) {
	jobs, err := p.PlanBatch(cfg.Input.Dir, cfg.Output.Dir, format)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(stdout, "Found %d table files in %s\n", len(jobs), cfg.Input.Dir)
	if len(jobs) == 0 {
		return nil, nil
	}

	results, batchErr := p.ProcessBatch(ctx, jobs)

	var summaries []dataprocessing.Summary
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(stdout, "FAILED %s: %v\n", r.Job.Input, r.Err)
			continue
		}
		fmt.Fprintf(stdout, "OK     %s -> %s (%d rows, %d duplicates removed)\n",
			r.Job.Input, r.Job.Output, r.Summary.RowsWritten, r.Summary.DuplicatesRemoved)
		summaries = append(summaries, r.Summary)
	}
	fmt.Fprintf(stdout, "Cleaned %d of %d files\n", len(summaries), len(jobs))

	if batchErr != nil {
		// a batch with failures is a processing failure even when one of
		// them was a bad output path
		return summaries, apperrors.NewAppError(apperrors.ErrTypeInput, "batch incomplete", batchErr)
	}
	return summaries, nil
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, "Error:", err)
	return apperrors.ExitCode(err)
}
