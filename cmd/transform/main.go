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

	"tablenorm/internal/config"
	"tablenorm/internal/dataprocessing"
	apperrors "tablenorm/internal/errors"
	"tablenorm/internal/exporter"
	"tablenorm/internal/files"
	"tablenorm/internal/infrastructure"
	"tablenorm/internal/table"
	"tablenorm/internal/transform"
	"tablenorm/internal/validation"
)

type cliOptions struct {
	configPath string
	in         string
	out        string
	filter     string
	sortBy     string
	desc       bool
	group      string
	value      string
	agg        string
	top        string
	n          int
	describe   bool
	quiet      bool
}

// step is one transformation applied to the table produced by the previous one
type step struct {
	title string
	apply func(*table.Table) (*table.Table, error)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	opts := &cliOptions{}

	fs := flag.NewFlagSet("transform", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file for input and output options")
	fs.StringVar(&opts.in, "in", "", "input table, usually a cleaned file (required)")
	fs.StringVar(&opts.out, "out", "", "write the final table to this file; the extension selects the format")
	fs.StringVar(&opts.filter, "filter", "", "keep rows matching a numeric comparison, e.g. 'salary>45000'")
	fs.StringVar(&opts.sortBy, "sort", "", "sort rows by this column")
	fs.BoolVar(&opts.desc, "desc", false, "sort in descending order")
	fs.StringVar(&opts.group, "group", "", "group rows by this column (requires -value)")
	fs.StringVar(&opts.value, "value", "", "column aggregated per group")
	fs.StringVar(&opts.agg, "agg", string(transform.AggMean), "aggregation: mean, sum, count, min, max or median")
	fs.StringVar(&opts.top, "top", "", "keep the rows with the largest values in this column")
	fs.IntVar(&opts.n, "n", 1, "number of rows kept by -top")
	fs.BoolVar(&opts.describe, "describe", false, "replace the table with summary statistics of its numeric columns")
	fs.BoolVar(&opts.quiet, "quiet", false, "print only the final table")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.in == "" {
		return nil, errors.New("-in is required")
	}
	if opts.group != "" && opts.value == "" {
		return nil, errors.New("-group requires -value")
	}
	return opts, nil
}

// buildSteps turns the options into the ordered pipeline filter, sort, top,
// group, describe. Flag values are checked here so that nothing is read when
// one of them is invalid.
func buildSteps(opts *cliOptions) ([]step, error) {
	var steps []step

	if opts.filter != "" {
		pred, err := transform.ParsePredicate(opts.filter)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		steps = append(steps, step{
			title: "Filter: " + pred.String(),
			apply: func(t *table.Table) (*table.Table, error) { return transform.Filter(t, pred) },
		})
	}

	if opts.sortBy != "" {
		order := "ascending"
		if opts.desc {
			order = "descending"
		}
		steps = append(steps, step{
			title: fmt.Sprintf("Sorted by %s (%s)", opts.sortBy, order),
			apply: func(t *table.Table) (*table.Table, error) { return transform.SortBy(t, opts.sortBy, opts.desc) },
		})
	}

	if opts.top != "" {
		if opts.n < 1 {
			return nil, apperrors.NewValidationError(fmt.Sprintf("-n must be positive, got %d", opts.n))
		}
		steps = append(steps, step{
			title: fmt.Sprintf("Top %d by %s", opts.n, opts.top),
			apply: func(t *table.Table) (*table.Table, error) { return transform.Top(t, opts.top, opts.n) },
		})
	}

	if opts.group != "" {
		agg, err := transform.ParseAggregation(opts.agg)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		steps = append(steps, step{
			title: fmt.Sprintf("%s of %s by %s", agg, opts.value, opts.group),
			apply: func(t *table.Table) (*table.Table, error) {
				return transform.GroupAggregate(t, opts.group, opts.value, agg)
			},
		})
	}

	if opts.describe {
		steps = append(steps, step{
			title: "Summary statistics",
			apply: func(t *table.Table) (*table.Table, error) { return transform.Describe(t), nil },
		})
	}

	return steps, nil
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

	steps, err := buildSteps(opts)
	if err != nil {
		return fail(stderr, err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fail(stderr, err)
	}
	if err := cfg.Validate(); err != nil {
		return fail(stderr, err)
	}
	settings, err := dataprocessing.SettingsFromConfig(cfg)
	if err != nil {
		return fail(stderr, err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(stderr, "Warning: failed to initialize logger, using default:", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()
	logger = logger.With(slog.String("component", "transform"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.WithTraceID(ctx, infrastructure.GenerateTraceID())

	if err := runSteps(ctx, opts, settings, steps, stdout, logger); err != nil {
		logger.ErrorContext(ctx, "Transform failed", slog.String("error", err.Error()))
		return fail(stderr, err)
	}
	return apperrors.ExitOK
}

func runSteps(ctx context.Context, opts *cliOptions, settings dataprocessing.Settings, steps []step, stdout io.Writer, logger *slog.Logger) error {
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputFile(opts.in); err != nil {
		return err
	}
	if opts.out != "" {
		if err := validator.ValidateOutputPath(opts.out); err != nil {
			return err
		}
		if err := validator.ValidateDistinctPaths(opts.in, opts.out); err != nil {
			return err
		}
	}

	raw, err := files.NewReader(logger).Load(ctx, opts.in, settings.Read)
	if err != nil {
		return err
	}
	current := transform.InferTypes(raw)
	logger.InfoContext(ctx, "Table loaded",
		slog.String("input", opts.in),
		slog.Int("rows", current.NumRows()),
		slog.Int("columns", current.NumColumns()))

	if !opts.quiet || len(steps) == 0 {
		printTable(stdout, "Original data", current)
	}

	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := s.apply(current)
		if err != nil {
			return apperrors.NewValidationError(fmt.Sprintf("%s: %v", s.title, err))
		}
		current = next
		logger.DebugContext(ctx, "Step applied",
			slog.String("step", s.title),
			slog.Int("rows", current.NumRows()))

		if !opts.quiet || i == len(steps)-1 {
			printTable(stdout, s.title, current)
		}
	}

	if opts.out == "" {
		return nil
	}
	if err := exporter.New(settings.Export, logger).Export(ctx, opts.out, current); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %d rows to %s\n", current.NumRows(), opts.out)
	return nil
}

func printTable(w io.Writer, title string, t *table.Table) {
	fmt.Fprintf(w, "---- %s (%d rows) ----\n", title, t.NumRows())
	fmt.Fprintln(w, dataprocessing.RenderTable(t.Columns(), t.Records()))
	fmt.Fprintln(w)
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, "Error:", err)
	return apperrors.ExitCode(err)
}
