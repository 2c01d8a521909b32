package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "tablenorm/internal/errors"
	"tablenorm/internal/exporter"
	"tablenorm/internal/files"
	"tablenorm/internal/infrastructure"
)

const cleanedSuffix = "_cleaned"

// PlanBatch lists the loadable files of inDir as jobs writing to outDir. Each
// output keeps the input's base name with a "_cleaned" suffix; format selects
// the output extension ("csv", "parquet", ...) and empty keeps the input's.
// Files that are themselves cleaned outputs are skipped. Two inputs that
// would share an output path, such as a.csv and a.tsv with format "csv", are
// a VALIDATION error.
func (p *Processor) PlanBatch(inDir, outDir, format string) ([]Job, error) {
	if err := p.validator.ValidateInputDirectory(inDir); err != nil {
		return nil, err
	}

	ext := ""
	if format != "" {
		f, err := exporter.FormatForPath("out." + strings.TrimPrefix(format, "."))
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		ext = f.Extension()
	}

	found, err := files.NewDiscovery("").FindTableFiles(inDir)
	if err != nil {
		return nil, apperrors.NewInputError("failed to list input directory", err).WithContext("path", inDir)
	}

	manager := files.NewManager(p.logger)
	jobs := make([]Job, 0, len(found))
	planned := make(map[string]string, len(found))
	for _, fi := range found {
		stem := strings.TrimSuffix(fi.Name, filepath.Ext(fi.Name))
		if strings.HasSuffix(stem, cleanedSuffix) {
			continue
		}
		output := manager.OutputPath(fi.Path, outDir, ext)
		if other, taken := planned[output]; taken {
			return nil, apperrors.NewValidationError(fmt.Sprintf(
				"%s and %s would both be written to %s; rename one of them or choose another output format",
				other, fi.Path, output))
		}
		planned[output] = fi.Path
		jobs = append(jobs, Job{Input: fi.Path, Output: output})
	}

	p.logger.Info("batch planned",
		slog.String("input_dir", inDir),
		slog.String("output_dir", outDir),
		slog.Int("files", len(jobs)))
	return jobs, nil
}

// ProcessBatch runs independent jobs with at most Settings.Workers in flight.
// Results come back in job order. A failing job does not stop the others;
// the returned error joins every job error. Jobs not yet started when ctx is
// cancelled fail with the context's error.
func (p *Processor) ProcessBatch(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(p.settings.Workers)

	for i, job := range jobs {
		g.Go(func() error {
			jobCtx := infrastructure.WithTraceID(ctx, infrastructure.GenerateTraceID())
			if err := jobCtx.Err(); err != nil {
				results[i] = Result{Job: job, Err: fmt.Errorf("processing %s: %w", job.Input, err)}
				return nil
			}
			res, _ := p.Process(jobCtx, job)
			results[i] = *res
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}

	p.logger.InfoContext(ctx, "batch finished",
		slog.Int("files", len(jobs)),
		slog.Int("failed", len(errs)),
		slog.Int("workers", p.settings.Workers))

	if len(errs) > 0 {
		return results, fmt.Errorf("%d of %d files failed: %w", len(errs), len(jobs), errors.Join(errs...))
	}
	return results, nil
}
