// Package dataprocessing runs the file-level cleaning pipeline: validate the
// paths, read the input, normalize the table, write the output and summarize.
//
// # Usage
//
//	settings, err := dataprocessing.SettingsFromConfig(cfg)
//	processor, err := dataprocessing.NewProcessor(settings, providers.Metrics, logger)
//	result, err := processor.Process(ctx, dataprocessing.Job{
//	    Input:  "messy_data.csv",
//	    Output: "cleaned_data.csv",
//	})
//	result.Summary.Render(os.Stdout)
//
// # Batch mode
//
// PlanBatch turns a directory into jobs and ProcessBatch runs them with
// errgroup, at most Settings.Workers at a time. Each job reads, cleans and
// writes its own table, and a failed job does not stop the others.
//
// # Error Handling
//
// Errors are AppErrors from internal/errors: NOT_FOUND or INPUT for a missing
// or empty input, PARSING for malformed delimited text, VALIDATION for bad
// paths and STORAGE when the output cannot be written. Malformed cells and
// missing columns are not errors; they show up in the Summary.
package dataprocessing
