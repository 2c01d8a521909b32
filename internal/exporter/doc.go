// Package exporter writes cleaned tables to disk.
//
// The output format follows the file extension:
//
//	.csv, .tsv       delimited text, dates as YYYY-MM-DD, missing as an empty field
//	.xlsx            one worksheet with typed cells and yyyy-mm-dd dates
//	.parquet         typed, nullable columns (int64, float64, date32, string)
//	.db, .sqlite     a SQLite database holding one table, "cleaned" by default
//
// Every sink writes to a temporary file next to the target and renames it into
// place, so a failed export never leaves a partial output behind.
//
// Example usage:
//
//	exp := exporter.New(exporter.Options{}, logger)
//	err := exp.Export(ctx, "cleaned_data.csv", cleaned)
package exporter
