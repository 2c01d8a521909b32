// Package normalizer cleans raw tables whose cells are all strings into typed
// tables.
//
// # Pipeline
//
// Normalizer.Normalize applies a fixed sequence of stages:
//
//	1. Column names: trim, lowercase, whitespace to "_", synonyms to canonical names
//	2. Text rules: NFKC, whitespace collapse, trim, case style, empty -> missing
//	3. Numeric rules: parse, fill (none, constant, mean, median), floor for integers
//	4. Date rules: day-first (or month-first) parsing, invalid -> missing
//	5. Trim every remaining string, empty -> missing
//	6. Drop exact duplicate rows, keeping the first occurrence
//	7. Move preferred columns to the front
//
// Every stage is total. A malformed cell becomes the missing marker, an
// absent column is skipped with a warning, and Normalize itself never fails.
//
// # Column operations
//
// The per-column functions (CleanText, CoerceNumeric, CoerceNumber, ParseDate)
// and the table functions (NormalizeColumnNames, Deduplicate, ReorderColumns,
// TrimStrings) are pure and can be used on their own:
//
//	ages := normalizer.CoerceNumeric(values, normalizer.FillMedian, 0)
//
// Numeric fill statistics are computed with exact decimal arithmetic, so the
// median of 25 and 30 is exactly 27.5 and floors to 27.
package normalizer
