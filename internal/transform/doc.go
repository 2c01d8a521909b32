// Package transform implements the report operations run over cleaned
// tables: row filters, sorting, grouped aggregation, top-N selection and
// descriptive statistics.
//
// Tables loaded back from a delimited file hold only strings. InferTypes
// restores integer, number and date columns so the other operations compare
// values by kind instead of by text.
package transform
