package normalizer

import "fmt"

// ColumnType is the declared target type of a cleaned column.
type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeInteger ColumnType = "integer"
	TypeNumber  ColumnType = "number"
	TypeDate    ColumnType = "date"
)

// CaseStyle selects the letter case applied by CleanText.
type CaseStyle string

const (
	CaseTitle CaseStyle = "title"
	CaseLower CaseStyle = "lower"
	CaseUpper CaseStyle = "upper"
	CaseNone  CaseStyle = "none"
)

// FillStrategy is the policy for replacing missing numeric values.
type FillStrategy string

const (
	FillNone     FillStrategy = "none"
	FillConstant FillStrategy = "constant"
	FillMean     FillStrategy = "mean"
	FillMedian   FillStrategy = "median"
)

// DateOrder is the convention used to read ambiguous A-B-YYYY dates.
type DateOrder string

const (
	// DayFirst reads 10-02-2021 as 10 February 2021.
	DayFirst DateOrder = "DMY"
	// MonthFirst reads 10-02-2021 as 2 October 2021.
	MonthFirst DateOrder = "MDY"
)

// ColumnRule declares how one column is cleaned.
type ColumnRule struct {
	Column    string
	Type      ColumnType
	Case      CaseStyle    // string columns only
	Fill      FillStrategy // integer and number columns only
	FillValue float64      // used with FillConstant
}

// Validate checks that the rule is internally consistent.
func (r ColumnRule) Validate() error {
	if r.Column == "" {
		return fmt.Errorf("rule has no column")
	}
	switch r.Type {
	case TypeString:
		switch r.Case {
		case "", CaseTitle, CaseLower, CaseUpper, CaseNone:
		default:
			return fmt.Errorf("column %s: unknown case style %q", r.Column, r.Case)
		}
	case TypeInteger, TypeNumber:
		switch r.Fill {
		case "", FillNone, FillConstant, FillMean, FillMedian:
		default:
			return fmt.Errorf("column %s: unknown fill strategy %q", r.Column, r.Fill)
		}
		if err := r.validateFillValue(r.Fill); err != nil {
			return err
		}
	case TypeDate:
	default:
		return fmt.Errorf("column %s: unknown type %q", r.Column, r.Type)
	}
	return nil
}

// validateFillValue checks FillValue for the effective fill strategy. Only a
// constant fill uses it, but it must be a finite number in every case.
func (r ColumnRule) validateFillValue(fill FillStrategy) error {
	integer := r.Type == TypeInteger && fill == FillConstant
	if err := ValidFillValue(r.FillValue, integer); err != nil {
		return fmt.Errorf("column %s: %w", r.Column, err)
	}
	return nil
}

// DefaultRules returns the rules for the employee-style tables the tool was
// written for: title-cased names and departments, median-filled integer age and
// salary, and a day-first join date.
func DefaultRules() []ColumnRule {
	return []ColumnRule{
		{Column: "name", Type: TypeString, Case: CaseTitle},
		{Column: "department", Type: TypeString, Case: CaseTitle},
		{Column: "age", Type: TypeInteger, Fill: FillMedian},
		{Column: "salary", Type: TypeInteger, Fill: FillMedian},
		{Column: "join_date", Type: TypeDate},
	}
}

// DefaultSynonyms maps alternative header spellings to canonical column names.
func DefaultSynonyms() map[string]string {
	return map[string]string{
		"date": "join_date",
	}
}

// DefaultPreferredOrder is the canonical output column order.
func DefaultPreferredOrder() []string {
	return []string{"name", "age", "salary", "join_date", "department"}
}
