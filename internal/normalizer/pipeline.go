package normalizer

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"tablenorm/internal/table"
)

const tracerName = "tablenorm/normalizer"

// Options configures a Normalizer.
type Options struct {
	Rules          []ColumnRule
	Synonyms       map[string]string
	PreferredOrder []string
	DateOrder      DateOrder
	// DefaultFill applies to numeric rules that leave Fill empty.
	DefaultFill FillStrategy
	// DefaultCase applies to string rules that leave Case empty.
	DefaultCase CaseStyle
}

// DefaultOptions returns the options matching the employee-table defaults.
func DefaultOptions() Options {
	return Options{
		Rules:          DefaultRules(),
		Synonyms:       DefaultSynonyms(),
		PreferredOrder: DefaultPreferredOrder(),
		DateOrder:      DayFirst,
		DefaultFill:    FillMedian,
		DefaultCase:    CaseTitle,
	}
}

// ColumnStats describes what one rule did to its column.
type ColumnStats struct {
	Column   string
	Type     ColumnType
	Unparsed int    // values that could not be read as the target type
	Filled   int    // missing values replaced by the fill value
	Fill     string // fill value as text, empty when nothing was filled
}

// Stats summarizes one Normalize call.
type Stats struct {
	RowsIn            int
	RowsOut           int
	DuplicatesRemoved int
	Renamed           []Rename
	Collisions        []string
	SkippedColumns    []string
	Columns           []ColumnStats
}

// Normalizer applies the fixed cleaning pipeline to a table:
// header normalization, text rules, numeric rules, date rules, a final trim
// of every remaining string, deduplication and column reordering.
type Normalizer struct {
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
}

// New validates the options and creates a Normalizer.
func New(opts Options, logger *slog.Logger) (*Normalizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, r := range opts.Rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid column rule: %w", err)
		}
	}
	switch opts.DateOrder {
	case "":
		opts.DateOrder = DayFirst
	case DayFirst, MonthFirst:
	default:
		return nil, fmt.Errorf("unknown date order %q", opts.DateOrder)
	}
	if opts.DefaultFill == "" {
		opts.DefaultFill = FillNone
	}
	for _, r := range opts.Rules {
		if r.Fill == "" && (r.Type == TypeInteger || r.Type == TypeNumber) {
			if err := r.validateFillValue(opts.DefaultFill); err != nil {
				return nil, fmt.Errorf("invalid column rule: %w", err)
			}
		}
	}
	if opts.DefaultCase == "" {
		opts.DefaultCase = CaseTitle
	}
	return &Normalizer{
		opts:   opts,
		logger: logger.With(slog.String("component", "normalizer")),
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Normalize runs the pipeline. It never fails: unparsable cells become
// missing and absent columns are skipped with a warning.
func (n *Normalizer) Normalize(ctx context.Context, t *table.Table) (*table.Table, Stats) {
	ctx, span := n.tracer.Start(ctx, "normalize",
		trace.WithAttributes(attribute.Int("rows_in", t.NumRows()),
			attribute.Int("columns_in", t.NumColumns())))
	defer span.End()

	stats := Stats{RowsIn: t.NumRows()}

	t = n.normalizeNames(ctx, t, &stats)
	for _, typ := range []ColumnType{TypeString, TypeInteger, TypeNumber, TypeDate} {
		for _, rule := range n.opts.Rules {
			if rule.Type != typ {
				continue
			}
			if !t.HasColumn(rule.Column) {
				n.logger.WarnContext(ctx, "expected column not found, skipping",
					slog.String("column", rule.Column),
					slog.String("type", string(rule.Type)))
				stats.SkippedColumns = append(stats.SkippedColumns, rule.Column)
				continue
			}
			stats.Columns = append(stats.Columns, n.applyRule(ctx, t, rule))
		}
	}

	_, trimSpan := n.tracer.Start(ctx, "normalize.trim_strings")
	t = TrimStrings(t)
	trimSpan.End()

	_, dedupSpan := n.tracer.Start(ctx, "normalize.deduplicate")
	t, stats.DuplicatesRemoved = Deduplicate(t)
	dedupSpan.SetAttributes(attribute.Int("duplicates_removed", stats.DuplicatesRemoved))
	dedupSpan.End()

	t = ReorderColumns(t, n.opts.PreferredOrder)
	stats.RowsOut = t.NumRows()

	span.SetAttributes(attribute.Int("rows_out", stats.RowsOut))
	n.logger.InfoContext(ctx, "table normalized",
		slog.Int("rows_in", stats.RowsIn),
		slog.Int("rows_out", stats.RowsOut),
		slog.Int("duplicates_removed", stats.DuplicatesRemoved),
		slog.Int("skipped_columns", len(stats.SkippedColumns)))
	return t, stats
}

func (n *Normalizer) normalizeNames(ctx context.Context, t *table.Table, stats *Stats) *table.Table {
	_, span := n.tracer.Start(ctx, "normalize.column_names")
	defer span.End()

	canonical := make([]string, 0, len(n.opts.Rules)+len(n.opts.PreferredOrder))
	for _, r := range n.opts.Rules {
		canonical = append(canonical, r.Column)
	}
	canonical = append(canonical, n.opts.PreferredOrder...)

	out, renames, collisions := NormalizeColumnNames(t, n.opts.Synonyms, canonical)
	for _, r := range renames {
		n.logger.DebugContext(ctx, "column renamed",
			slog.String("from", r.From),
			slog.String("to", r.To))
	}
	for _, c := range collisions {
		n.logger.WarnContext(ctx, "duplicate column name after normalization, suffixed",
			slog.String("column", c))
	}
	stats.Renamed = renames
	stats.Collisions = collisions
	return out
}

// applyRule rewrites one column of t in place.
func (n *Normalizer) applyRule(ctx context.Context, t *table.Table, rule ColumnRule) ColumnStats {
	_, span := n.tracer.Start(ctx, "normalize.column",
		trace.WithAttributes(attribute.String("column", rule.Column),
			attribute.String("type", string(rule.Type))))
	defer span.End()

	cs := ColumnStats{Column: rule.Column, Type: rule.Type}
	values, _ := t.Column(rule.Column)

	switch rule.Type {
	case TypeString:
		style := rule.Case
		if style == "" {
			style = n.opts.DefaultCase
		}
		values = CleanText(values, style)

	case TypeInteger, TypeNumber:
		fill := rule.Fill
		if fill == "" {
			fill = n.opts.DefaultFill
		}
		var report numericReport
		values, report = coerceNumeric(values, fill, rule.FillValue, rule.Type == TypeInteger)
		cs.Unparsed, cs.Filled = report.Unparsed, report.Filled
		if report.Filled > 0 {
			cs.Fill = report.FillValue.String()
		}
		if report.Parsed == 0 && (fill == FillMean || fill == FillMedian) {
			n.logger.WarnContext(ctx, "no numeric values to compute fill from, column left missing",
				slog.String("column", rule.Column),
				slog.String("fill", string(fill)))
		}

	case TypeDate:
		values, cs.Unparsed = parseDates(values, n.opts.DateOrder)
	}

	if cs.Unparsed > 0 {
		n.logger.InfoContext(ctx, "unparsable values set to missing",
			slog.String("column", rule.Column),
			slog.Int("count", cs.Unparsed))
	}
	span.SetAttributes(attribute.Int("unparsed", cs.Unparsed), attribute.Int("filled", cs.Filled))
	// values has one entry per row of t
	_ = t.SetColumn(rule.Column, values)
	return cs
}
