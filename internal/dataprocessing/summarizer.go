package dataprocessing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	apperrors "tablenorm/internal/errors"
	"tablenorm/internal/normalizer"
	"tablenorm/internal/table"
)

// ColumnSummary describes one column of a cleaned table
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Missing int    `json:"missing"`
	// Filled and Fill are set for numeric columns whose missing values were replaced
	Filled   int    `json:"filled,omitempty"`
	Fill     string `json:"fill,omitempty"`
	Unparsed int    `json:"unparsed,omitempty"`
}

// Summary is the human-facing report of one processed file
type Summary struct {
	Input             string          `json:"input"`
	Output            string          `json:"output"`
	RowsRead          int             `json:"rows_read"`
	DuplicatesRemoved int             `json:"duplicates_removed"`
	RowsWritten       int             `json:"rows_written"`
	Columns           []ColumnSummary `json:"columns"`
	SkippedColumns    []string        `json:"skipped_columns,omitempty"`
	Collisions        []string        `json:"collisions,omitempty"`
	Header            []string        `json:"-"`
	Preview           [][]string      `json:"-"`
}

// Summarize builds the summary of a cleaned table. The preview holds at most
// previewRows rows, with dates as YYYY-MM-DD and missing values empty.
func Summarize(job Job, t *table.Table, stats normalizer.Stats, previewRows int) Summary {
	s := Summary{
		Input:             job.Input,
		Output:            job.Output,
		RowsRead:          stats.RowsIn,
		DuplicatesRemoved: stats.DuplicatesRemoved,
		RowsWritten:       t.NumRows(),
		SkippedColumns:    stats.SkippedColumns,
		Collisions:        stats.Collisions,
		Header:            t.Columns(),
	}

	byColumn := make(map[string]normalizer.ColumnStats, len(stats.Columns))
	for _, cs := range stats.Columns {
		byColumn[cs.Column] = cs
	}

	missing := t.MissingCounts()
	for i, name := range t.Columns() {
		col := ColumnSummary{
			Name:    name,
			Kind:    t.ColumnKind(name).String(),
			Missing: missing[i],
		}
		if cs, ok := byColumn[name]; ok {
			col.Filled, col.Fill, col.Unparsed = cs.Filled, cs.Fill, cs.Unparsed
		}
		s.Columns = append(s.Columns, col)
	}

	records := t.Records()
	if previewRows >= 0 && len(records) > previewRows {
		records = records[:previewRows]
	}
	s.Preview = records
	return s
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)

// Render writes the summary for the console: row counts, per-column missing
// counts and kinds, then the preview rendered as a table.
func (s Summary) Render(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("Cleaned %s -> %s", s.Input, s.Output)))
	fmt.Fprintf(&b, "Rows read:          %d\n", s.RowsRead)
	fmt.Fprintf(&b, "Duplicates removed: %d\n", s.DuplicatesRemoved)
	fmt.Fprintf(&b, "Rows written:       %d\n", s.RowsWritten)

	if len(s.SkippedColumns) > 0 {
		fmt.Fprintln(&b, warnStyle.Render("Columns not found: "+strings.Join(s.SkippedColumns, ", ")))
	}
	if len(s.Collisions) > 0 {
		fmt.Fprintln(&b, warnStyle.Render("Duplicate column names suffixed: "+strings.Join(s.Collisions, ", ")))
	}

	columns := make([][]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		fill := ""
		if c.Filled > 0 {
			fill = fmt.Sprintf("%d with %s", c.Filled, c.Fill)
		}
		columns = append(columns, []string{c.Name, c.Kind, fmt.Sprint(c.Missing), fill})
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, renderTable([]string{"column", "kind", "missing", "filled"}, columns))

	if len(s.Header) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("Preview (%d of %d rows)", len(s.Preview), s.RowsWritten)))
		fmt.Fprintln(&b, renderTable(s.Header, s.Preview))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderTable renders header and rows as a bordered console table.
func RenderTable(header []string, rows [][]string) string {
	return renderTable(header, rows)
}

func renderTable(header []string, rows [][]string) string {
	return ltable.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(header...).
		Rows(rows...).
		Render()
}

// WriteSummaryJSON writes the summaries of a run to path as JSON with run
// metadata.
func WriteSummaryJSON(ctx context.Context, path string, summaries []Summary, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory for summary output", err)
	}

	jsonData := map[string]interface{}{
		"files":        summaries,
		"count":        len(summaries),
		"generated_at": time.Now().Format(time.RFC3339),
		"format":       "tablenorm_summary_v1",
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create summary file", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(jsonData); err != nil {
		return apperrors.NewStorageError("failed to encode summary to JSON", err)
	}

	logger.InfoContext(ctx, "summary written",
		slog.String("path", path),
		slog.Int("files", len(summaries)))
	return nil
}
