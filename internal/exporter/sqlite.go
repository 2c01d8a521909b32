package exporter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"tablenorm/internal/table"
)

// DefaultSQLiteTable is the table name used when none is configured.
const DefaultSQLiteTable = "cleaned"

// SQLiteWriter exports a table into a fresh SQLite database file.
type SQLiteWriter struct {
	logger    *slog.Logger
	tableName string
}

// NewSQLiteWriter creates a writer for the given table name.
func NewSQLiteWriter(tableName string, logger *slog.Logger) *SQLiteWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if tableName == "" {
		tableName = DefaultSQLiteTable
	}
	return &SQLiteWriter{logger: logger, tableName: tableName}
}

// WriteFile builds the database in a temporary file and renames it to path.
// Integer columns are INTEGER, number columns REAL and everything else TEXT,
// with dates as YYYY-MM-DD. Missing values are NULL.
func (w *SQLiteWriter) WriteFile(ctx context.Context, path string, t *table.Table) error {
	w.logger.DebugContext(ctx, "Writing SQLite database",
		slog.String("file_path", path),
		slog.String("table", w.tableName),
		slog.Int("record_count", t.NumRows()))

	return writeAtomicPath(path, func(tmpPath string) error {
		db, err := sql.Open("sqlite", tmpPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		if err := w.load(ctx, db, t); err != nil {
			db.Close()
			return err
		}
		return db.Close()
	})
}

func (w *SQLiteWriter) load(ctx context.Context, db *sql.DB, t *table.Table) error {
	kinds := columnKinds(t)
	cols := t.Columns()

	defs := make([]string, len(cols))
	quoted := make([]string, len(cols))
	for j, c := range cols {
		quoted[j] = quoteIdent(c)
		defs[j] = quoted[j] + " " + sqlType(kinds[j])
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	name := quoteIdent(w.tableName)
	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+name+` (`+strings.Join(defs, ", ")+`)`); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+name+` (`+strings.Join(quoted, ", ")+`) VALUES (`+ph+`)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for j, v := range t.Row(i) {
			args[j] = sqlArg(v, kinds[j])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
