package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"tablenorm/internal/table"
)

// ParquetWriter exports a table as a Snappy-compressed Parquet file.
type ParquetWriter struct {
	logger *slog.Logger
	mem    memory.Allocator
}

// NewParquetWriter creates a new Parquet writer instance
func NewParquetWriter(logger *slog.Logger) *ParquetWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParquetWriter{logger: logger, mem: memory.DefaultAllocator}
}

// WriteFile writes t to path atomically. Every column is nullable; integer,
// number and date columns keep their type and anything else is a string.
func (w *ParquetWriter) WriteFile(ctx context.Context, path string, t *table.Table) error {
	w.logger.DebugContext(ctx, "Writing Parquet file",
		slog.String("file_path", path),
		slog.Int("record_count", t.NumRows()))

	rec := w.buildRecord(t)
	defer rec.Release()

	return writeAtomic(path, func(out *os.File) error {
		props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
		arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

		writer, err := pqarrow.NewFileWriter(rec.Schema(), out, props, arrowProps)
		if err != nil {
			return fmt.Errorf("failed to create parquet writer: %w", err)
		}
		if err := writer.Write(rec); err != nil {
			writer.Close()
			return fmt.Errorf("failed to write parquet record: %w", err)
		}
		// closes out as well
		if err := writer.Close(); err != nil {
			return fmt.Errorf("failed to finish parquet file: %w", err)
		}
		return nil
	})
}

func arrowType(k table.Kind) arrow.DataType {
	switch k {
	case table.KindInteger:
		return arrow.PrimitiveTypes.Int64
	case table.KindNumber:
		return arrow.PrimitiveTypes.Float64
	case table.KindDate:
		return arrow.FixedWidthTypes.Date32
	default:
		return arrow.BinaryTypes.String
	}
}

func (w *ParquetWriter) buildRecord(t *table.Table) arrow.Record {
	kinds := columnKinds(t)
	fields := make([]arrow.Field, len(kinds))
	for j, name := range t.Columns() {
		fields[j] = arrow.Field{Name: name, Type: arrowType(kinds[j]), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(w.mem, schema)
	defer b.Release()

	for i := 0; i < t.NumRows(); i++ {
		for j, v := range t.Row(i) {
			appendValue(b.Field(j), v)
		}
	}
	return b.NewRecord()
}

// appendValue adds v to a builder created by arrowType for v's column.
func appendValue(fb array.Builder, v table.Value) {
	if v.IsMissing() {
		fb.AppendNull()
		return
	}
	switch bld := fb.(type) {
	case *array.Int64Builder:
		i, _ := v.Int()
		bld.Append(i)
	case *array.Float64Builder:
		f, _ := v.Float()
		bld.Append(f)
	case *array.Date32Builder:
		d, _ := v.Time()
		bld.Append(arrow.Date32FromTime(d))
	case *array.StringBuilder:
		bld.Append(v.Text())
	}
}
