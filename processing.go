// processing.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxLineBytes = 1 << 20

// TableBuilder assembles a Table from rows delivered one at a time. The
// first row becomes the header. Ingestion stops at the first row whose
// field count differs from the header's.
type TableBuilder struct {
	table   *Table
	started bool
	line    int
	err     error
}

func NewTableBuilder(source string) *TableBuilder {
	return &TableBuilder{table: &Table{Source: source, Cells: NewCellMap()}}
}

// Append adds the next row of the input.
func (b *TableBuilder) Append(fields []string) error {
	if b.err != nil {
		return b.err
	}
	b.line++
	if !b.started {
		b.started = true
		b.table.Header = fields
		return nil
	}
	if len(fields) != len(b.table.Header) {
		b.err = &ColumnMismatchError{Line: b.line, Expected: len(b.table.Header), Got: len(fields)}
		return b.err
	}
	b.table.Cells.mapRow(len(b.table.Rows), fields)
	b.table.Rows = append(b.table.Rows, fields)
	return nil
}

// Table returns the table built so far. After a column mismatch the partial
// table is returned together with the error.
func (b *TableBuilder) Table() (*Table, error) {
	if !b.started {
		return nil, ErrEmptyInput
	}
	return b.table, b.err
}

// BuildTable streams delimited lines from r into a table. Fields are split
// on every occurrence of delimiter; there is no quoting.
func BuildTable(ctx context.Context, r io.Reader, source, delimiter string) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	b := NewTableBuilder(source)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.Append(strings.Split(scanner.Text(), delimiter)); err != nil {
			return b.Table()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return b.Table()
}

// BuildExcelTable reads the first sheet of an .xlsx workbook. excelize drops
// trailing empty cells, so short rows are padded to the header width.
func BuildExcelTable(ctx context.Context, r io.Reader, source string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyInput
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	b := NewTableBuilder(source)
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if b.started && len(cols) < len(b.table.Header) {
			cols = append(cols, make([]string, len(b.table.Header)-len(cols))...)
		}
		if err := b.Append(cols); err != nil {
			return b.Table()
		}
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return b.Table()
}

func isExcelFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

// LoadReader builds a table from r, choosing the reader by the extension of name.
func LoadReader(ctx context.Context, r io.Reader, name, delimiter string) (*Table, error) {
	if isExcelFile(name) {
		return BuildExcelTable(ctx, r, name)
	}
	return BuildTable(ctx, r, name, delimiter)
}

// LoadFile builds a table from the file at path.
func LoadFile(ctx context.Context, path, delimiter string) (*Table, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return LoadReader(ctx, f, path, delimiter)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// NumericColumns returns the indices of columns whose non-empty values are
// at least 80% numeric.
func (t *Table) NumericColumns() []int {
	var numericCols []int
	for col := range t.Header {
		if t.isColumnNumeric(col) {
			numericCols = append(numericCols, col)
		}
	}
	return numericCols
}

func (t *Table) isColumnNumeric(colIndex int) bool {
	numericCount := 0
	totalCount := 0
	for _, row := range t.Rows {
		if colIndex >= len(row) {
			continue
		}
		val := strings.TrimSpace(row[colIndex])
		if val == "" {
			continue
		}
		totalCount++
		if _, ok := parseStrict(val); ok {
			numericCount++
		}
	}
	if totalCount == 0 {
		return false
	}
	return float64(numericCount)/float64(totalCount) >= 0.8
}

// ColumnLetters returns the address letter of every header column.
func (t *Table) ColumnLetters() []string {
	letters := make([]string, len(t.Header))
	for i := range t.Header {
		letters[i] = ColumnLetter(i)
	}
	return letters
}
