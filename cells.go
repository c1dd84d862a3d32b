// cells.go
package main

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// CellAddress locates one cell. Column is zero-based, Row is the 1-based
// sheet row, so the header sits on row 1 and the first body row on row 2.
type CellAddress struct {
	Column int
	Row    int
}

// CellAddressFor returns the address of body cell (rowIndex, colIndex).
func CellAddressFor(rowIndex, colIndex int) CellAddress {
	return CellAddress{Column: colIndex, Row: rowIndex + 2}
}

// ColumnLetter returns the column name for a zero-based index ("A" for 0).
// It returns "" for negative or out-of-sheet indices.
func ColumnLetter(index int) string {
	name, err := excelize.ColumnNumberToName(index + 1)
	if err != nil {
		return ""
	}
	return name
}

// String returns the address in A1 form, or "" if it names no cell.
func (a CellAddress) String() string {
	if a.Row < 1 {
		return ""
	}
	col := ColumnLetter(a.Column)
	if col == "" {
		return ""
	}
	return col + strconv.Itoa(a.Row)
}

// CellMap maps cell addresses to the raw string values of a table body.
type CellMap struct {
	values map[string]string
	// largest populated zero-based column and 1-based row
	maxCol int
	maxRow int
}

func NewCellMap() *CellMap {
	return &CellMap{values: make(map[string]string), maxCol: -1}
}

// CellMapFrom builds a mapping directly from address/value pairs.
func CellMapFrom(values map[string]string) (*CellMap, error) {
	m := NewCellMap()
	for address, value := range values {
		if err := m.Set(address, value); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Set stores value under address. Addresses are normalised, so "a1" and
// "A1" refer to the same cell.
func (m *CellMap) Set(address, value string) error {
	col, row, err := excelize.CellNameToCoordinates(address)
	if err != nil {
		return fmt.Errorf("invalid cell address %q: %w", address, err)
	}
	m.put(CellAddress{Column: col - 1, Row: row}, value)
	return nil
}

func (m *CellMap) put(a CellAddress, value string) {
	key := a.String()
	if key == "" {
		return
	}
	m.values[key] = value
	if a.Column > m.maxCol {
		m.maxCol = a.Column
	}
	if a.Row > m.maxRow {
		m.maxRow = a.Row
	}
}

// Get returns the raw value at address and whether the cell is populated.
func (m *CellMap) Get(address string) (string, bool) {
	v, ok := m.values[address]
	return v, ok
}

func (m *CellMap) Lookup(a CellAddress) (string, bool) {
	key := a.String()
	if key == "" {
		return "", false
	}
	return m.Get(key)
}

func (m *CellMap) Len() int { return len(m.values) }

// Bounds returns the largest populated zero-based column and 1-based row,
// or (-1, 0) for an empty mapping.
func (m *CellMap) Bounds() (maxCol, maxRow int) {
	return m.maxCol, m.maxRow
}

// mapRow adds every field of body row rowIndex.
func (m *CellMap) mapRow(rowIndex int, row []string) {
	for i, value := range row {
		m.put(CellAddressFor(rowIndex, i), value)
	}
}

// MapCells builds the address mapping for every body cell of t.
func MapCells(t *Table) *CellMap {
	m := NewCellMap()
	for j, row := range t.Rows {
		m.mapRow(j, row)
	}
	return m
}
