// types.go
package main

import (
	"html/template"
	"time"
)

// Table is the parsed form of one input file: a header row plus body rows.
// Cells holds the address mapping of the body and is owned by this table only.
type Table struct {
	Header []string
	Rows   [][]string
	Cells  *CellMap
	Source string
}

// Workbook is a table kept by the web server between requests.
type Workbook struct {
	ID         string
	Table      *Table
	FileName   string
	UploadTime time.Time
	FileSize   int64
}

type DisplayData struct {
	ID          string
	Headers     []string
	Letters     []string
	NumericCols []int
	TableHTML   template.HTML
	FileName    string
	FileSize    int64
	RowCount    int
	Formula     string
}

type ResultPage struct {
	ID        string
	Formula   string
	Result    string
	IsError   bool
	FileName  string
	Timestamp string
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type EvaluateRequest struct {
	CSV       string `json:"csv,omitempty"`
	Delimiter string `json:"delimiter,omitempty"`
	Formula   string `json:"formula"`
}

type EvaluateResponse struct {
	Formula string   `json:"formula"`
	Value   *float64 `json:"value,omitempty"`
	NoData  bool     `json:"no_data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Display string   `json:"display"`
}

type SheetResponse struct {
	ID       string     `json:"id"`
	FileName string     `json:"file_name"`
	Header   []string   `json:"header"`
	Rows     [][]string `json:"rows"`
	Numeric  []string   `json:"numeric_columns"`
}
