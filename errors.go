// errors.go
package main

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound   = errors.New("the file does not exist")
	ErrEmptyInput     = errors.New("the CSV file is empty")
	ErrColumnMismatch = errors.New("mismatched columns in the CSV file")

	// Formula errors are shown to the user verbatim.
	ErrInvalidFormula      = errors.New("Invalid Formula")
	ErrUnsupportedFunction = errors.New("Formula not supported")
)

// ColumnMismatchError reports the first body row whose field count differs
// from the header's. Line is 1-based and counts the header line.
type ColumnMismatchError struct {
	Line     int
	Expected int
	Got      int
}

func (e *ColumnMismatchError) Error() string {
	return fmt.Sprintf("%s: line %d has %d fields, header has %d", ErrColumnMismatch, e.Line, e.Got, e.Expected)
}

func (e *ColumnMismatchError) Unwrap() error { return ErrColumnMismatch }

// SyntaxError describes where a formula stopped matching =NAME(ADDR:ADDR).
type SyntaxError struct {
	Formula string
	Pos     int
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s at position %d", ErrInvalidFormula, e.Msg, e.Pos)
}

func (e *SyntaxError) Unwrap() error { return ErrInvalidFormula }
