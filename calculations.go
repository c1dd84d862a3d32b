// calculations.go
package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
)

// NumericMode selects how raw cell values are read as numbers.
type NumericMode string

const (
	// NumericStrict accepts a value only if the whole trimmed string is a number.
	NumericStrict NumericMode = "strict"
	// NumericLoose accepts the longest numeric prefix, so "5abc" reads as 5.
	NumericLoose NumericMode = "loose"
)

func ParseNumericMode(s string) (NumericMode, error) {
	switch NumericMode(strings.ToLower(s)) {
	case NumericStrict:
		return NumericStrict, nil
	case NumericLoose:
		return NumericLoose, nil
	}
	return "", fmt.Errorf("unknown numeric mode %q (want strict or loose)", s)
}

// Supported aggregate functions.
const (
	FuncSum     = "SUM"
	FuncAverage = "AVERAGE"
	FuncCount   = "COUNT"
	FuncMax     = "MAX"
	FuncMin     = "MIN"
)

var supportedFunctions = map[string]bool{
	FuncSum:     true,
	FuncAverage: true,
	FuncCount:   true,
	FuncMax:     true,
	FuncMin:     true,
}

// Result is the outcome of evaluating one formula. Formula errors are
// results too: Err is set and Value is meaningless.
type Result struct {
	Formula  string
	Function string
	Value    float64
	// NoData is set when MAX or MIN found no numeric value in the range.
	NoData bool
	Err    error
}

func (r Result) String() string {
	switch {
	case r.Err != nil:
		return displayError(r.Err)
	case r.NoData:
		return "No data"
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// displayError maps a formula error to the text shown to the user.
func displayError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFormula):
		return ErrInvalidFormula.Error()
	case errors.Is(err, ErrUnsupportedFunction):
		return ErrUnsupportedFunction.Error()
	}
	return err.Error()
}

// Evaluator computes range formulas against a CellMap. It keeps no state
// between calls.
type Evaluator struct {
	mode   NumericMode
	parse  func(string) (float64, bool)
	logger *zap.Logger
}

func NewEvaluator(mode NumericMode, logger *zap.Logger) *Evaluator {
	parse := parseStrict
	if mode == NumericLoose {
		parse = parseLoose
	}
	return &Evaluator{mode: mode, parse: parse, logger: logger}
}

// Evaluate parses formula and aggregates the cells of its range.
func (e *Evaluator) Evaluate(formula string, cells *CellMap) Result {
	res := Result{Formula: formula}

	f, err := ParseFormula(formula)
	if err != nil {
		e.logger.Debug("formula rejected", zap.String("formula", formula), zap.Error(err))
		res.Err = err
		return res
	}
	res.Function = f.Function
	if !supportedFunctions[f.Function] {
		e.logger.Debug("formula not supported", zap.String("function", f.Function))
		res.Err = fmt.Errorf("%w: %s", ErrUnsupportedFunction, f.Function)
		return res
	}

	present, values := e.collect(f.Range, cells)
	e.logger.Debug("range collected",
		zap.String("range", f.Range.String()),
		zap.Int("present", present),
		zap.Int("numeric", len(values)),
	)

	switch f.Function {
	case FuncCount:
		res.Value = float64(present)
	case FuncSum:
		res.Value = sum(values)
	case FuncAverage:
		res.Value = average(values)
	case FuncMax:
		res.Value, res.NoData = extreme(stats.Max, values)
	case FuncMin:
		res.Value, res.NoData = extreme(stats.Min, values)
	}
	return res
}

// collect walks the range and returns how many cells are populated along
// with the values that read as numbers. The walk is clipped to the
// populated bounds of cells.
func (e *Evaluator) collect(r Range, cells *CellMap) (present int, values []float64) {
	maxCol, maxRow := cells.Bounds()
	lastCol := min(r.End.Column, maxCol)
	lastRow := min(r.End.Row, maxRow)
	for col := r.Start.Column; col <= lastCol; col++ {
		for row := max(r.Start.Row, 1); row <= lastRow; row++ {
			raw, ok := cells.Lookup(CellAddress{Column: col, Row: row})
			if !ok {
				continue
			}
			present++
			if v, ok := e.parse(raw); ok {
				values = append(values, v)
			}
		}
	}
	return present, values
}

func sum(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	s, err := stats.Sum(vals)
	if err != nil {
		return 0
	}
	return s
}

func average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m, err := stats.Mean(vals)
	if err != nil {
		return 0
	}
	return m
}

func extreme(fn func(stats.Float64Data) (float64, error), vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, true
	}
	v, err := fn(vals)
	if err != nil {
		return 0, true
	}
	return v, false
}

func parseStrict(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// parseLoose reads the longest leading decimal number after optional
// leading whitespace: an optional sign, digits with at most one point, and
// an optional exponent.
func parseLoose(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			end = j
		}
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
