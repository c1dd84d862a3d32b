// api.go
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxFormulaRequestBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   Version,
	})
}

// validateFileHandler ingests a raw delimited body and reports its shape.
func (s *Server) validateFileHandler(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	t, err := BuildTable(r.Context(), body, "request body", s.cfg.Delimiter)
	if err != nil {
		writeJSON(w, ingestStatus(err), APIResponse{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]interface{}{
		"status":  "File valid",
		"columns": len(t.Header),
		"rows":    len(t.Rows),
	}})
}

// evaluateHandler builds a table from the CSV text in the request and
// evaluates the formula against it. Nothing is stored.
func (s *Server) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	delimiter := req.Delimiter
	if delimiter == "" {
		delimiter = s.cfg.Delimiter
	}
	t, err := BuildTable(r.Context(), strings.NewReader(req.CSV), "request", delimiter)
	if err != nil {
		writeJSON(w, ingestStatus(err), APIResponse{Success: false, Error: err.Error()})
		return
	}

	res := s.eval.Evaluate(req.Formula, t.Cells)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: newEvaluateResponse(res)})
}

func (s *Server) sheetJSONHandler(w http.ResponseWriter, r *http.Request) {
	wb, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, APIResponse{Success: false, Error: "sheet not found"})
		return
	}

	var numeric []string
	for _, col := range wb.Table.NumericColumns() {
		numeric = append(numeric, ColumnLetter(col))
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: SheetResponse{
		ID:       wb.ID,
		FileName: wb.FileName,
		Header:   wb.Table.Header,
		Rows:     wb.Table.Rows,
		Numeric:  numeric,
	}})
}

func (s *Server) sheetEvaluateHandler(w http.ResponseWriter, r *http.Request) {
	wb, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, APIResponse{Success: false, Error: "sheet not found"})
		return
	}

	var req EvaluateRequest
	body := http.MaxBytesReader(w, r.Body, maxFormulaRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	res := s.eval.Evaluate(req.Formula, wb.Table.Cells)
	s.logger.Debug("formula evaluated",
		zap.String("id", wb.ID),
		zap.String("formula", req.Formula),
		zap.String("result", res.String()),
	)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: newEvaluateResponse(res)})
}

func newEvaluateResponse(res Result) EvaluateResponse {
	resp := EvaluateResponse{
		Formula: res.Formula,
		NoData:  res.NoData,
		Display: res.String(),
	}
	switch {
	case res.Err != nil:
		resp.Error = displayError(res.Err)
	case !res.NoData:
		v := res.Value
		resp.Value = &v
	}
	return resp
}
