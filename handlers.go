// handlers.go
package main

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	if err := uploadTemplate.Execute(w, nil); err != nil {
		s.logger.Error("template error", zap.String("template", "upload"), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) displayHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := strings.ToLower(header.Filename)
	if !strings.HasSuffix(filename, ".csv") &&
		!strings.HasSuffix(filename, ".xlsx") {
		http.Error(w, "Invalid file type", http.StatusBadRequest)
		return
	}

	t, err := LoadReader(r.Context(), file, header.Filename, s.cfg.Delimiter)
	if err != nil {
		s.logger.Warn("upload rejected", zap.String("file", header.Filename), zap.Error(err))
		http.Error(w, fmt.Sprintf("Error: %v", err), http.StatusBadRequest)
		return
	}

	if len(t.Rows) > s.cfg.MaxRows {
		http.Error(w, fmt.Sprintf("Too many rows (> %d)", s.cfg.MaxRows), http.StatusBadRequest)
		return
	}

	wb := s.store.Put(t, header.Filename, header.Size)
	s.logger.Info("workbook stored",
		zap.String("id", wb.ID),
		zap.String("file", wb.FileName),
		zap.Int("rows", len(t.Rows)),
	)
	http.Redirect(w, r, "/sheets/"+wb.ID, http.StatusSeeOther)
}

func (s *Server) sheetHandler(w http.ResponseWriter, r *http.Request) {
	wb, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	displayData := DisplayData{
		ID:          wb.ID,
		Headers:     wb.Table.Header,
		Letters:     wb.Table.ColumnLetters(),
		NumericCols: wb.Table.NumericColumns(),
		TableHTML:   template.HTML(TableHTML(wb.Table)),
		FileName:    wb.FileName,
		FileSize:    wb.FileSize,
		RowCount:    len(wb.Table.Rows),
		Formula:     r.URL.Query().Get("formula"),
	}

	if err := displayTemplate.Execute(w, displayData); err != nil {
		s.logger.Error("template error", zap.String("template", "display"), zap.Error(err))
		http.Error(w, "Failed to display data", http.StatusInternalServerError)
	}
}

func (s *Server) calculateHandler(w http.ResponseWriter, r *http.Request) {
	wb, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	formula := strings.TrimSpace(r.FormValue("formula"))
	if formula == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	res := s.eval.Evaluate(formula, wb.Table.Cells)
	page := ResultPage{
		ID:        wb.ID,
		Formula:   formula,
		Result:    res.String(),
		IsError:   res.Err != nil,
		FileName:  wb.FileName,
		Timestamp: time.Now().Format("January 2, 2006 at 3:04 PM"),
	}

	if err := resultTemplate.Execute(w, page); err != nil {
		s.logger.Error("template error", zap.String("template", "results"), zap.Error(err))
		http.Error(w, "Failed to render results", http.StatusInternalServerError)
	}
}

// ingestStatus maps an ingestion error to an HTTP status.
func ingestStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrEmptyInput), errors.Is(err, ErrColumnMismatch):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}
