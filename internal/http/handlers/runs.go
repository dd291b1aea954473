package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"invadmin-stock-services/internal/reconcile"
	"invadmin-stock-services/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/phpdave11/gofpdf"
)

func (h *Handler) RunList(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	response.Success(w, h.Runs.List(s.Key))
}

func (h *Handler) RunGet(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	runID := chi.URLParam(r, "runId")
	result, ok := h.Runs.Get(runID, s.Key)
	if !ok {
		response.Error(w, http.StatusNotFound, "RUN_NOT_FOUND", "Run not found")
		return
	}
	response.Success(w, result)
}

func (h *Handler) RunReportPDF(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	runID := chi.URLParam(r, "runId")
	result, ok := h.Runs.Get(runID, s.Key)
	if !ok {
		response.Error(w, http.StatusNotFound, "RUN_NOT_FOUND", "Run not found")
		return
	}

	buf, err := renderRunReportPDF(result)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=stock-run-%s.pdf", result.RunID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func renderRunReportPDF(result *reconcile.Result) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Bulk Stock Adjustment", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Run %s", result.RunID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Started: %s", result.StartedAt.Format("2006-01-02 15:04:05")), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Finished: %s", result.FinishedAt.Format("2006-01-02 15:04:05")), "", 1, "C", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Entries", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, entry := range result.Entries {
		name := entry.ItemName
		if name == "" {
			name = fmt.Sprintf("Item %d", entry.ItemID)
		}
		if entry.Status == reconcile.EntryOK {
			pdf.CellFormat(0, 5, fmt.Sprintf("+%d  %s  (%d -> %d)", entry.Quantity, name, entry.PreviousStock, entry.NewStock), "", 1, "L", false, 0, "")
		} else {
			pdf.CellFormat(0, 5, fmt.Sprintf("+%d  %s  FAILED: %s", entry.Quantity, name, entry.ErrorCode), "", 1, "L", false, 0, "")
			if entry.ErrorMessage != "" {
				pdf.MultiCell(0, 4, fmt.Sprintf("    %s", entry.ErrorMessage), "", "L", false)
			}
		}
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Totals", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Attempted: %d", result.Attempted), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Succeeded: %d", result.Succeeded), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Failed: %d", result.Failed()), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
