package http

import (
	"net/http"
	"strconv"

	"spendlog/internal/core"
	"spendlog/internal/log"
)

// statsResponse mirrors the statistics payload with plain JSON numbers.
type statsResponse struct {
	CategoryTotals   map[string]float64 `json:"category_totals"`
	TotalAmount      float64            `json:"total_amount"`
	TransactionCount int                `json:"transaction_count"`
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	ctx := r.Context()
	logger := log.FromContext(ctx)

	stats, err := s.service.Statistics(ctx, core.Filters{})
	if err != nil {
		if core.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.ErrorContext(ctx, "Statistics failed", log.NewFields().
			WithOperation(log.OpStatistics).
			WithError(err).
			ToSlice()...)
		writeError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}

	resp := statsResponse{
		CategoryTotals:   make(map[string]float64, len(stats.CategoryTotals)),
		TotalAmount:      stats.TotalAmount.InexactFloat64(),
		TransactionCount: stats.TransactionCount,
	}
	for category, total := range stats.CategoryTotals {
		resp.CategoryTotals[category] = total.InexactFloat64()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	ctx := r.Context()
	logger := log.FromContext(ctx)

	rows, stats, err := s.service.Report(ctx, filtersFromQuery(r))
	if err != nil {
		if core.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.ErrorContext(ctx, "Report data load failed", log.NewFields().
			WithOperation(log.OpExport).
			WithError(err).
			ToSlice()...)
		writeError(w, http.StatusInternalServerError, "failed to load report data")
		return
	}

	doc, err := s.reports.Render(rows, stats)
	if err != nil {
		logger.ErrorContext(ctx, "Report rendering failed", log.NewFields().
			WithOperation(log.OpExport).
			WithError(err).
			ToSlice()...)
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="expense_report.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
