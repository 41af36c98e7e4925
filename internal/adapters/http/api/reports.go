package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	report "github.com/okian/skillnav/internal/domain/report"
)

// ReportService renders a performance report as PDF.
type ReportService interface {
	Generate(ctx context.Context, in report.Input) ([]byte, error)
}

const (
	welcomeReports = "AI Recommendation System is up and running!"
	reportFilename = "recommendations.pdf"
	maxReportBody  = 1 << 20
)

// NewReportsRouter returns the reports service handler.
func NewReportsRouter(svc ReportService, stats StatsProvider, opts ...Option) http.Handler {
	c := newConfig(opts)
	h := &reportsHandler{svc: svc}

	r := newRouter(c, welcomeReports, stats)
	r.Post("/recommendations", h.handleRecommendations)
	return r
}

type reportsHandler struct {
	svc ReportService
}

func (h *reportsHandler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommendations"

	var in report.Input
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBody)).Decode(&in); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, fmt.Errorf("decode report input: %w", err)))
		return
	}

	pdf, err := h.svc.Generate(r.Context(), in)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+reportFilename)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
