package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// FeedbackService classifies feedback text.
type FeedbackService interface {
	Predict(ctx context.Context, text string) (string, error)
}

const (
	welcomeSentiment = "Welcome to the feedback sentiment service."
	maxFeedbackBody  = 1 << 20
)

// NewSentimentRouter returns the sentiment service handler.
func NewSentimentRouter(svc FeedbackService, stats StatsProvider, opts ...Option) http.Handler {
	c := newConfig(opts)
	h := &sentimentHandler{svc: svc}

	r := newRouter(c, welcomeSentiment, stats)
	r.Post("/predict_feedback", h.handlePredict)
	return r
}

type sentimentHandler struct {
	svc FeedbackService
}

type feedbackRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	Sentiment string `json:"sentiment"`
}

func (h *sentimentHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_feedback"

	var req feedbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFeedbackBody)).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, fmt.Errorf("decode feedback: %w", err)))
		return
	}

	label, err := h.svc.Predict(r.Context(), req.Text)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sentimentResponse{Sentiment: label})
}
