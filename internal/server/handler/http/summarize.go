package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/GophNotes/internal/models"
	"go.uber.org/zap"
)

// Messages of the summarization endpoint. Clients match on the
// "Rate limits" and "Payment required" substrings.
const (
	rateLimitMessage   = "Rate limits exceeded, please try again later."
	paymentMessage     = "Payment required, please add funds to your workspace."
	unavailableMessage = "AI summarization is not configured on this server."
)

// Summarizer defines the AI operation required by SummarizeHandler.
type Summarizer interface {
	Summarize(ctx context.Context, req models.SummarizeRequest) (string, error)
}

// SummarizeHandler handles POST /api/ai/summarize.
type SummarizeHandler struct {
	Summarizer Summarizer
	Logger     *zap.Logger
}

// Summarize decodes a models.SummarizeRequest and answers with
// models.SummarizeResponse: {"summary"} on success, {"error"} otherwise.
func (h *SummarizeHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.SummarizeResponse{Error: "invalid body"})
		return
	}

	summary, err := h.Summarizer.Summarize(r.Context(), req)
	if err != nil {
		status, msg := summarizeError(err)
		if status >= http.StatusInternalServerError && h.Logger != nil {
			h.Logger.Error("summarization failed", zap.Error(err))
		}
		writeJSON(w, status, models.SummarizeResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, models.SummarizeResponse{Summary: summary})
}

func summarizeError(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrEmptyContent):
		return http.StatusBadRequest, "Note content is required"
	case errors.Is(err, models.ErrRateLimited):
		return http.StatusTooManyRequests, rateLimitMessage
	case errors.Is(err, models.ErrPaymentRequired):
		return http.StatusPaymentRequired, paymentMessage
	case errors.Is(err, models.ErrAIUnavailable):
		return http.StatusServiceUnavailable, unavailableMessage
	}
	return http.StatusInternalServerError, err.Error()
}
