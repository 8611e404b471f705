package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/atinyakov/GophNotes/internal/models"
)

// Summarizer is the client of POST /api/ai/summarize.
type Summarizer struct {
	api api
}

// NewSummarizer creates a summarization client authenticated by tokens.
func NewSummarizer(client *http.Client, baseURL string, tokens TokenSource) *Summarizer {
	return &Summarizer{api: newAPI(client, baseURL, tokens)}
}

// Summarize sends req. A JSON body carrying "error" is returned as a
// response whatever the status, so callers can classify it; other failures
// are returned as errors.
func (s *Summarizer) Summarize(ctx context.Context, req models.SummarizeRequest) (*models.SummarizeResponse, error) {
	httpReq, err := s.api.newRequest(ctx, http.MethodPost, "/api/ai/summarize", req)
	if err != nil {
		return nil, err
	}
	resp, err := s.api.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("summarize request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out models.SummarizeResponse
	jsonErr := json.Unmarshal(data, &out)
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if jsonErr != nil {
			return nil, fmt.Errorf("invalid response: %w", jsonErr)
		}
		return &out, nil
	}
	if jsonErr == nil && out.Error != "" {
		return &out, nil
	}
	return nil, &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
}
