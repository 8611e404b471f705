// Package ai adapts Google Gemini to the summarization service.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/atinyakov/GophNotes/internal/models"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini generates replies with a Gemini model.
type Gemini struct {
	models contentGenerator
	model  string
}

// NewGemini creates a Gemini API client for model using apiKey.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{models: client.Models, model: model}, nil
}

// Generate sends the system instruction and turns to the model and returns
// the text of the first candidate. Quota and billing failures are mapped to
// models.ErrRateLimited and models.ErrPaymentRequired.
func (g *Gemini) Generate(ctx context.Context, system string, turns []models.Message) (string, error) {
	contents := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		contents = append(contents, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", mapError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("unable to generate an answer (check safety filters)")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String(), nil
}

func geminiRole(r models.Role) string {
	if r == models.RoleAssistant {
		return "model"
	}
	return "user"
}

func mapError(err error) error {
	var (
		code int
		msg  string
		st   string
	)
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, msg, st = apiErr.Code, apiErr.Message, apiErr.Status
	case errors.As(err, &apiErrPtr):
		code, msg, st = apiErrPtr.Code, apiErrPtr.Message, apiErrPtr.Status
	default:
		return fmt.Errorf("generate content: %w", err)
	}

	switch {
	case code == http.StatusTooManyRequests || st == "RESOURCE_EXHAUSTED":
		return fmt.Errorf("%w: %s", models.ErrRateLimited, msg)
	case code == http.StatusPaymentRequired,
		code == http.StatusForbidden && strings.Contains(strings.ToLower(msg), "billing"):
		return fmt.Errorf("%w: %s", models.ErrPaymentRequired, msg)
	}
	return fmt.Errorf("generate content: %w", err)
}
