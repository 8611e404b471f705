package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/GophNotes/internal/models"
)

const (
	systemPrompt = `You are a helpful assistant for a note-taking application.
Answer questions about the user's note and summarize it when asked.
Keep answers concise and grounded in the note.

Note:
%s`
	defaultSummaryPrompt = "Summarize this note in a few short bullet points."
)

// Generator produces a model reply given a system instruction and the
// conversation turns, last turn being the user's.
type Generator interface {
	Generate(ctx context.Context, system string, turns []models.Message) (string, error)
}

// SummarizeService answers summarization and chat requests about a note.
type SummarizeService struct {
	gen Generator
}

// NewSummarizeService constructs a SummarizeService. gen may be nil, in which
// case every request fails with models.ErrAIUnavailable.
func NewSummarizeService(gen Generator) *SummarizeService {
	return &SummarizeService{gen: gen}
}

// Summarize returns a summary of req.NoteContent, or a reply to
// req.UserMessage in the context of req.ConversationHistory.
func (s *SummarizeService) Summarize(ctx context.Context, req models.SummarizeRequest) (string, error) {
	if strings.TrimSpace(req.NoteContent) == "" {
		return "", models.ErrEmptyContent
	}
	if s.gen == nil {
		return "", models.ErrAIUnavailable
	}

	turns := make([]models.Message, 0, len(req.ConversationHistory)+1)
	for _, m := range req.ConversationHistory {
		if !m.Role.Valid() || strings.TrimSpace(m.Content) == "" {
			continue
		}
		turns = append(turns, m)
	}
	prompt := strings.TrimSpace(req.UserMessage)
	if prompt == "" {
		prompt = defaultSummaryPrompt
	}
	turns = append(turns, models.Message{Role: models.RoleUser, Content: prompt})

	out, err := s.gen.Generate(ctx, fmt.Sprintf(systemPrompt, req.NoteContent), turns)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("AI returned an empty response")
	}
	return out, nil
}
