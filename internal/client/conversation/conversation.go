// Package conversation runs the AI summary and follow-up chat about the
// selected note.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/atinyakov/GophNotes/internal/client/notify"
	"github.com/atinyakov/GophNotes/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrEmptyMessage is returned by Send for blank input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy is returned while another request of the session is in flight.
	ErrBusy = errors.New("a request is already in progress")
	// ErrAI wraps provider and transport failures.
	ErrAI = errors.New("AI request failed")
	// ErrReset is returned when the session was reset before the answer came.
	ErrReset = errors.New("conversation was reset")
)

// Substrings of the service's error messages.
const (
	rateLimitMarker = "Rate limits"
	paymentMarker   = "Payment required"
)

// Summarizer is the remote summarization service.
type Summarizer interface {
	Summarize(ctx context.Context, req models.SummarizeRequest) (*models.SummarizeResponse, error)
}

// Session is the conversation about one note. At most one request is in
// flight at a time.
type Session struct {
	svc      Summarizer
	content  func() string
	notifier notify.Notifier
	log      *zap.Logger

	mu       sync.Mutex
	messages []models.Message
	busy     bool
	gen      uint64
}

// New creates a session. content returns the current note text at the time
// of each request. notifier and log may be nil.
func New(svc Summarizer, content func() string, notifier notify.Notifier, log *zap.Logger) *Session {
	if notifier == nil {
		notifier = notify.Nop
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{svc: svc, content: content, notifier: notifier, log: log}
}

// Summarize replaces the conversation with a fresh summary of the note.
func (s *Session) Summarize(ctx context.Context) error {
	content := s.content()
	if strings.TrimSpace(content) == "" {
		s.notifier.Notify(notify.Notice{
			Level:       notify.Error,
			Title:       "No Content",
			Description: "Add some content to your note first.",
		})
		return models.ErrEmptyContent
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.messages = nil
	gen := s.gen
	s.mu.Unlock()

	resp, err := s.svc.Summarize(ctx, models.SummarizeRequest{NoteContent: content})
	summary, err := s.classify(resp, err, "Failed to generate summary")

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return ErrReset
	}
	s.busy = false
	if err != nil {
		return err
	}
	s.messages = []models.Message{{Role: models.RoleAssistant, Content: summary}}
	return nil
}

// Send asks a follow-up question. The question is shown at once and taken
// back if the request fails.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	history := slices.Clone(s.messages)
	s.messages = append(s.messages, models.Message{Role: models.RoleUser, Content: text})
	s.busy = true
	gen := s.gen
	s.mu.Unlock()

	resp, err := s.svc.Summarize(ctx, models.SummarizeRequest{
		NoteContent:         s.content(),
		UserMessage:         text,
		ConversationHistory: history,
	})
	reply, err := s.classify(resp, err, "Failed to send message")

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return ErrReset
	}
	s.busy = false
	if err != nil {
		s.messages = s.messages[:len(history)]
		return err
	}
	s.messages = append(s.messages, models.Message{Role: models.RoleAssistant, Content: reply})
	return nil
}

// classify turns the service answer into the reply text or an error, and
// notifies the user about failures.
func (s *Session) classify(resp *models.SummarizeResponse, err error, fallback string) (string, error) {
	var msg string
	switch {
	case err != nil:
		msg = err.Error()
	case resp == nil:
		msg = fallback
	case resp.Error != "":
		msg = resp.Error
	case strings.TrimSpace(resp.Summary) == "":
		msg = "empty response"
	default:
		return resp.Summary, nil
	}

	switch {
	case strings.Contains(msg, rateLimitMarker):
		s.notifier.Notify(notify.Notice{
			Level:       notify.Error,
			Title:       "Rate Limit Exceeded",
			Description: "Please try again in a moment.",
		})
		return "", models.ErrRateLimited
	case strings.Contains(msg, paymentMarker):
		s.notifier.Notify(notify.Notice{
			Level:       notify.Error,
			Title:       "Credits Required",
			Description: "Please add credits to your workspace to continue.",
		})
		return "", models.ErrPaymentRequired
	}

	if msg == "" {
		msg = fallback
	}
	s.log.Debug("AI request failed", zap.String("error", msg))
	s.notifier.Notify(notify.Notice{Level: notify.Error, Title: "AI Error", Description: msg})
	return "", fmt.Errorf("%w: %s", ErrAI, msg)
}

// Messages returns a copy of the conversation.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Reset discards the conversation. Answers to requests sent before the
// reset are dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.busy = false
	s.messages = nil
}
