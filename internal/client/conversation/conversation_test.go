package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/atinyakov/GophNotes/internal/client/notify"
	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summarizerFunc func(ctx context.Context, req models.SummarizeRequest) (*models.SummarizeResponse, error)

func (f summarizerFunc) Summarize(ctx context.Context, req models.SummarizeRequest) (*models.SummarizeResponse, error) {
	return f(ctx, req)
}

type countingSummarizer struct {
	mu    sync.Mutex
	reqs  []models.SummarizeRequest
	reply func(req models.SummarizeRequest) (*models.SummarizeResponse, error)
}

func (c *countingSummarizer) Summarize(ctx context.Context, req models.SummarizeRequest) (*models.SummarizeResponse, error) {
	c.mu.Lock()
	c.reqs = append(c.reqs, req)
	c.mu.Unlock()
	return c.reply(req)
}

func fixed(content string) func() string { return func() string { return content } }

func ok(text string) func(models.SummarizeRequest) (*models.SummarizeResponse, error) {
	return func(models.SummarizeRequest) (*models.SummarizeResponse, error) {
		return &models.SummarizeResponse{Summary: text}, nil
	}
}

func TestSummarize_WhitespaceMakesNoCall(t *testing.T) {
	svc := &countingSummarizer{reply: ok("x")}
	rec := &notify.Recorder{}
	s := New(svc, fixed("  \n\t"), rec, nil)

	assert.ErrorIs(t, s.Summarize(context.Background()), models.ErrEmptyContent)
	assert.Empty(t, svc.reqs)
	assert.Equal(t, []string{"No Content"}, rec.Titles())
	assert.False(t, s.Busy())
}

func TestSummarize_Success(t *testing.T) {
	svc := &countingSummarizer{reply: ok("the gist")}
	s := New(svc, fixed("long text"), nil, nil)
	require.NoError(t, s.Send(context.Background(), "earlier"))

	require.NoError(t, s.Summarize(context.Background()))
	assert.Equal(t, []models.Message{{Role: models.RoleAssistant, Content: "the gist"}}, s.Messages())

	last := svc.reqs[len(svc.reqs)-1]
	assert.Equal(t, models.SummarizeRequest{NoteContent: "long text"}, last)
}

func TestSummarize_Errors(t *testing.T) {
	tests := []struct {
		name      string
		reply     func(models.SummarizeRequest) (*models.SummarizeResponse, error)
		wantErr   error
		wantTitle string
	}{
		{
			name: "rate limited",
			reply: func(models.SummarizeRequest) (*models.SummarizeResponse, error) {
				return &models.SummarizeResponse{Error: "Rate limits exceeded, please try again later."}, nil
			},
			wantErr:   models.ErrRateLimited,
			wantTitle: "Rate Limit Exceeded",
		},
		{
			name: "payment required",
			reply: func(models.SummarizeRequest) (*models.SummarizeResponse, error) {
				return &models.SummarizeResponse{Error: "Payment required, please add funds."}, nil
			},
			wantErr:   models.ErrPaymentRequired,
			wantTitle: "Credits Required",
		},
		{
			name: "other service error",
			reply: func(models.SummarizeRequest) (*models.SummarizeResponse, error) {
				return &models.SummarizeResponse{Error: "model overloaded"}, nil
			},
			wantErr:   ErrAI,
			wantTitle: "AI Error",
		},
		{
			name: "transport error",
			reply: func(models.SummarizeRequest) (*models.SummarizeResponse, error) {
				return nil, errors.New("connection refused")
			},
			wantErr:   ErrAI,
			wantTitle: "AI Error",
		},
		{
			name:      "blank summary",
			reply:     ok("  "),
			wantErr:   ErrAI,
			wantTitle: "AI Error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &notify.Recorder{}
			s := New(&countingSummarizer{reply: tt.reply}, fixed("text"), rec, nil)

			err := s.Summarize(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, s.Messages())
			assert.False(t, s.Busy())
			assert.Equal(t, []string{tt.wantTitle}, rec.Titles())
		})
	}
}

func TestSummarize_GenericErrorCarriesRawMessage(t *testing.T) {
	rec := &notify.Recorder{}
	s := New(summarizerFunc(func(ctx context.Context, req models.SummarizeRequest) (*models.SummarizeResponse, error) {
		return &models.SummarizeResponse{Error: "model overloaded"}, nil
	}), fixed("text"), rec, nil)

	err := s.Summarize(context.Background())
	assert.EqualError(t, err, "AI request failed: model overloaded")
	assert.Equal(t, "model overloaded", rec.Notices()[0].Description)
}

func TestSend_EmptyIsIgnored(t *testing.T) {
	svc := &countingSummarizer{reply: ok("x")}
	s := New(svc, fixed("text"), nil, nil)
	assert.ErrorIs(t, s.Send(context.Background(), "   "), ErrEmptyMessage)
	assert.Empty(t, svc.reqs)
	assert.Empty(t, s.Messages())
}

func TestSend_SuccessCarriesHistory(t *testing.T) {
	svc := &countingSummarizer{reply: ok("summary")}
	s := New(svc, fixed("note body"), nil, nil)
	require.NoError(t, s.Summarize(context.Background()))

	svc.reply = ok("because")
	require.NoError(t, s.Send(context.Background(), "  why?  "))

	assert.Equal(t, []models.Message{
		{Role: models.RoleAssistant, Content: "summary"},
		{Role: models.RoleUser, Content: "why?"},
		{Role: models.RoleAssistant, Content: "because"},
	}, s.Messages())

	req := svc.reqs[1]
	assert.Equal(t, "note body", req.NoteContent)
	assert.Equal(t, "why?", req.UserMessage)
	assert.Equal(t, []models.Message{{Role: models.RoleAssistant, Content: "summary"}}, req.ConversationHistory)
}

func TestSend_FailurePreservesLength(t *testing.T) {
	replies := []func(models.SummarizeRequest) (*models.SummarizeResponse, error){
		func(models.SummarizeRequest) (*models.SummarizeResponse, error) {
			return &models.SummarizeResponse{Error: "Rate limits exceeded"}, nil
		},
		func(models.SummarizeRequest) (*models.SummarizeResponse, error) {
			return &models.SummarizeResponse{Error: "Payment required"}, nil
		},
		func(models.SummarizeRequest) (*models.SummarizeResponse, error) {
			return nil, errors.New("timeout")
		},
	}
	for _, reply := range replies {
		svc := &countingSummarizer{reply: ok("summary")}
		s := New(svc, fixed("text"), nil, nil)
		require.NoError(t, s.Summarize(context.Background()))
		require.NoError(t, s.Send(context.Background(), "first"))
		before := s.Messages()

		svc.reply = reply
		assert.Error(t, s.Send(context.Background(), "second"))
		assert.Equal(t, before, s.Messages())
		assert.False(t, s.Busy())
	}
}

func TestSend_OptimisticMessageAndBusyGate(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	svc := summarizerFunc(func(ctx context.Context, req models.SummarizeRequest) (*models.SummarizeResponse, error) {
		close(started)
		<-release
		return &models.SummarizeResponse{Summary: "answer"}, nil
	})
	s := New(svc, fixed("text"), nil, nil)

	done := make(chan error, 1)
	go func() { done <- s.Send(context.Background(), "question") }()
	<-started

	assert.True(t, s.Busy())
	assert.Equal(t, []models.Message{{Role: models.RoleUser, Content: "question"}}, s.Messages())
	assert.ErrorIs(t, s.Send(context.Background(), "another"), ErrBusy)
	assert.ErrorIs(t, s.Summarize(context.Background()), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, s.Messages(), 2)
	assert.False(t, s.Busy())
}

func TestReset_DropsLateAnswer(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	svc := summarizerFunc(func(ctx context.Context, req models.SummarizeRequest) (*models.SummarizeResponse, error) {
		close(started)
		<-release
		return &models.SummarizeResponse{Summary: "late"}, nil
	})
	s := New(svc, fixed("text"), nil, nil)

	done := make(chan error, 1)
	go func() { done <- s.Summarize(context.Background()) }()
	<-started

	s.Reset()
	assert.False(t, s.Busy())

	close(release)
	assert.ErrorIs(t, <-done, ErrReset)
	assert.Empty(t, s.Messages())
}
