package workspace

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/atinyakov/GophNotes/internal/client/editor"
	"github.com/atinyakov/GophNotes/internal/client/notes"
	"github.com/atinyakov/GophNotes/internal/client/notify"
	"github.com/atinyakov/GophNotes/internal/client/session"
	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	subscriber func(*models.Session)
}

func (f *fakeAuth) GetSession(ctx context.Context) (*models.Session, error) {
	return &models.Session{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.subscriber(nil)
	return nil
}

func (f *fakeAuth) Subscribe(fn func(*models.Session)) func() {
	f.subscriber = fn
	return func() {}
}

// memoryStore is an in-memory note data store.
type memoryStore struct {
	notes []models.Note
	next  int
}

func (m *memoryStore) List(ctx context.Context, userID string) ([]models.Note, error) {
	return append([]models.Note(nil), m.notes...), nil
}

func (m *memoryStore) Insert(ctx context.Context, in models.NewNote) (*models.Note, error) {
	m.next++
	n := models.Note{ID: fmt.Sprintf("N%d", m.next), Title: in.Title, Content: in.Content, UserID: in.UserID}
	m.notes = append([]models.Note{n}, m.notes...)
	return &n, nil
}

func (m *memoryStore) Update(ctx context.Context, id string, patch models.NotePatch) error {
	for i := range m.notes {
		if m.notes[i].ID == id {
			patch.Apply(&m.notes[i])
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memoryStore) Delete(ctx context.Context, id string) error {
	for i := range m.notes {
		if m.notes[i].ID == id {
			m.notes = append(m.notes[:i], m.notes[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

type echoSummarizer struct{}

func (echoSummarizer) Summarize(ctx context.Context, req models.SummarizeRequest) (*models.SummarizeResponse, error) {
	return &models.SummarizeResponse{Summary: "summary of " + req.NoteContent}, nil
}

func newWorkspace(t *testing.T, existing ...models.Note) (*Workspace, *fakeAuth, *session.Context) {
	t.Helper()
	return newWorkspaceWith(t, &memoryStore{notes: existing}, &notify.Recorder{})
}

func newWorkspaceWith(t *testing.T, data *memoryStore, rec *notify.Recorder) (*Workspace, *fakeAuth, *session.Context) {
	t.Helper()
	auth := &fakeAuth{}
	sess := session.New(auth)
	require.NoError(t, sess.Init(context.Background()))

	store := notes.NewStore(data, sess, rec, nil)
	ed := editor.New(store, time.Hour, nil)
	w := New(sess, store, ed, echoSummarizer{}, rec, nil)
	require.NoError(t, w.Load(context.Background()))
	return w, auth, sess
}

func TestSelectOpensEditorAndFreshConversation(t *testing.T) {
	w, _, _ := newWorkspace(t,
		models.Note{ID: "A", Title: "a", Content: "alpha"},
		models.Note{ID: "B", Title: "b", Content: "beta"},
	)

	_, err := w.Select("A")
	require.NoError(t, err)
	assert.Equal(t, "A", w.Editor.NoteID())
	convA := w.Conversation()
	require.NotNil(t, convA)
	require.NoError(t, convA.Summarize(context.Background()))
	assert.Equal(t, "summary of alpha", convA.Messages()[0].Content)

	_, err = w.Select("A")
	require.NoError(t, err)
	assert.Same(t, convA, w.Conversation())

	_, err = w.Select("B")
	require.NoError(t, err)
	assert.NotSame(t, convA, w.Conversation())
	assert.Empty(t, convA.Messages())
	assert.Empty(t, w.Conversation().Messages())

	_, err = w.Select("missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "B", w.Editor.NoteID())
}

func TestConversationSeesEditedContent(t *testing.T) {
	w, _, _ := newWorkspace(t, models.Note{ID: "A", Content: "draft"})
	_, err := w.Select("A")
	require.NoError(t, err)

	require.NoError(t, w.Editor.SetContent("final"))
	require.NoError(t, w.Conversation().Summarize(context.Background()))
	assert.Equal(t, "summary of final", w.Conversation().Messages()[0].Content)
}

func TestCreateOpensNewNote(t *testing.T) {
	w, _, _ := newWorkspace(t, models.Note{ID: "A"})
	n, err := w.Create(context.Background())
	require.NoError(t, err)

	assert.Equal(t, n.ID, w.Notes.SelectedID())
	assert.Equal(t, n.ID, w.Editor.NoteID())
	assert.Equal(t, "Untitled Note", w.Editor.Title())
	assert.NotNil(t, w.Conversation())
}

func TestDeleteOpenNoteClosesEditor(t *testing.T) {
	w, _, _ := newWorkspace(t, models.Note{ID: "A"}, models.Note{ID: "B"})
	_, err := w.Select("A")
	require.NoError(t, err)

	require.NoError(t, w.Delete(context.Background(), "B"))
	assert.Equal(t, "A", w.Editor.NoteID())

	require.NoError(t, w.Delete(context.Background(), "A"))
	assert.False(t, w.Editor.IsOpen())
	assert.Nil(t, w.Conversation())
	assert.Empty(t, w.Notes.SelectedID())
}

func TestFlushOnClose(t *testing.T) {
	w, _, _ := newWorkspace(t, models.Note{ID: "A", Title: "old"})
	_, err := w.Select("A")
	require.NoError(t, err)
	require.NoError(t, w.Editor.SetTitle("new"))

	w.Close()
	n, _ := w.Notes.Get("A")
	assert.Equal(t, "new", n.Title)
}

func TestDeleteWithPendingWrite(t *testing.T) {
	data := &memoryStore{notes: []models.Note{{ID: "A", Title: "old"}, {ID: "B"}}}
	rec := &notify.Recorder{}
	w, _, _ := newWorkspaceWith(t, data, rec)
	_, err := w.Select("A")
	require.NoError(t, err)
	require.NoError(t, w.Editor.SetTitle("late"))

	require.NoError(t, w.Delete(context.Background(), "A"))
	assert.Equal(t, 1, w.Editor.Pending())

	w.Close()
	assert.Equal(t, []string{"Note deleted", "Error updating note"}, rec.Titles())
	_, ok := w.Notes.Get("A")
	assert.False(t, ok)
	require.Len(t, w.Notes.Notes(), 1)
	require.Len(t, data.notes, 1)
	assert.Equal(t, "B", data.notes[0].ID)
}

func TestSignOutClearsEverything(t *testing.T) {
	w, _, sess := newWorkspace(t, models.Note{ID: "A"})
	_, err := w.Select("A")
	require.NoError(t, err)

	require.NoError(t, sess.SignOut(context.Background()))
	assert.Empty(t, w.Notes.Notes())
	assert.False(t, w.Editor.IsOpen())
	assert.Nil(t, w.Conversation())
}
