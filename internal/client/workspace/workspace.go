// Package workspace keeps the note list, the editor and the AI conversation
// pointed at the same note.
package workspace

import (
	"context"
	"sync"

	"github.com/atinyakov/GophNotes/internal/client/conversation"
	"github.com/atinyakov/GophNotes/internal/client/editor"
	"github.com/atinyakov/GophNotes/internal/client/notes"
	"github.com/atinyakov/GophNotes/internal/client/notify"
	"github.com/atinyakov/GophNotes/internal/client/session"
	"github.com/atinyakov/GophNotes/internal/models"
	"go.uber.org/zap"
)

// Workspace is the state behind one interactive client.
type Workspace struct {
	Notes  *notes.Store
	Editor *editor.Session

	summarizer conversation.Summarizer
	notifier   notify.Notifier
	log        *zap.Logger

	mu   sync.Mutex
	conv *conversation.Session
}

// New wires the components together and clears everything when the user
// signs out of sess.
func New(
	sess *session.Context,
	store *notes.Store,
	ed *editor.Session,
	summarizer conversation.Summarizer,
	notifier notify.Notifier,
	log *zap.Logger,
) *Workspace {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Workspace{
		Notes:      store,
		Editor:     ed,
		summarizer: summarizer,
		notifier:   notifier,
		log:        log,
	}
	sess.OnChange(func(s *models.Session) {
		if s == nil {
			w.log.Debug("signed out, clearing workspace")
			w.Deselect()
			w.Notes.Reset()
		}
	})
	return w
}

// Load fetches the note list. The editor is closed if its note is gone.
func (w *Workspace) Load(ctx context.Context) error {
	if err := w.Notes.Load(ctx); err != nil {
		return err
	}
	if w.Editor.IsOpen() && w.Notes.SelectedID() == "" {
		w.closeNote()
	}
	return nil
}

// Select makes note id current: the editor opens it and a new conversation
// replaces the previous one.
func (w *Workspace) Select(id string) (models.Note, error) {
	if !w.Notes.Select(id) {
		return models.Note{}, models.ErrNotFound
	}
	n, ok := w.Notes.Selected()
	if !ok {
		return models.Note{}, models.ErrNotFound
	}
	w.open(n)
	return n, nil
}

// Create adds a note and opens it.
func (w *Workspace) Create(ctx context.Context) (models.Note, error) {
	n, err := w.Notes.Create(ctx)
	if err != nil {
		return models.Note{}, err
	}
	w.open(n)
	return n, nil
}

// Delete removes note id and closes it if it was open.
func (w *Workspace) Delete(ctx context.Context, id string) error {
	if err := w.Notes.Delete(ctx, id); err != nil {
		return err
	}
	if w.Editor.NoteID() == id {
		w.closeNote()
	}
	return nil
}

// Deselect closes the current note.
func (w *Workspace) Deselect() {
	w.Notes.ClearSelection()
	w.closeNote()
}

// Conversation returns the conversation of the open note, or nil.
func (w *Workspace) Conversation() *conversation.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conv
}

// Close writes pending edits.
func (w *Workspace) Close() {
	w.Editor.Flush()
}

func (w *Workspace) open(n models.Note) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conv != nil && w.Editor.NoteID() == n.ID {
		return
	}
	w.Editor.Open(n)
	if w.conv != nil {
		w.conv.Reset()
	}
	w.conv = conversation.New(w.summarizer, w.Editor.Content, w.notifier, w.log)
}

func (w *Workspace) closeNote() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Editor.Close()
	if w.conv != nil {
		w.conv.Reset()
		w.conv = nil
	}
}
