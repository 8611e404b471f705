// Package notes holds the client's list of notes and keeps it in step with
// the remote data store.
package notes

import (
	"context"
	"slices"
	"sync"

	"github.com/atinyakov/GophNotes/internal/client/notify"
	"github.com/atinyakov/GophNotes/internal/models"
	"go.uber.org/zap"
)

// DataStore is the remote note data store.
type DataStore interface {
	List(ctx context.Context, userID string) ([]models.Note, error)
	Insert(ctx context.Context, in models.NewNote) (*models.Note, error)
	Update(ctx context.Context, id string, patch models.NotePatch) error
	Delete(ctx context.Context, id string) error
}

// Identity supplies the signed-in user, or "" when there is none.
type Identity interface {
	UserID() string
}

// Store is the ordered in-memory list of the user's notes plus the current
// selection. The selection is an id into the list, never a copy.
type Store struct {
	data     DataStore
	identity Identity
	notifier notify.Notifier
	log      *zap.Logger

	mu       sync.RWMutex
	notes    []models.Note
	selected string
}

// NewStore creates an empty store. notifier and log may be nil.
func NewStore(data DataStore, identity Identity, notifier notify.Notifier, log *zap.Logger) *Store {
	if notifier == nil {
		notifier = notify.Nop
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{data: data, identity: identity, notifier: notifier, log: log}
}

func (s *Store) fail(title string, err error) {
	s.log.Debug(title, zap.Error(err))
	s.notifier.Notify(notify.Notice{Level: notify.Error, Title: title, Description: err.Error()})
}

// Load replaces the list with the user's notes in the order the data store
// returns them. On failure the list is left as it was.
func (s *Store) Load(ctx context.Context) error {
	userID := s.identity.UserID()
	if userID == "" {
		return models.ErrUnauthorized
	}

	list, err := s.data.List(ctx, userID)
	if err != nil {
		s.fail("Error fetching notes", err)
		return err
	}
	for i := range list {
		if list[i].Tags == nil {
			list[i].Tags = []string{}
		}
	}

	s.mu.Lock()
	s.notes = list
	if s.selected != "" && s.indexOf(s.selected) < 0 {
		s.selected = ""
	}
	s.mu.Unlock()
	return nil
}

// Create inserts an empty note, puts it first and selects it.
func (s *Store) Create(ctx context.Context) (models.Note, error) {
	userID := s.identity.UserID()
	if userID == "" {
		return models.Note{}, models.ErrUnauthorized
	}

	n, err := s.data.Insert(ctx, models.NewNote{Title: models.DefaultNoteTitle, Content: "", UserID: userID})
	if err != nil {
		s.fail("Error creating note", err)
		return models.Note{}, err
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}

	s.mu.Lock()
	s.notes = append([]models.Note{*n}, s.notes...)
	s.selected = n.ID
	s.mu.Unlock()

	s.notifier.Notify(notify.Notice{Title: "Note created", Description: "Your new note has been created."})
	return clone(*n), nil
}

// Update sends patch for note id and, once the data store accepts it,
// merges the same fields into the local copy. UpdatedAt is not refreshed.
func (s *Store) Update(ctx context.Context, id string, patch models.NotePatch) error {
	if err := s.data.Update(ctx, id, patch); err != nil {
		s.fail("Error updating note", err)
		return err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		patch.Apply(&s.notes[i])
	}
	s.mu.Unlock()
	return nil
}

// Delete removes note id remotely and then locally, clearing the selection
// if it pointed at that note.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.data.Delete(ctx, id); err != nil {
		s.fail("Error deleting note", err)
		return err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.notes = slices.Delete(s.notes, i, i+1)
	}
	if s.selected == id {
		s.selected = ""
	}
	s.mu.Unlock()

	s.notifier.Notify(notify.Notice{Title: "Note deleted", Description: "Your note has been deleted."})
	return nil
}

// Select makes id the current note. It reports false for unknown ids.
func (s *Store) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return false
	}
	s.selected = id
	return true
}

// ClearSelection deselects the current note.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()
}

// SelectedID returns the id of the current note or "".
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Selected returns the current note as it is in the list.
func (s *Store) Selected() (models.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return models.Note{}, false
	}
	i := s.indexOf(s.selected)
	if i < 0 {
		return models.Note{}, false
	}
	return clone(s.notes[i]), true
}

// Get returns note id.
func (s *Store) Get(id string) (models.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Note{}, false
	}
	return clone(s.notes[i]), true
}

// Notes returns a snapshot of the list.
func (s *Store) Notes() []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = clone(n)
	}
	return out
}

// Reset drops every note and the selection.
func (s *Store) Reset() {
	s.mu.Lock()
	s.notes = nil
	s.selected = ""
	s.mu.Unlock()
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.notes, func(n models.Note) bool { return n.ID == id })
}

func clone(n models.Note) models.Note {
	n.Tags = slices.Clone(n.Tags)
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return n
}
