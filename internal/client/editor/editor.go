// Package editor buffers edits of the selected note and writes them back
// after a quiet period.
package editor

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/GophNotes/internal/models"
	"go.uber.org/zap"
)

// DefaultWindow is the quiet period before an edit is written.
const DefaultWindow = 500 * time.Millisecond

// ErrNoNote is returned by edits while no note is open.
var ErrNoNote = errors.New("no note is open")

// Updater persists a partial note update.
type Updater interface {
	Update(ctx context.Context, id string, patch models.NotePatch) error
}

// Timer is the handle of a scheduled write.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

type field int

const (
	fieldTitle field = iota
	fieldContent
	fieldTags
)

func (f field) String() string {
	switch f {
	case fieldTitle:
		return "title"
	case fieldContent:
		return "content"
	}
	return "tags"
}

type writeKey struct {
	noteID string
	field  field
}

type pendingWrite struct {
	timer Timer
	patch models.NotePatch
}

// Session is the edit buffer of one note. Every field has its own debounce
// timer; a keystroke stops the field's timer and replaces it. Timers are
// keyed by note, so writes scheduled for a note that is no longer open still
// fire against that note with the value typed last.
type Session struct {
	updater   Updater
	window    time.Duration
	afterFunc AfterFunc
	log       *zap.Logger

	mu      sync.Mutex
	open    bool
	noteID  string
	title   string
	content string
	tags    []string
	pending map[writeKey]*pendingWrite
}

// New creates a session that writes through updater after window of quiet.
// A zero window means DefaultWindow. log may be nil.
func New(updater Updater, window time.Duration, log *zap.Logger) *Session {
	if window <= 0 {
		window = DefaultWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		updater:   updater,
		window:    window,
		afterFunc: stdAfterFunc,
		log:       log,
		pending:   make(map[writeKey]*pendingWrite),
	}
}

// Open loads note into the buffer. Opening the note that is already open
// keeps the buffer as typed. Edits of note that are still waiting for their
// timer are laid over the loaded values.
func (s *Session) Open(note models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open && s.noteID == note.ID {
		return
	}
	for _, f := range []field{fieldTitle, fieldContent, fieldTags} {
		if w, ok := s.pending[writeKey{noteID: note.ID, field: f}]; ok {
			w.patch.Apply(&note)
		}
	}
	s.open = true
	s.noteID = note.ID
	s.title = note.Title
	s.content = note.Content
	s.tags = slices.Clone(note.Tags)
	if s.tags == nil {
		s.tags = []string{}
	}
}

// Close detaches the buffer. Pending writes still fire.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.noteID = ""
	s.title, s.content, s.tags = "", "", nil
}

// SetTitle replaces the title and restarts the title timer.
func (s *Session) SetTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrNoNote
	}
	s.title = title
	s.schedule(fieldTitle, models.TitlePatch(title))
	return nil
}

// SetContent replaces the content and restarts the content timer.
func (s *Session) SetContent(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrNoNote
	}
	s.content = content
	s.schedule(fieldContent, models.ContentPatch(content))
	return nil
}

// AddTag appends the trimmed tag unless it is blank or already present.
// It reports whether the tag set changed.
func (s *Session) AddTag(tag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return false, ErrNoNote
	}
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(s.tags, tag) {
		return false, nil
	}
	s.tags = append(s.tags, tag)
	s.schedule(fieldTags, models.TagsPatch(s.tags))
	return true, nil
}

// RemoveTag drops tag. It reports whether the tag set changed.
func (s *Session) RemoveTag(tag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return false, ErrNoNote
	}
	i := slices.Index(s.tags, tag)
	if i < 0 {
		return false, nil
	}
	s.tags = slices.Delete(s.tags, i, i+1)
	s.schedule(fieldTags, models.TagsPatch(s.tags))
	return true, nil
}

// schedule must be called with s.mu held.
func (s *Session) schedule(f field, patch models.NotePatch) {
	key := writeKey{noteID: s.noteID, field: f}
	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
	}
	w := &pendingWrite{patch: patch}
	w.timer = s.afterFunc(s.window, func() { s.fire(key, w) })
	s.pending[key] = w
}

func (s *Session) fire(key writeKey, w *pendingWrite) {
	s.mu.Lock()
	if s.pending[key] != w {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	s.write(key, w.patch)
}

func (s *Session) write(key writeKey, patch models.NotePatch) {
	if err := s.updater.Update(context.Background(), key.noteID, patch); err != nil {
		s.log.Warn("note write failed",
			zap.String("note_id", key.noteID),
			zap.Stringer("field", key.field),
			zap.Error(err))
	}
}

// Flush writes every pending edit now instead of waiting for its timer.
func (s *Session) Flush() {
	type job struct {
		key   writeKey
		patch models.NotePatch
	}

	s.mu.Lock()
	jobs := make([]job, 0, len(s.pending))
	for key, w := range s.pending {
		// A timer that already fired finds its entry gone and skips the write.
		w.timer.Stop()
		jobs = append(jobs, job{key: key, patch: w.patch})
		delete(s.pending, key)
	}
	s.mu.Unlock()

	slices.SortFunc(jobs, func(a, b job) int {
		if c := strings.Compare(a.key.noteID, b.key.noteID); c != 0 {
			return c
		}
		return int(a.key.field) - int(b.key.field)
	})
	for _, j := range jobs {
		s.write(j.key, j.patch)
	}
}

// Pending returns the number of scheduled writes.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// NoteID returns the id of the open note or "".
func (s *Session) NoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteID
}

// IsOpen reports whether a note is loaded.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Title returns the buffered title.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Content returns the buffered content.
func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// Tags returns a copy of the buffered tags.
func (s *Session) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tags)
}
