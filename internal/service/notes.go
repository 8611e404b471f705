package service

import (
	"context"
	"slices"
	"strings"

	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/google/uuid"
)

// NoteRepository defines the persistence operations needed by the NoteService.
type NoteRepository interface {
	// ListByUser returns the user's notes, most recently updated first.
	ListByUser(ctx context.Context, userID string) ([]models.Note, error)
	// Insert stores a new note under id and returns the stored record.
	Insert(ctx context.Context, id string, in models.NewNote) (*models.Note, error)
	// Update applies a partial update to a note of userID.
	Update(ctx context.Context, userID, id string, patch models.NotePatch) error
	// Delete removes a note of userID.
	Delete(ctx context.Context, userID, id string) error
}

// NoteService implements the note data store on top of a NoteRepository.
type NoteService struct {
	// repo is the underlying persistence repository.
	repo NoteRepository
}

// NewNoteService constructs a NoteService with the provided NoteRepository.
func NewNoteService(repo NoteRepository) *NoteService {
	return &NoteService{repo: repo}
}

// List returns all notes owned by userID ordered by last update, descending.
func (s *NoteService) List(ctx context.Context, userID string) ([]models.Note, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Create inserts a note for userID. The caller-supplied owner must match
// userID when given.
func (s *NoteService) Create(ctx context.Context, userID string, in models.NewNote) (*models.Note, error) {
	if in.UserID != "" && in.UserID != userID {
		return nil, models.ErrUnauthorized
	}
	in.UserID = userID
	return s.repo.Insert(ctx, uuid.NewString(), in)
}

// Update validates and applies a partial update. Tags must be trimmed,
// non-empty and unique.
func (s *NoteService) Update(ctx context.Context, userID, id string, patch models.NotePatch) error {
	if patch.Empty() {
		return models.ErrInvalidPatch
	}
	if patch.Tags != nil && !validTags(*patch.Tags) {
		return models.ErrInvalidPatch
	}
	return s.repo.Update(ctx, userID, id, patch)
}

// Delete removes a note owned by userID.
func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

func validTags(tags []string) bool {
	for i, t := range tags {
		if t == "" || strings.TrimSpace(t) != t {
			return false
		}
		if slices.Contains(tags[:i], t) {
			return false
		}
	}
	return true
}
