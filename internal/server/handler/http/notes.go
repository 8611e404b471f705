package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/GophNotes/internal/middleware"
	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/go-chi/chi/v5"
)

// NoteService defines the note data store operations required by NotesHandler.
type NoteService interface {
	List(ctx context.Context, userID string) ([]models.Note, error)
	Create(ctx context.Context, userID string, in models.NewNote) (*models.Note, error)
	Update(ctx context.Context, userID, id string, patch models.NotePatch) error
	Delete(ctx context.Context, userID, id string) error
}

// NotesHandler handles the /api/notes endpoints. All operations are scoped
// to the authenticated user.
type NotesHandler struct {
	NoteService NoteService
}

// List handles GET /api/notes. An explicit user_id query parameter must
// match the caller.
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if q := r.URL.Query().Get("user_id"); q != "" && q != userID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	notes, err := h.NoteService.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to list notes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// Create handles POST /api/notes and answers 201 with the stored note.
func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.NewNote
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	n, err := h.NoteService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), in)
	if errors.Is(err, models.ErrUnauthorized) {
		http.Error(w, "cannot create notes for another user", http.StatusForbidden)
		return
	}
	if err != nil {
		http.Error(w, "failed to create note", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// Update handles PATCH /api/notes/{id} with a partial body.
func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.NotePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	err := h.NoteService.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if writeNoteError(w, err, "failed to update note") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/notes/{id}.
func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.NoteService.Delete(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if writeNoteError(w, err, "failed to delete note") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeNoteError writes the response for err and reports whether it did.
func writeNoteError(w http.ResponseWriter, err error, fallback string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "note not found", http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidPatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
	return true
}
