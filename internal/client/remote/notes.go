package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/atinyakov/GophNotes/internal/models"
)

// Notes is the client of the /api/notes endpoints.
type Notes struct {
	api api
}

// NewNotes creates a note data store client authenticated by tokens.
func NewNotes(client *http.Client, baseURL string, tokens TokenSource) *Notes {
	return &Notes{api: newAPI(client, baseURL, tokens)}
}

// List returns the notes of userID, most recently updated first.
func (n *Notes) List(ctx context.Context, userID string) ([]models.Note, error) {
	path := "/api/notes"
	if userID != "" {
		path += "?user_id=" + url.QueryEscape(userID)
	}
	var notes []models.Note
	if err := n.api.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Insert stores a new note and returns the record written by the server.
func (n *Notes) Insert(ctx context.Context, in models.NewNote) (*models.Note, error) {
	var note models.Note
	if err := n.api.do(ctx, http.MethodPost, "/api/notes", in, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// Update sends a partial update of note id.
func (n *Notes) Update(ctx context.Context, id string, patch models.NotePatch) error {
	return n.api.do(ctx, http.MethodPatch, "/api/notes/"+url.PathEscape(id), patch, nil)
}

// Delete removes note id.
func (n *Notes) Delete(ctx context.Context, id string) error {
	return n.api.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil)
}
