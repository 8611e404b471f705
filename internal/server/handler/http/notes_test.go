package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/GophNotes/internal/models"
	"go.uber.org/zap"
)

type fakeNoteService struct {
	notes     []models.Note
	listErr   error
	createErr error
	updateErr error
	deleteErr error

	gotUserID string
	gotID     string
	gotNew    models.NewNote
	gotPatch  models.NotePatch
}

func (f *fakeNoteService) List(ctx context.Context, userID string) ([]models.Note, error) {
	f.gotUserID = userID
	return f.notes, f.listErr
}

func (f *fakeNoteService) Create(ctx context.Context, userID string, in models.NewNote) (*models.Note, error) {
	f.gotUserID, f.gotNew = userID, in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Note{ID: "new", Title: in.Title, Content: in.Content, UserID: userID, Tags: []string{}}, nil
}

func (f *fakeNoteService) Update(ctx context.Context, userID, id string, patch models.NotePatch) error {
	f.gotUserID, f.gotID, f.gotPatch = userID, id, patch
	return f.updateErr
}

func (f *fakeNoteService) Delete(ctx context.Context, userID, id string) error {
	f.gotUserID, f.gotID = userID, id
	return f.deleteErr
}

// newTestRouter mounts the full router with a fixed session "tok" for user u1.
func newTestRouter(notes *fakeNoteService, sum Summarizer) http.Handler {
	auth := &fakeAuthService{session: testSession()}
	return NewRouter(
		&AuthHandler{AuthService: auth},
		&NotesHandler{NoteService: notes},
		&SummarizeHandler{Summarizer: sum, Logger: zap.NewNop()},
		auth,
		zap.NewNop(),
	)
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNotes_List(t *testing.T) {
	svc := &fakeNoteService{notes: []models.Note{{ID: "A"}, {ID: "B"}}}
	h := newTestRouter(svc, nil)

	rec := doRequest(t, h, "GET", "/api/notes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got []models.Note
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].ID != "A" || svc.gotUserID != "u1" {
		t.Errorf("unexpected list %+v for user %q", got, svc.gotUserID)
	}

	if rec := doRequest(t, h, "GET", "/api/notes?user_id=u2", ""); rec.Code != http.StatusForbidden {
		t.Errorf("foreign user_id: expected 403, got %d", rec.Code)
	}

	svc.listErr = errors.New("db down")
	if rec := doRequest(t, h, "GET", "/api/notes", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("list failure: expected 500, got %d", rec.Code)
	}
}

func TestNotes_Create(t *testing.T) {
	svc := &fakeNoteService{}
	h := newTestRouter(svc, nil)

	rec := doRequest(t, h, "POST", "/api/notes", `{"title":"Untitled Note","content":"","user_id":"u1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var n models.Note
	if err := json.NewDecoder(rec.Body).Decode(&n); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n.ID != "new" || n.Title != "Untitled Note" || svc.gotNew.UserID != "u1" {
		t.Errorf("unexpected note %+v (input %+v)", n, svc.gotNew)
	}

	svc.createErr = models.ErrUnauthorized
	if rec := doRequest(t, h, "POST", "/api/notes", `{"user_id":"u2"}`); rec.Code != http.StatusForbidden {
		t.Errorf("foreign owner: expected 403, got %d", rec.Code)
	}
	if rec := doRequest(t, h, "POST", "/api/notes", `{`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad body: expected 400, got %d", rec.Code)
	}
}

func TestNotes_Update(t *testing.T) {
	svc := &fakeNoteService{}
	h := newTestRouter(svc, nil)

	rec := doRequest(t, h, "PATCH", "/api/notes/A", `{"title":"X"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotID != "A" || svc.gotPatch.Title == nil || *svc.gotPatch.Title != "X" || svc.gotPatch.Content != nil {
		t.Errorf("unexpected update call id=%q patch=%+v", svc.gotID, svc.gotPatch)
	}

	cases := []struct {
		err  error
		want int
	}{
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrInvalidPatch, http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc.updateErr = tc.err
		if rec := doRequest(t, h, "PATCH", "/api/notes/A", `{"content":"c"}`); rec.Code != tc.want {
			t.Errorf("update error %v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestNotes_Delete(t *testing.T) {
	svc := &fakeNoteService{}
	h := newTestRouter(svc, nil)

	if rec := doRequest(t, h, "DELETE", "/api/notes/B", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if svc.gotID != "B" || svc.gotUserID != "u1" {
		t.Errorf("unexpected delete call id=%q user=%q", svc.gotID, svc.gotUserID)
	}

	svc.deleteErr = models.ErrNotFound
	if rec := doRequest(t, h, "DELETE", "/api/notes/B", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing note: expected 404, got %d", rec.Code)
	}
}

func TestRouter_Auth(t *testing.T) {
	h := newTestRouter(&fakeNoteService{}, nil)

	req := httptest.NewRequest("GET", "/api/notes", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest("POST", "/api/notes", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer tok")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("non-JSON body: expected 415, got %d", rec.Code)
	}

	if rec := doRequest(t, h, "GET", "/api/auth/session", ""); rec.Code != http.StatusOK {
		t.Errorf("session: expected 200, got %d", rec.Code)
	}
	if rec := doRequest(t, h, "POST", "/api/auth/logout", ""); rec.Code != http.StatusNoContent {
		t.Errorf("logout: expected 204, got %d", rec.Code)
	}
}
