package notes

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/atinyakov/GophNotes/internal/client/notify"
	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDataStore is a function-field mock of DataStore.
type mockDataStore struct {
	mu        sync.Mutex
	ListFn    func(ctx context.Context, userID string) ([]models.Note, error)
	InsertFn  func(ctx context.Context, in models.NewNote) (*models.Note, error)
	UpdateFn  func(ctx context.Context, id string, patch models.NotePatch) error
	DeleteFn  func(ctx context.Context, id string) error
	updates   []models.NotePatch
	inserted  []models.NewNote
	listCalls int
}

func (m *mockDataStore) List(ctx context.Context, userID string) ([]models.Note, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	return m.ListFn(ctx, userID)
}

func (m *mockDataStore) Insert(ctx context.Context, in models.NewNote) (*models.Note, error) {
	m.mu.Lock()
	m.inserted = append(m.inserted, in)
	m.mu.Unlock()
	return m.InsertFn(ctx, in)
}

func (m *mockDataStore) Update(ctx context.Context, id string, patch models.NotePatch) error {
	m.mu.Lock()
	m.updates = append(m.updates, patch)
	m.mu.Unlock()
	if m.UpdateFn == nil {
		return nil
	}
	return m.UpdateFn(ctx, id, patch)
}

func (m *mockDataStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ctx, id)
}

type user string

func (u user) UserID() string { return string(u) }

func loaded(t *testing.T, notes ...models.Note) (*Store, *mockDataStore, *notify.Recorder) {
	t.Helper()
	data := &mockDataStore{
		ListFn: func(ctx context.Context, userID string) ([]models.Note, error) {
			return append([]models.Note(nil), notes...), nil
		},
	}
	rec := &notify.Recorder{}
	s := NewStore(data, user("u1"), rec, nil)
	require.NoError(t, s.Load(context.Background()))
	return s, data, rec
}

func ids(notes []models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestStore_LoadKeepsServerOrder(t *testing.T) {
	s, _, _ := loaded(t, models.Note{ID: "C"}, models.Note{ID: "A"}, models.Note{ID: "B"})
	assert.Equal(t, []string{"C", "A", "B"}, ids(s.Notes()))
	assert.NotNil(t, s.Notes()[0].Tags)
}

func TestStore_LoadFailureKeepsList(t *testing.T) {
	s, data, rec := loaded(t, models.Note{ID: "A"})
	data.ListFn = func(ctx context.Context, userID string) ([]models.Note, error) {
		return nil, errors.New("db down")
	}

	assert.Error(t, s.Load(context.Background()))
	assert.Equal(t, []string{"A"}, ids(s.Notes()))
	assert.Equal(t, []string{"Error fetching notes"}, rec.Titles())
	assert.Equal(t, "db down", rec.Notices()[0].Description)
}

func TestStore_LoadRequiresUser(t *testing.T) {
	data := &mockDataStore{}
	s := NewStore(data, user(""), nil, nil)
	assert.ErrorIs(t, s.Load(context.Background()), models.ErrUnauthorized)
	assert.Zero(t, data.listCalls)
}

func TestStore_CreatePrependsAndSelects(t *testing.T) {
	s, data, rec := loaded(t, models.Note{ID: "A"}, models.Note{ID: "B"})
	data.InsertFn = func(ctx context.Context, in models.NewNote) (*models.Note, error) {
		return &models.Note{ID: "N", Title: in.Title, Content: in.Content, UserID: in.UserID}, nil
	}

	n, err := s.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "N", n.ID)
	assert.Equal(t, []string{"N", "A", "B"}, ids(s.Notes()))
	assert.Equal(t, "N", s.SelectedID())
	assert.Equal(t, []models.NewNote{{Title: "Untitled Note", Content: "", UserID: "u1"}}, data.inserted)
	assert.Equal(t, []string{"Note created"}, rec.Titles())
}

func TestStore_CreateFailure(t *testing.T) {
	s, data, rec := loaded(t, models.Note{ID: "A"})
	s.Select("A")
	data.InsertFn = func(ctx context.Context, in models.NewNote) (*models.Note, error) {
		return nil, errors.New("insert failed")
	}

	_, err := s.Create(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{"A"}, ids(s.Notes()))
	assert.Equal(t, "A", s.SelectedID())
	assert.Equal(t, []string{"Error creating note"}, rec.Titles())
}

func TestStore_CreateWithoutSessionMakesNoCall(t *testing.T) {
	data := &mockDataStore{}
	s := NewStore(data, user(""), nil, nil)
	_, err := s.Create(context.Background())
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Empty(t, data.inserted)
}

func TestStore_UpdatePatchesOnlyGivenField(t *testing.T) {
	s, data, rec := loaded(t, models.Note{ID: "A", Title: "t", Content: "c", Tags: []string{"x"}})
	s.Select("A")

	require.NoError(t, s.Update(context.Background(), "A", models.TitlePatch("X")))

	n, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "X", n.Title)
	assert.Equal(t, "c", n.Content)
	assert.Equal(t, []string{"x"}, n.Tags)
	require.Len(t, data.updates, 1)
	assert.Nil(t, data.updates[0].Content)
	assert.Nil(t, data.updates[0].Tags)
	assert.Empty(t, rec.Titles())
}

func TestStore_UpdateFailureLeavesNote(t *testing.T) {
	s, data, rec := loaded(t, models.Note{ID: "A", Title: "t"})
	data.UpdateFn = func(ctx context.Context, id string, patch models.NotePatch) error {
		return models.ErrNotFound
	}

	assert.ErrorIs(t, s.Update(context.Background(), "A", models.TitlePatch("X")), models.ErrNotFound)
	n, _ := s.Get("A")
	assert.Equal(t, "t", n.Title)
	assert.Equal(t, []string{"Error updating note"}, rec.Titles())
	assert.Len(t, data.updates, 1)
}

func TestStore_DeleteSelectedClearsSelection(t *testing.T) {
	s, _, rec := loaded(t, models.Note{ID: "A"}, models.Note{ID: "B"})
	require.True(t, s.Select("B"))

	require.NoError(t, s.Delete(context.Background(), "B"))
	assert.Equal(t, []string{"A"}, ids(s.Notes()))
	assert.Empty(t, s.SelectedID())
	_, ok := s.Selected()
	assert.False(t, ok)
	assert.Equal(t, []string{"Note deleted"}, rec.Titles())
}

func TestStore_DeleteOtherKeepsSelection(t *testing.T) {
	s, _, _ := loaded(t, models.Note{ID: "A"}, models.Note{ID: "B"})
	s.Select("A")
	require.NoError(t, s.Delete(context.Background(), "B"))
	assert.Equal(t, "A", s.SelectedID())
}

func TestStore_DeleteFailure(t *testing.T) {
	s, data, rec := loaded(t, models.Note{ID: "A"})
	s.Select("A")
	data.DeleteFn = func(ctx context.Context, id string) error { return errors.New("boom") }

	assert.Error(t, s.Delete(context.Background(), "A"))
	assert.Equal(t, []string{"A"}, ids(s.Notes()))
	assert.Equal(t, "A", s.SelectedID())
	assert.Equal(t, []string{"Error deleting note"}, rec.Titles())
}

func TestStore_SelectionFollowsUpdates(t *testing.T) {
	s, _, _ := loaded(t, models.Note{ID: "A", Content: "old"})
	s.Select("A")
	require.NoError(t, s.Update(context.Background(), "A", models.ContentPatch("new")))

	sel, _ := s.Selected()
	listed, _ := s.Get("A")
	assert.Equal(t, listed, sel)
	assert.Equal(t, "new", sel.Content)

	assert.False(t, s.Select("missing"))
	assert.Equal(t, "A", s.SelectedID())
	s.ClearSelection()
	assert.Empty(t, s.SelectedID())
}

func TestStore_SnapshotsAreIndependent(t *testing.T) {
	s, _, _ := loaded(t, models.Note{ID: "A", Tags: []string{"x"}})
	snap := s.Notes()
	snap[0].Tags[0] = "mutated"
	n, _ := s.Get("A")
	assert.Equal(t, []string{"x"}, n.Tags)
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s, data, _ := loaded(t, models.Note{ID: "A"})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(context.Background(), "A", models.ContentPatch(strings.Repeat("x", 3)))
		}()
	}
	wg.Wait()
	assert.Len(t, data.updates, 20)
	n, _ := s.Get("A")
	assert.Equal(t, "xxx", n.Content)
}

func TestStore_Reset(t *testing.T) {
	s, _, _ := loaded(t, models.Note{ID: "A"})
	s.Select("A")
	s.Reset()
	assert.Empty(t, s.Notes())
	assert.Empty(t, s.SelectedID())
}
