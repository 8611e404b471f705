package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/lib/pq"
)

const noteColumns = `id, title, content, tags, created_at, updated_at, user_id`

// PostgresNoteRepository implements note storage against a PostgreSQL database.
// Every statement is scoped to the owning user.
type PostgresNoteRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresNoteRepository creates a new PostgresNoteRepository using the provided *sql.DB.
func NewPostgresNoteRepository(db *sql.DB) *PostgresNoteRepository {
	return &PostgresNoteRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.Title, &n.Content, pq.Array(&n.Tags), &n.CreatedAt, &n.UpdatedAt, &n.UserID)
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return n, err
}

// ListByUser returns all notes of userID, most recently updated first.
//
//	ctx:    context for cancellation and deadlines
//	userID: identifier of the owner
func (r *PostgresNoteRepository) ListByUser(ctx context.Context, userID string) ([]models.Note, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM notes WHERE user_id = $1 ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	return notes, nil
}

// Insert creates a note with the given id and returns the stored record,
// including the database-assigned timestamps.
func (r *PostgresNoteRepository) Insert(ctx context.Context, id string, in models.NewNote) (*models.Note, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO notes (id, user_id, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+noteColumns,
		id, in.UserID, in.Title, in.Content)
	n, err := scanNote(row)
	if err != nil {
		return nil, fmt.Errorf("Insert: %w", err)
	}
	return &n, nil
}

// Update writes only the fields set in patch and bumps updated_at.
// A note that does not exist for userID yields models.ErrNotFound.
func (r *PostgresNoteRepository) Update(ctx context.Context, userID, id string, patch models.NotePatch) error {
	if patch.Empty() {
		return models.ErrInvalidPatch
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Content != nil {
		set("content", *patch.Content)
	}
	if patch.Tags != nil {
		set("tags", pq.Array(*patch.Tags))
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id, userID)

	query := fmt.Sprintf(`UPDATE notes SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a note of userID. Unknown notes yield models.ErrNotFound.
func (r *PostgresNoteRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
