// Package models defines the core data structures shared by the notes server
// and the terminal client: users, sessions, notes and AI conversation messages.
package models

import (
	"slices"
	"time"
)

// DefaultNoteTitle is the title given to freshly created notes.
const DefaultNoteTitle = "Untitled Note"

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Email is the login name chosen by the user.
	Email string
	// PasswordHash is the argon2id PHC string of the user's password.
	PasswordHash string
}

// Session is an authenticated session issued by the auth service.
type Session struct {
	// Token is the opaque bearer token presented on every request.
	Token string `json:"token"`
	// UserID identifies the owner of the session.
	UserID string `json:"user_id"`
	// Email is the login of the owner.
	Email string `json:"email"`
	// ExpiresAt is the moment the token stops being accepted.
	ExpiresAt time.Time `json:"expires_at"`
}

// Active reports whether the session is still live at now.
func (s *Session) Active(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.ExpiresAt)
}

// Note is a single user-owned note. Timestamps are written by the data store only.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `json:"user_id"`
}

// NewNote is the payload of an insert request.
type NewNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

// NotePatch carries a partial update; nil fields are left untouched.
type NotePatch struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

// TitlePatch returns a patch that only changes the title.
func TitlePatch(title string) NotePatch { return NotePatch{Title: &title} }

// ContentPatch returns a patch that only changes the content.
func ContentPatch(content string) NotePatch { return NotePatch{Content: &content} }

// TagsPatch returns a patch that only changes the tag set.
func TagsPatch(tags []string) NotePatch {
	cp := slices.Clone(tags)
	if cp == nil {
		cp = []string{}
	}
	return NotePatch{Tags: &cp}
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil
}

// Apply merges the set fields of p into n.
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Tags != nil {
		n.Tags = slices.Clone(*p.Tags)
	}
}

// Role tags the author of a conversation message.
type Role string

const (
	// RoleUser marks a message typed by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the AI service.
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one turn of an AI conversation about a note.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SummarizeRequest is the request body of the summarization service.
type SummarizeRequest struct {
	NoteContent         string    `json:"noteContent"`
	UserMessage         string    `json:"userMessage,omitempty"`
	ConversationHistory []Message `json:"conversationHistory,omitempty"`
}

// SummarizeResponse is the response body of the summarization service.
// Exactly one of Summary and Error is set.
type SummarizeResponse struct {
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}
