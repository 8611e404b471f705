// Package http provides the HTTP API of the notes server: authentication,
// note storage and AI summarization endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/GophNotes/internal/middleware"
	"github.com/atinyakov/GophNotes/internal/models"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// SignUp registers a user and returns a new session.
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	// SignIn checks credentials and returns a new session.
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	// SignOut revokes the given token.
	SignOut(ctx context.Context, token string) error
}

// AuthHandler handles HTTP requests for sign up, sign in and sign out.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// CredentialsRequest represents the JSON payload for sign up and sign in.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func decodeCredentials(r *http.Request) (CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		return req, false
	}
	return req, true
}

// SignUp handles POST /api/auth/signup. It creates the user and answers 201
// with the new session.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(r)
	if !ok {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	sess, err := h.AuthService.SignUp(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, models.ErrInvalidSignUp):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, models.ErrConflict):
		http.Error(w, "user already exists", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

// SignIn handles POST /api/auth/login.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(r)
	if !ok {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	sess, err := h.AuthService.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// Session handles GET /api/auth/session and echoes the caller's session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// SignOut handles POST /api/auth/logout and revokes the caller's token.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if err := h.AuthService.SignOut(r.Context(), sess.Token); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
