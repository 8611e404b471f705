package models

import "errors"

var (
	// ErrNotFound is returned when a record does not exist for the requesting user.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique record already exists.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials is returned on a failed sign in.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidSignUp is returned for a malformed email or a too-short password.
	ErrInvalidSignUp = errors.New("invalid email or password too short")
	// ErrUnauthorized is returned when no live session is available.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrInvalidPatch is returned for empty or malformed partial updates.
	ErrInvalidPatch = errors.New("invalid note update")
	// ErrEmptyContent is returned when summarization is asked for an empty note.
	ErrEmptyContent = errors.New("note content is empty")
	// ErrRateLimited is returned when the AI provider throttles requests.
	ErrRateLimited = errors.New("rate limited")
	// ErrPaymentRequired is returned when the AI provider refuses for billing reasons.
	ErrPaymentRequired = errors.New("payment required")
	// ErrAIUnavailable is returned when no AI provider is configured.
	ErrAIUnavailable = errors.New("AI summarization is not configured")
)
