package http

import (
	"net/http"

	"github.com/atinyakov/GophNotes/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves
// the notes API.
//
// Routes:
//
//	POST   /api/auth/signup   → authHandler.SignUp
//	POST   /api/auth/login    → authHandler.SignIn
//	GET    /api/auth/session  → authHandler.Session     (protected)
//	POST   /api/auth/logout   → authHandler.SignOut     (protected)
//	GET    /api/notes         → notesHandler.List       (protected)
//	POST   /api/notes         → notesHandler.Create     (protected)
//	PATCH  /api/notes/{id}    → notesHandler.Update     (protected)
//	DELETE /api/notes/{id}    → notesHandler.Delete     (protected)
//	POST   /api/ai/summarize  → summarizeHandler.Summarize (protected)
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") rejects non-JSON bodies
//  2. WithRequestLogging(logger) logs every request
//  3. TokenAuth(validator) on the protected group
func NewRouter(
	authHandler *AuthHandler,
	notesHandler *NotesHandler,
	summarizeHandler *SummarizeHandler,
	validator middleware.TokenValidator,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/signup", authHandler.SignUp)
		r.Post("/auth/login", authHandler.SignIn)

		// Protected group: requires a live session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(validator))

			r.Get("/auth/session", authHandler.Session)
			r.Post("/auth/logout", authHandler.SignOut)

			r.Get("/notes", notesHandler.List)
			r.Post("/notes", notesHandler.Create)
			r.Patch("/notes/{id}", notesHandler.Update)
			r.Delete("/notes/{id}", notesHandler.Delete)

			r.Post("/ai/summarize", summarizeHandler.Summarize)
		})
	})

	return r
}
