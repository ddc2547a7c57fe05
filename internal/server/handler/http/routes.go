package http

import (
	"net/http"

	"github.com/ndubrovin/TaskKeeper/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the task service API.
//
// Routes:
//
//	POST   /auth/login    → authHandler.Login
//	POST   /auth/signup   → authHandler.Signup
//	GET    /auth/validate → authHandler.Validate (bearer)
//	GET    /tasks         → taskHandler.List     (bearer)
//	POST   /tasks         → taskHandler.Create   (bearer)
//	GET    /tasks/{id}    → taskHandler.Get      (bearer)
//	PUT    /tasks/{id}    → taskHandler.Update   (bearer)
//	DELETE /tasks/{id}    → taskHandler.Delete   (bearer)
func NewRouter(
	authHandler *AuthHandler,
	taskHandler *TaskHandler,
	verifier middleware.TokenVerifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	bearer := middleware.BearerAuth(verifier)

	r.Route("/auth", func(r chi.Router) {
		// Public endpoints
		r.Post("/login", authHandler.Login)
		r.Post("/signup", authHandler.Signup)

		// Protected: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(bearer)
			r.Get("/validate", authHandler.Validate)
		})
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(bearer)
		r.Get("/", taskHandler.List)
		r.Post("/", taskHandler.Create)
		r.Get("/{id}", taskHandler.Get)
		r.Put("/{id}", taskHandler.Update)
		r.Delete("/{id}", taskHandler.Delete)
	})

	return r
}
