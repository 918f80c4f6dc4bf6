package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/middleware"
)

// NewRouter constructs the backend API handler.
//
// Routes:
//
//	GET  /health              → liveness
//	POST /signup              → authHandler.Signup
//	POST /login               → authHandler.Login
//	GET  /user-info           → authHandler.UserInfo           (bearer)
//	GET  /check-subscription  → subscriptionHandler.Check      (bearer)
//	POST /update-subscription → subscriptionHandler.Update     (bearer)
//	POST /generate            → contentHandler.Generate        (bearer)
//	POST /trends              → contentHandler.Trends          (bearer)
//
// Middleware chain (applied in order):
//  1. RequestID: assigns or echoes X-Request-ID
//  2. WithRequestLogging(logger): logs each request with its status
//  3. Recoverer: turns panics into 500
//  4. AllowContentType("application/json"): rejects non-JSON bodies
//  5. BearerAuth on the protected group
func NewRouter(
	authHandler *AuthHandler,
	subscriptionHandler *SubscriptionHandler,
	contentHandler *ContentHandler,
	verifier middleware.TokenVerifier,
	expired error,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/signup", authHandler.Signup)
	r.Post("/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(verifier, expired))

		r.Get("/user-info", authHandler.UserInfo)
		r.Get("/check-subscription", subscriptionHandler.Check)
		r.Post("/update-subscription", subscriptionHandler.Update)
		r.Post("/generate", contentHandler.Generate)
		r.Post("/trends", contentHandler.Trends)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	return r
}
