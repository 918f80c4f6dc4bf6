// Package http provides the HTTP handlers of the reference backend.
package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/models"
)

// AuthService defines the account operations required by AuthHandler.
type AuthService interface {
	// Signup creates a user and returns its id.
	Signup(ctx context.Context, email, password, name string) (int64, error)
	// Login checks credentials and returns a bearer token with the user.
	Login(ctx context.Context, email, password string) (string, models.User, error)
}

// AuthHandler handles signup, login and profile requests.
type AuthHandler struct {
	AuthService   AuthService
	Subscriptions SubscriptionService
	Log           *zap.Logger
}

// SignupRequest is the JSON payload of POST /signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the JSON payload of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	subscriptionView
}

func newUserView(u models.User, now time.Time) userView {
	return userView{UserID: u.ID, Email: u.Email, Name: u.Name, subscriptionView: newSubscriptionView(u, now)}
}

// Signup handles POST /signup and answers 201 with the new user id.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.AuthService.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user_id": id,
	})
}

// Login handles POST /login and answers with the token and the user's
// identity and plan.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}
	token, u, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		userView
	}{
		Message:  "Login successful",
		Token:    token,
		userView: newUserView(u, time.Now()),
	})
}

// UserInfo handles GET /user-info.
func (h *AuthHandler) UserInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	u, err := h.Subscriptions.Status(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(u, time.Now()))
}
