package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/middleware"
	"github.com/atinyakov/ContentAI/internal/models"
	"github.com/atinyakov/ContentAI/internal/service"
)

const maxBodyBytes = 1 << 20

// errorBody is the failure payload of every endpoint.
type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	FieldName string `json:"field_name,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

// writeServiceError maps service and repository errors to statuses.
// Anything unrecognized is logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation_error", Message: ve.Message, FieldName: ve.Field})
	case errors.Is(err, models.ErrUserExists):
		writeError(w, http.StatusConflict, "user_exists", "User with this email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid email or password")
	case errors.Is(err, models.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, "unauthorized", "User not found")
	case errors.Is(err, service.ErrPremiumRequired):
		writeError(w, http.StatusForbidden, "forbidden", "Premium subscription required")
	default:
		if log != nil {
			log.Error("request failed",
				zap.String("path", r.URL.Path),
				zap.String("request_id", middleware.GetRequestID(r.Context())),
				zap.Error(err),
			)
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// decode reads a JSON body into v, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return false
	}
	return true
}

// userID returns the authenticated user, answering 401 itself when absent.
func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
	}
	return id, ok
}

// subscriptionView is the entitlement part shared by several responses.
type subscriptionView struct {
	SubscriptionType string  `json:"subscription_type"`
	IsActive         bool    `json:"is_active"`
	IsSubscribed     bool    `json:"is_subscribed"`
	IsAdmin          bool    `json:"is_admin"`
	SubscriptionEnd  *string `json:"subscription_end"`
}

func newSubscriptionView(u models.User, now time.Time) subscriptionView {
	v := subscriptionView{
		SubscriptionType: u.SubscriptionType,
		IsActive:         u.Active(now),
		IsSubscribed:     u.Active(now),
		IsAdmin:          u.IsAdmin,
	}
	if u.SubscriptionEnd != nil {
		s := u.SubscriptionEnd.UTC().Format(time.RFC3339)
		v.SubscriptionEnd = &s
	}
	return v
}
