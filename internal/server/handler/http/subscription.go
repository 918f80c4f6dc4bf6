package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/models"
)

// SubscriptionService defines the plan operations required by the handlers.
type SubscriptionService interface {
	// Status returns the user with lapsed plans already downgraded.
	Status(ctx context.Context, userID int64) (models.User, error)
	// Update switches the plan; days is the premium length.
	Update(ctx context.Context, userID int64, plan string, days int) (models.User, error)
}

// SubscriptionHandler handles plan status and plan changes.
type SubscriptionHandler struct {
	Subscriptions SubscriptionService
	Log           *zap.Logger
}

// UpdateSubscriptionRequest is the JSON payload of POST /update-subscription.
type UpdateSubscriptionRequest struct {
	SubscriptionType string `json:"subscription_type"`
	Duration         int    `json:"duration"`
	PaymentID        string `json:"payment_id"`
}

// Check handles GET /check-subscription.
func (h *SubscriptionHandler) Check(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	u, err := h.Subscriptions.Status(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubscriptionView(u, time.Now()))
}

// Update handles POST /update-subscription. The payment id is recorded in
// the log only; no payment provider is consulted.
func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req UpdateSubscriptionRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Subscriptions.Update(r.Context(), id, req.SubscriptionType, req.Duration)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	if h.Log != nil && req.PaymentID != "" {
		h.Log.Info("subscription payment", zap.Int64("user_id", id), zap.String("payment_id", req.PaymentID))
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		subscriptionView
	}{
		Message:          "Subscription updated",
		subscriptionView: newSubscriptionView(u, time.Now()),
	})
}
