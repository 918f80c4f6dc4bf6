package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/models"
	"github.com/atinyakov/ContentAI/internal/service"
)

// ContentService defines the generation operations required by ContentHandler.
type ContentService interface {
	Generate(in service.GenerateInput) ([]models.Idea, error)
	Trends(user models.User, niche string) (hashtags, trends []string, err error)
}

// ContentHandler handles idea generation and trends.
type ContentHandler struct {
	Content       ContentService
	Subscriptions SubscriptionService
	Log           *zap.Logger
}

// GenerateRequest is the JSON payload of POST /generate.
type GenerateRequest struct {
	Niche     string `json:"niche"`
	Audience  string `json:"audience"`
	Platform  string `json:"platform"`
	Style     string `json:"style"`
	Lang      string `json:"lang"`
	IdeaCount int    `json:"idea_count"`
}

// TrendsRequest is the JSON payload of POST /trends.
type TrendsRequest struct {
	Niche string `json:"niche"`
}

// Generate handles POST /generate for any authenticated user.
func (h *ContentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}
	var req GenerateRequest
	if !decode(w, r, &req) {
		return
	}
	ideas, err := h.Content.Generate(service.GenerateInput{
		Niche:    req.Niche,
		Audience: req.Audience,
		Platform: req.Platform,
		Style:    req.Style,
		Count:    req.IdeaCount,
	})
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Ideas generated successfully",
		"content": map[string]any{"ideas": ideas},
	})
}

// Trends handles POST /trends. Only premium users and admins get an answer;
// everyone else gets 403.
func (h *ContentHandler) Trends(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req TrendsRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Subscriptions.Status(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	tags, trends, err := h.Content.Trends(u, req.Niche)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Trends retrieved successfully",
		"hashtags": tags,
		"trends":   trends,
		"note":     "Trends are refreshed daily.",
	})
}
