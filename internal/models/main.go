// Package models defines the core data structures for users and their plans.
package models

import "time"

// Plan identifiers stored in users.subscription_type.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// User represents an account of the reference backend.
type User struct {
	// ID is the unique identifier for the user.
	ID int64
	// Email is the login name; unique.
	Email string
	// Name is optional.
	Name string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// IsAdmin grants every paid feature regardless of plan.
	IsAdmin bool
	// SubscriptionType is PlanFree or PlanPremium.
	SubscriptionType string
	// SubscriptionEnd is when a premium plan lapses. Nil for free plans.
	SubscriptionEnd *time.Time
}

// Active reports whether the user's premium plan is paid up at now. A
// premium row without an end date is not active.
func (u User) Active(now time.Time) bool {
	return u.SubscriptionType == PlanPremium && u.SubscriptionEnd != nil && u.SubscriptionEnd.After(now)
}

// Entitled reports whether the user may use paid features at now.
func (u User) Entitled(now time.Time) bool {
	return u.IsAdmin || u.Active(now)
}

// Idea is a single generated content idea.
type Idea struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hashtags    []string `json:"hashtags"`
}
