package api

import "github.com/atinyakov/ContentAI/internal/client/storage"

// Credentials is the login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type SignupResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// LoginResponse carries the token and the identity the backend issued it for.
type LoginResponse struct {
	Message          string `json:"message"`
	Token            string `json:"token"`
	UserID           int64  `json:"userId"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	IsSubscribed     bool   `json:"isSubscribed"`
	IsAdmin          bool   `json:"isAdmin"`
	SubscriptionType string `json:"subscriptionType"`
	SubscriptionEnd  string `json:"subscriptionEnd"`
}

// Session converts the response into the persisted session record.
func (r LoginResponse) Session() storage.Session {
	return storage.Session{
		Token:            r.Token,
		UserID:           r.UserID,
		Email:            r.Email,
		Name:             r.Name,
		IsSubscribed:     r.IsSubscribed,
		IsAdmin:          r.IsAdmin,
		SubscriptionType: r.SubscriptionType,
		SubscriptionEnd:  r.SubscriptionEnd,
	}
}

// SubscriptionStatus is returned by check-subscription and update-subscription.
type SubscriptionStatus struct {
	Message          string `json:"message,omitempty"`
	SubscriptionType string `json:"subscriptionType"`
	IsActive         bool   `json:"isActive"`
	IsSubscribed     bool   `json:"isSubscribed"`
	IsAdmin          bool   `json:"isAdmin"`
	SubscriptionEnd  string `json:"subscriptionEnd"`
}

// Apply copies the entitlement fields onto sess, keeping identity and token.
func (s SubscriptionStatus) Apply(sess storage.Session) storage.Session {
	sess.IsSubscribed = s.IsSubscribed
	sess.IsAdmin = s.IsAdmin
	sess.SubscriptionType = s.SubscriptionType
	sess.SubscriptionEnd = s.SubscriptionEnd
	return sess
}

type UserInfo struct {
	UserID           int64  `json:"userId"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	IsSubscribed     bool   `json:"isSubscribed"`
	IsAdmin          bool   `json:"isAdmin"`
	SubscriptionType string `json:"subscriptionType"`
	SubscriptionEnd  string `json:"subscriptionEnd"`
}

// Apply refreshes identity and entitlement fields of sess, keeping the token.
func (u UserInfo) Apply(sess storage.Session) storage.Session {
	sess.UserID = u.UserID
	sess.Email = u.Email
	sess.Name = u.Name
	sess.IsSubscribed = u.IsSubscribed
	sess.IsAdmin = u.IsAdmin
	sess.SubscriptionType = u.SubscriptionType
	sess.SubscriptionEnd = u.SubscriptionEnd
	return sess
}

type GenerateRequest struct {
	Niche     string `json:"niche"`
	Audience  string `json:"audience,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Style     string `json:"style,omitempty"`
	Lang      string `json:"lang,omitempty"`
	IdeaCount int    `json:"ideaCount,omitempty"`
}

type GenerateResponse struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message"`
	Content storage.GenerationResult `json:"content"`
}

type UpdateSubscriptionRequest struct {
	SubscriptionType string `json:"subscriptionType"`
	Duration         int    `json:"duration,omitempty"` // days
	PaymentID        string `json:"paymentId,omitempty"`
}

type TrendsRequest struct {
	Niche string `json:"niche"`
}

type TrendsResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Note     string   `json:"note"`
	Hashtags []string `json:"hashtags"`
	Trends   []string `json:"trends"`
}

// Result converts the response into the results-view payload.
func (r TrendsResponse) Result() storage.GenerationResult {
	return storage.GenerationResult{Hashtags: r.Hashtags, Trends: r.Trends}
}
