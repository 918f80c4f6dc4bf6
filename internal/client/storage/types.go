package storage

// Session is the single persisted identity record. A Session without Token
// means "logged out" and never carries entitlement flags.
type Session struct {
	Token            string `json:"token,omitempty"`
	UserID           int64  `json:"userId,omitempty"`
	Email            string `json:"email,omitempty"`
	Name             string `json:"name,omitempty"`
	IsSubscribed     bool   `json:"isSubscribed"`
	IsAdmin          bool   `json:"isAdmin"`
	SubscriptionType string `json:"subscriptionType,omitempty"` // advisory only
	SubscriptionEnd  string `json:"subscriptionEnd,omitempty"`  // advisory only, ISO-8601
}

// LoggedIn reports whether the session carries a bearer token.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// Entitled reports whether the cached flags allow paid features.
func (s Session) Entitled() bool {
	return s.LoggedIn() && (s.IsSubscribed || s.IsAdmin)
}

// Idea is a single generated content idea.
type Idea struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
}

// GenerationResult is the hand-off payload between a generation call and the
// results view: either a list of ideas or a hashtags/trends pair.
type GenerationResult struct {
	Ideas    []Idea   `json:"ideas,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
	Trends   []string `json:"trends,omitempty"`
}

// Empty reports whether r has nothing to show.
func (r GenerationResult) Empty() bool {
	return len(r.Ideas) == 0 && len(r.Hashtags) == 0 && len(r.Trends) == 0
}
