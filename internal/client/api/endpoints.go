package api

import (
	"context"
	"net/http"
)

// Backend paths.
const (
	PathLogin              = "/login"
	PathSignup             = "/signup"
	PathCheckSubscription  = "/check-subscription"
	PathUserInfo           = "/user-info"
	PathGenerate           = "/generate"
	PathUpdateSubscription = "/update-subscription"
	PathTrends             = "/trends"
)

// Login exchanges credentials for a token. It does not store the session.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, call{method: http.MethodPost, path: PathLogin, auth: public, in: creds, out: &out})
	return out, err
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (SignupResponse, error) {
	var out SignupResponse
	err := c.do(ctx, call{method: http.MethodPost, path: PathSignup, auth: public, in: req, out: &out})
	return out, err
}

// CheckSubscription revalidates the entitlement of the stored session.
func (c *Client) CheckSubscription(ctx context.Context) (SubscriptionStatus, error) {
	var out SubscriptionStatus
	err := c.do(ctx, call{method: http.MethodGet, path: PathCheckSubscription, auth: bearer, out: &out})
	return out, err
}

func (c *Client) UserInfo(ctx context.Context) (UserInfo, error) {
	var out UserInfo
	err := c.do(ctx, call{method: http.MethodGet, path: PathUserInfo, auth: bearer, out: &out})
	return out, err
}

func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	var out GenerateResponse
	err := c.do(ctx, call{method: http.MethodPost, path: PathGenerate, auth: bearer, in: req, out: &out})
	return out, err
}

func (c *Client) UpdateSubscription(ctx context.Context, req UpdateSubscriptionRequest) (SubscriptionStatus, error) {
	var out SubscriptionStatus
	err := c.do(ctx, call{method: http.MethodPost, path: PathUpdateSubscription, auth: bearer, in: req, out: &out})
	return out, err
}

func (c *Client) Trends(ctx context.Context, req TrendsRequest) (TrendsResponse, error) {
	var out TrendsResponse
	err := c.do(ctx, call{method: http.MethodPost, path: PathTrends, auth: bearer, in: req, out: &out})
	return out, err
}
