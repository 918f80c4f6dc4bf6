package account

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/ContentAI/internal/client/api"
	"github.com/atinyakov/ContentAI/internal/client/authbus"
	"github.com/atinyakov/ContentAI/internal/client/storage"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

type harness struct {
	svc       *Service
	sessions  *storage.SessionStore
	results   *storage.ResultStore
	calls     *atomic.Int32
	published *atomic.Int32
}

// newHarness wires the real client and stores over a fake transport that
// answers each path from routes.
func newHarness(t *testing.T, routes map[string]*http.Response) harness {
	t.Helper()
	backend := storage.NewMemoryBackend()
	sessions := storage.NewSessionStore(backend, nil)
	results := storage.NewResultStore(backend, nil)

	var calls atomic.Int32
	hc := &http.Client{Timeout: time.Second, Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		resp, ok := routes[req.URL.Path]
		if !ok {
			return nil, errors.New("connection refused")
		}
		return resp, nil
	})}
	client := api.New("http://api.test", sessions, api.WithHTTPClient(hc))

	bus := authbus.New()
	var published atomic.Int32
	bus.Subscribe(func() { published.Add(1) })

	return harness{
		svc:       NewService(client, sessions, results, bus, nil),
		sessions:  sessions,
		results:   results,
		calls:     &calls,
		published: &published,
	}
}

func (h harness) login(t *testing.T, sess storage.Session) {
	t.Helper()
	require.NoError(t, h.sessions.Replace(context.Background(), sess))
}

func TestLogin_StoresNormalizedSession(t *testing.T) {
	h := newHarness(t, map[string]*http.Response{
		api.PathLogin: jsonResponse(200, `{"user_id":7,"email":"a@b.com","is_subscribed":false,"token":"T1"}`),
	})
	ctx := context.Background()

	sess, err := h.svc.Login(ctx, api.Credentials{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)

	want := storage.Session{UserID: 7, Email: "a@b.com", IsSubscribed: false, Token: "T1"}
	assert.Equal(t, want, sess)
	stored, ok := h.sessions.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, want, stored)
	assert.Equal(t, int32(1), h.published.Load())
}

func TestLogin_WithoutTokenStoresNothing(t *testing.T) {
	h := newHarness(t, map[string]*http.Response{
		api.PathLogin: jsonResponse(200, `{"user_id":7,"email":"a@b.com"}`),
	})

	_, err := h.svc.Login(context.Background(), api.Credentials{Email: "a@b.com", Password: "pw"})

	assert.ErrorIs(t, err, ErrNoToken)
	assert.ErrorIs(t, err, api.ErrRequestFailed)
	_, ok := h.sessions.Get(context.Background())
	assert.False(t, ok)
	assert.Equal(t, int32(0), h.published.Load())
}

func TestLogin_RejectedCredentials(t *testing.T) {
	h := newHarness(t, map[string]*http.Response{
		api.PathLogin: jsonResponse(401, `{"error":"unauthorized","message":"Invalid email or password"}`),
	})

	_, err := h.svc.Login(context.Background(), api.Credentials{Email: "a@b.com", Password: "bad"})

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.ErrorIs(t, err, api.ErrRequestFailed)
	assert.NotErrorIs(t, err, api.ErrSessionExpired)
	assert.Equal(t, int32(0), h.published.Load())
}

func TestSignup_DoesNotLogIn(t *testing.T) {
	h := newHarness(t, map[string]*http.Response{
		api.PathSignup: jsonResponse(201, `{"message":"User created","user_id":9}`),
	})

	resp, err := h.svc.Signup(context.Background(), api.SignupRequest{Email: "n@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), resp.UserID)
	_, ok := h.sessions.Get(context.Background())
	assert.False(t, ok)
}

func TestLogout(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t, storage.Session{Token: "T"})

	require.NoError(t, h.svc.Logout(context.Background()))
	_, ok := h.sessions.Get(context.Background())
	assert.False(t, ok)
	assert.Equal(t, int32(1), h.published.Load())
}

func TestRefresh_KeepsToken(t *testing.T) {
	h := newHarness(t, map[string]*http.Response{
		api.PathUserInfo: jsonResponse(200, `{"user_id":7,"email":"a@b.com","name":"Ann","is_subscribed":true,"subscription_type":"premium"}`),
	})
	h.login(t, storage.Session{Token: "T", UserID: 7})

	sess, err := h.svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T", sess.Token)
	assert.Equal(t, "Ann", sess.Name)
	assert.True(t, sess.IsSubscribed)
	assert.Equal(t, int32(1), h.published.Load())
}

func TestRefresh_ExpiredTokenLogsOut(t *testing.T) {
	h := newHarness(t, map[string]*http.Response{
		api.PathUserInfo: jsonResponse(401, `{"error":"unauthorized","message":"Token expired"}`),
	})
	h.login(t, storage.Session{Token: "T"})

	_, err := h.svc.Refresh(context.Background())
	assert.ErrorIs(t, err, api.ErrSessionExpired)
	_, ok := h.sessions.Get(context.Background())
	assert.False(t, ok)
	assert.Equal(t, int32(1), h.published.Load())
}

func TestRefresh_NetworkFailureKeepsSession(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t, storage.Session{Token: "T", IsSubscribed: true})

	_, err := h.svc.Refresh(context.Background())
	assert.ErrorIs(t, err, api.ErrRequestFailed)
	sess, ok := h.sessions.Get(context.Background())
	require.True(t, ok)
	assert.True(t, sess.IsSubscribed)
	assert.Equal(t, int32(0), h.published.Load())
}

func TestSubscribe_AppliesNewPlan(t *testing.T) {
	h := newHarness(t, map[string]*http.Response{
		api.PathUpdateSubscription: jsonResponse(200, `{"message":"ok","subscription_type":"premium","is_active":true,"is_subscribed":true,"subscription_end":"2026-11-18T00:00:00Z"}`),
	})
	h.login(t, storage.Session{Token: "T"})

	sess, err := h.svc.Subscribe(context.Background(), "premium", 0)
	require.NoError(t, err)
	assert.True(t, sess.IsSubscribed)
	assert.Equal(t, "premium", sess.SubscriptionType)
	assert.Equal(t, "2026-11-18T00:00:00Z", sess.SubscriptionEnd)
}

func TestSubscribe_RequiresLogin(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.Subscribe(context.Background(), "premium", 30)
	assert.ErrorIs(t, err, api.ErrLoginRequired)
	assert.Equal(t, int32(0), h.calls.Load())
}

func TestGenerate_WithoutSessionSendsNothing(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.svc.Generate(context.Background(), api.GenerateRequest{Niche: "fitness"})

	assert.ErrorIs(t, err, api.ErrLoginRequired)
	assert.Equal(t, int32(0), h.calls.Load())
	_, redirect := h.svc.Results(context.Background())
	assert.Equal(t, RedirectLogin, redirect)
}

func TestGenerate_SavesResults(t *testing.T) {
	h := newHarness(t, map[string]*http.Response{
		api.PathGenerate: jsonResponse(200, `{"success":true,"content":{"ideas":[{"title":"Morning routine","description":"d","hashtags":["#fit"]}]}}`),
	})
	h.login(t, storage.Session{Token: "T", IsSubscribed: true})
	ctx := context.Background()

	res, err := h.svc.Generate(ctx, api.GenerateRequest{Niche: "fitness"})
	require.NoError(t, err)
	require.Len(t, res.Ideas, 1)

	got, redirect := h.svc.Results(ctx)
	assert.Equal(t, RedirectNone, redirect)
	assert.Equal(t, res, got)
}

func TestGenerate_ExpiredTokenLogsOut(t *testing.T) {
	h := newHarness(t, map[string]*http.Response{
		api.PathGenerate: jsonResponse(401, `{"error":"unauthorized"}`),
	})
	h.login(t, storage.Session{Token: "T", IsSubscribed: true})

	_, err := h.svc.Generate(context.Background(), api.GenerateRequest{Niche: "fitness"})
	assert.ErrorIs(t, err, api.ErrSessionExpired)
	_, ok := h.sessions.Get(context.Background())
	assert.False(t, ok)
}

func TestTrends_DeniedKeepsSession(t *testing.T) {
	h := newHarness(t, map[string]*http.Response{
		api.PathTrends: jsonResponse(403, `{"error":"forbidden","message":"Premium subscription required"}`),
	})
	h.login(t, storage.Session{Token: "T"})

	_, err := h.svc.Trends(context.Background(), api.TrendsRequest{Niche: "fitness"})
	assert.ErrorIs(t, err, api.ErrEntitlementDenied)
	_, ok := h.sessions.Get(context.Background())
	assert.True(t, ok)
}

func TestTrends_SavesResults(t *testing.T) {
	h := newHarness(t, map[string]*http.Response{
		api.PathTrends: jsonResponse(200, `{"success":true,"hashtags":["#a"],"trends":["t1"],"note":"n"}`),
	})
	h.login(t, storage.Session{Token: "T", IsSubscribed: true})
	ctx := context.Background()

	_, err := h.svc.Trends(ctx, api.TrendsRequest{Niche: "fitness"})
	require.NoError(t, err)

	got, redirect := h.svc.Results(ctx)
	assert.Equal(t, RedirectNone, redirect)
	assert.Equal(t, storage.GenerationResult{Hashtags: []string{"#a"}, Trends: []string{"t1"}}, got)
}

func TestResults_EmptySlotRedirectsToGenerate(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t, storage.Session{Token: "T"})

	_, redirect := h.svc.Results(context.Background())
	assert.Equal(t, RedirectGenerate, redirect)
	assert.Equal(t, "generate", redirect.String())
}
