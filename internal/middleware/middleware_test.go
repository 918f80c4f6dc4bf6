package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// dummyHandler is a placeholder that records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
	status int
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	status := d.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

var errExpired = errors.New("expired")

type fakeVerifier map[string]int64

func (f fakeVerifier) ParseToken(raw string) (int64, error) {
	if raw == "old" {
		return 0, fmt.Errorf("wrapped: %w", errExpired)
	}
	id, ok := f[raw]
	if !ok {
		return 0, errors.New("bad token")
	}
	return id, nil
}

func TestBearerAuth(t *testing.T) {
	verifier := fakeVerifier{"good": 7}
	tests := []struct {
		name       string
		header     string
		wantCalled bool
		wantMsg    string
	}{
		{"valid", "Bearer good", true, ""},
		{"missing header", "", false, "missing bearer token"},
		{"wrong scheme", "Basic good", false, "missing bearer token"},
		{"empty token", "Bearer ", false, "missing bearer token"},
		{"unknown token", "Bearer nope", false, "invalid token"},
		{"expired token", "Bearer old", false, "token expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dummy := &dummyHandler{}
			h := BearerAuth(verifier, errExpired)(dummy)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/user-info", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCalled, dummy.called)
			if tt.wantCalled {
				id, ok := GetUserIDFromContext(dummy.ctx)
				assert.True(t, ok)
				assert.Equal(t, int64(7), id)
				return
			}
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "unauthorized", body["error"])
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestGetUserIDFromContext_Missing(t *testing.T) {
	_, ok := GetUserIDFromContext(context.Background())
	assert.False(t, ok)

	id, ok := GetUserIDFromContext(WithUserID(context.Background(), 3))
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)
}

func TestRequestID(t *testing.T) {
	dummy := &dummyHandler{}
	h := RequestID(dummy)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, GetRequestID(dummy.ctx))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", GetRequestID(dummy.ctx))
}

func TestWithRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dummy := &dummyHandler{status: http.StatusTeapot}
	h := RequestID(WithRequestLogging(zap.New(core))(dummy))

	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/generate", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "rid-1", fields["request_id"])
}

func TestWithRequestLogging_ServerErrorsAtErrorLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := WithRequestLogging(zap.New(core))(&dummyHandler{status: http.StatusInternalServerError})

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}
