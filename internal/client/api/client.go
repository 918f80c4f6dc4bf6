// Package api is the client's only translation boundary to the backend. Every
// request body and query parameter is converted to the backend's snake_case
// keys, the bearer token is attached from the session store, and every
// response is converted back to camelCase before it is decoded. The client
// reads the session store but never writes it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/client/keycase"
	"github.com/atinyakov/ContentAI/internal/client/storage"
)

const maxResponseBytes = 4 << 20

// RequestIDHeader correlates client logs with backend logs.
const RequestIDHeader = "X-Request-ID"

// SessionSource is the read side of the session store.
type SessionSource interface {
	Get(ctx context.Context) (storage.Session, bool)
}

// Client calls the backend endpoints.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions SessionSource
	lang     string
	log      *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLang sends lang as a query parameter so the backend localizes messages.
func WithLang(lang string) Option {
	return func(c *Client) { c.lang = lang }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a client for baseURL reading credentials from sessions.
func New(baseURL string, sessions SessionSource, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     http.DefaultClient,
		sessions: sessions,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type authMode int

const (
	public authMode = iota
	bearer
)

type call struct {
	method string
	path   string
	auth   authMode
	query  map[string]string
	in     any
	out    any
}

func (c *Client) do(ctx context.Context, cl call) error {
	fail := func(kind error, status int, err error) *Error {
		return &Error{Kind: kind, Endpoint: cl.path, Status: status, Err: err}
	}

	// 1. outgoing transform
	var body io.Reader
	if cl.in != nil {
		wire, err := encodeWire(cl.in)
		if err != nil {
			return fail(ErrRequestFailed, 0, err)
		}
		body = bytes.NewReader(wire)
	}
	q := url.Values{}
	if c.lang != "" {
		q.Set("lang", c.lang)
	}
	for k, v := range cl.query {
		q.Set(keycase.WireKey(k), v)
	}
	target := c.baseURL + cl.path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	// 2. credential injection
	sess, ok := c.sessions.Get(ctx)
	if cl.auth == bearer && !ok {
		return fail(ErrLoginRequired, 0, nil)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return fail(ErrRequestFailed, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ok {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	// 3. transport
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("endpoint", cl.path), zap.String("request_id", reqID), zap.Error(err))
		return fail(ErrRequestFailed, 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fail(ErrRequestFailed, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	// 5. failure mapping
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := fail(kindForStatus(resp.StatusCode, cl.auth), resp.StatusCode, nil)
		if m, ok := decodePresentation(raw).(map[string]any); ok {
			apiErr.Body = m
			apiErr.Code, _ = m["error"].(string)
			apiErr.Message, _ = m["message"].(string)
		}
		c.log.Info("backend rejected request",
			zap.String("endpoint", cl.path),
			zap.String("request_id", reqID),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
		)
		return apiErr
	}

	// 4. incoming transform
	if cl.out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	tree := decodePresentation(raw)
	if tree == nil {
		return fail(ErrRequestFailed, resp.StatusCode, fmt.Errorf("invalid response body"))
	}
	normalized, err := json.Marshal(tree)
	if err != nil {
		return fail(ErrRequestFailed, resp.StatusCode, err)
	}
	if err := json.Unmarshal(normalized, cl.out); err != nil {
		return fail(ErrRequestFailed, resp.StatusCode, fmt.Errorf("invalid response: %w", err))
	}
	return nil
}

// encodeWire marshals v, converts its keys to wire case and marshals again.
func encodeWire(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	tree, err := decodeTree(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(keycase.ToWire(tree))
}

// decodePresentation returns the camelCase tree of raw, or nil when raw is not JSON.
func decodePresentation(raw []byte) any {
	tree, err := decodeTree(raw)
	if err != nil {
		return nil
	}
	return keycase.ToPresentation(tree)
}

func decodeTree(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return tree, nil
}
