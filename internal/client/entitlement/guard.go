// Package entitlement decides whether the stored session may use a paid
// capability. A check answers from the cached session first and revalidates
// against the backend in the background; the backend's answer always wins.
//
// Checks that overlap are not ordered by issue time. Each one merges its
// result when it completes, so the last response to arrive is what the
// session store ends up holding.
package entitlement

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/ContentAI/internal/client/api"
	"github.com/atinyakov/ContentAI/internal/client/storage"
)

// Capability names a paid feature. Every capability is covered by the same
// paid plan, so the guard decides them all from one entitlement and uses the
// name only to label the check.
type Capability string

const (
	CapabilityGenerate Capability = "generate"
	CapabilityTrends   Capability = "trends"
)

// ParseCapability returns the capability named s.
func ParseCapability(s string) (Capability, bool) {
	switch c := Capability(s); c {
	case CapabilityGenerate, CapabilityTrends:
		return c, true
	default:
		return "", false
	}
}

// Sessions is the session store as seen by the guard. Writes are
// conditional on the token the check started from, and the store performs
// the compare and the write under its own lock.
type Sessions interface {
	Get(ctx context.Context) (storage.Session, bool)
	Update(ctx context.Context, token string, fn func(storage.Session) storage.Session) (storage.Session, error)
	ClearIf(ctx context.Context, token string) (bool, error)
}

// Revalidator asks the backend for the current entitlement.
type Revalidator interface {
	CheckSubscription(ctx context.Context) (api.SubscriptionStatus, error)
}

// Publisher announces session changes.
type Publisher interface {
	Publish()
}

// Guard runs entitlement checks.
type Guard struct {
	sessions Sessions
	remote   Revalidator
	bus      Publisher
	log      *zap.Logger

	mu          sync.Mutex // guards unconfirmed
	unconfirmed map[string]bool
}

func NewGuard(sessions Sessions, remote Revalidator, bus Publisher, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{
		sessions:    sessions,
		remote:      remote,
		bus:         bus,
		log:         log,
		unconfirmed: make(map[string]bool),
	}
}

// Check runs a check to completion.
func (g *Guard) Check(ctx context.Context, capability Capability) Verdict {
	v, err := g.Start(ctx, capability).Wait(ctx)
	if err != nil {
		return Verdict{Decision: Denied, Reason: err}
	}
	return v
}

// Start begins a check and returns immediately. Without a session the check
// is already Denied and no request is sent. With a cached grant the check is
// Granted and Optimistic until the backend answers; otherwise it is Checking.
func (g *Guard) Start(ctx context.Context, capability Capability) *Check {
	c := newCheck(capability)

	sess, ok := g.sessions.Get(ctx)
	if !ok {
		c.finish(Verdict{Decision: Denied, Reason: api.ErrLoginRequired})
		return c
	}

	c.prevUnconfirmed = g.isUnconfirmed(sess.Token)
	if sess.Entitled() {
		c.advance(Granted, true)
	} else {
		c.advance(Checking, false)
	}

	go g.revalidate(ctx, c, sess)
	return c
}

func (g *Guard) revalidate(ctx context.Context, c *Check, cached storage.Session) {
	log := g.log.With(zap.String("capability", string(c.Capability)))
	status, err := g.remote.CheckSubscription(ctx)

	var v Verdict
	switch {
	case ctx.Err() != nil:
		// Nobody is waiting for this check any more; leave the store alone.
		v = Verdict{Decision: fallback(cached), Reason: ctx.Err()}

	case err == nil:
		granted := status.IsSubscribed || status.IsAdmin
		g.merge(ctx, cached.Token, status.Apply)
		g.setUnconfirmed(cached.Token, false)
		v = Verdict{Decision: Denied, Confirmed: true}
		if granted {
			v.Decision = Granted
		} else {
			v.Reason = api.ErrEntitlementDenied
		}

	case errors.Is(err, api.ErrSessionExpired):
		g.expire(ctx, cached.Token)
		v = Verdict{Decision: Denied, Confirmed: true, Reason: err}

	case errors.Is(err, api.ErrEntitlementDenied):
		g.merge(ctx, cached.Token, revoke)
		g.setUnconfirmed(cached.Token, false)
		v = Verdict{Decision: Denied, Confirmed: true, Reason: err}

	case errors.Is(err, api.ErrLoginRequired):
		v = Verdict{Decision: Denied, Reason: err}

	default:
		if cached.Entitled() {
			g.setUnconfirmed(cached.Token, true)
			log.Warn("entitlement revalidation failed, keeping cached grant", zap.Error(err))
		}
		v = Verdict{Decision: fallback(cached), Reason: err}
	}

	log.Info("entitlement check finished",
		zap.Stringer("decision", v.Decision),
		zap.Bool("confirmed", v.Confirmed),
		zap.Bool("optimistic", c.Optimistic()),
	)
	c.finish(v)
}

// fallback is the decision used when the backend could not answer: keep a
// cached grant, otherwise deny.
func fallback(cached storage.Session) Decision {
	if cached.Entitled() {
		return Granted
	}
	return Denied
}

func revoke(s storage.Session) storage.Session {
	s.IsSubscribed = false
	s.IsAdmin = false
	return s
}

// merge applies fn to the stored session and publishes, but only while the
// store still holds the session the check started from.
func (g *Guard) merge(ctx context.Context, token string, fn func(storage.Session) storage.Session) {
	_, err := g.sessions.Update(ctx, token, fn)
	switch {
	case errors.Is(err, storage.ErrSessionChanged):
		g.log.Info("session changed during entitlement check, dropping result")
		return
	case err != nil:
		g.log.Error("failed to store entitlement", zap.Error(err))
		return
	}
	g.bus.Publish()
}

func (g *Guard) expire(ctx context.Context, token string) {
	cleared, err := g.sessions.ClearIf(ctx, token)
	g.setUnconfirmed(token, false)
	if err != nil {
		g.log.Error("failed to clear expired session", zap.Error(err))
		return
	}
	if !cleared {
		return
	}
	g.log.Info("session expired, logged out")
	g.bus.Publish()
}

func (g *Guard) isUnconfirmed(token string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unconfirmed[token]
}

func (g *Guard) setUnconfirmed(token string, v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if v {
		g.unconfirmed[token] = true
	} else {
		delete(g.unconfirmed, token)
	}
}
