package entitlement

import (
	"context"
	"errors"
	"sync"

	"github.com/atinyakov/ContentAI/internal/client/api"
)

// Decision is the state of a single check.
type Decision int

const (
	Unknown Decision = iota
	Checking
	Granted
	Denied
)

func (d Decision) String() string {
	switch d {
	case Checking:
		return "checking"
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Verdict is the final outcome of a check.
type Verdict struct {
	Decision Decision
	// Confirmed is true when the backend answered. A Granted verdict that is
	// not confirmed comes from the cache after a failed revalidation.
	Confirmed bool
	// Reason is the error behind a denial or an unconfirmed grant.
	Reason error
}

// LoginRequired reports whether the caller should send the user to login.
func (v Verdict) LoginRequired() bool {
	return errors.Is(v.Reason, api.ErrLoginRequired) || errors.Is(v.Reason, api.ErrSessionExpired)
}

// UpgradeRequired reports whether the caller should offer a paid plan.
func (v Verdict) UpgradeRequired() bool {
	return v.Decision == Denied && errors.Is(v.Reason, api.ErrEntitlementDenied)
}

// Check is one access check. Its state only moves forward:
// Unknown -> Checking|Granted(optimistic) -> Granted|Denied.
type Check struct {
	Capability Capability

	mu              sync.Mutex
	state           Decision
	optimistic      bool
	prevUnconfirmed bool
	verdict         Verdict
	done            chan struct{}
}

func newCheck(capability Capability) *Check {
	return &Check{Capability: capability, done: make(chan struct{})}
}

func (c *Check) advance(d Decision, optimistic bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = d
	c.optimistic = optimistic
}

func (c *Check) finish(v Verdict) {
	c.mu.Lock()
	c.state = v.Decision
	c.optimistic = false
	c.verdict = v
	c.mu.Unlock()
	close(c.done)
}

// State returns the current decision.
func (c *Check) State() Decision {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Optimistic reports whether the current Granted state comes from the cache
// and is still waiting for the backend.
func (c *Check) Optimistic() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.optimistic
}

// PreviouslyUnconfirmed reports whether the previous check for this session
// kept a cached grant because the backend could not be reached.
func (c *Check) PreviouslyUnconfirmed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prevUnconfirmed
}

// Done is closed when the check has a final verdict.
func (c *Check) Done() <-chan struct{} {
	return c.done
}

// Result returns the verdict and whether the check has finished.
func (c *Check) Result() (Verdict, bool) {
	select {
	case <-c.done:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.verdict, true
	default:
		return Verdict{}, false
	}
}

// Wait blocks until the check finishes or ctx is done.
func (c *Check) Wait(ctx context.Context) (Verdict, error) {
	select {
	case <-c.done:
		v, _ := c.Result()
		return v, nil
	case <-ctx.Done():
		return Verdict{}, ctx.Err()
	}
}
