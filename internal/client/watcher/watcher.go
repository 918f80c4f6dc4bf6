// Package watcher notices session changes made outside this process, such
// as another shell sharing the same storage directory, and turns them into
// bus publishes.
package watcher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is how often the session slot is polled.
const DefaultInterval = time.Second

// Presence reports whether a logged-in session is stored.
type Presence interface {
	Present(ctx context.Context) bool
}

// Bus is the auth change channel.
type Bus interface {
	Subscribe(fn func()) (unsubscribe func())
	Publish()
}

// Watcher polls the session slot while at least one consumer holds it.
type Watcher struct {
	store    Presence
	bus      Bus
	interval time.Duration
	log      *zap.Logger

	mu          sync.Mutex
	refs        int
	gen         uint64
	cancel      context.CancelFunc
	done        chan struct{}
	unsubscribe func()

	stateMu   sync.Mutex
	announced bool

	// publishing is set while the poll goroutine is inside bus.Publish.
	publishing atomic.Bool
}

// New returns a stopped watcher. A non-positive interval means DefaultInterval.
func New(store Presence, bus Bus, interval time.Duration, log *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{store: store, bus: bus, interval: interval, log: log}
}

// Acquire registers interest in session changes. The first holder starts
// polling; when the last one releases, polling stops. The returned release
// function is safe to call more than once.
//
// Release and Stop normally wait for the poll goroutine to exit. A bus
// listener may drop the last hold while handling a publish the watcher made;
// that call returns without waiting and the goroutine exits once the publish
// returns.
func (w *Watcher) Acquire() (release func()) {
	w.mu.Lock()
	w.refs++
	if w.refs == 1 {
		w.start()
	}
	gen := w.gen
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { w.release(gen) })
	}
}

// Stop drops every holder and waits for polling to end.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.refs == 0 {
		w.mu.Unlock()
		return
	}
	w.refs = 0
	done := w.stop()
	w.mu.Unlock()
	w.wait(done)
}

// Running reports whether the watcher is polling.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refs > 0
}

func (w *Watcher) release(gen uint64) {
	w.mu.Lock()
	if gen != w.gen || w.refs == 0 {
		w.mu.Unlock()
		return
	}
	w.refs--
	if w.refs > 0 {
		w.mu.Unlock()
		return
	}
	done := w.stop()
	w.mu.Unlock()
	w.wait(done)
}

// wait blocks until the poll goroutine is gone, unless the caller is that
// goroutine's own publish.
func (w *Watcher) wait(done <-chan struct{}) {
	if w.publishing.Load() {
		return
	}
	<-done
}

// start must be called with w.mu held.
func (w *Watcher) start() {
	w.gen++
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	w.setAnnounced(w.store.Present(ctx))
	w.unsubscribe = w.bus.Subscribe(w.observe)

	go w.loop(ctx, w.done)
	w.log.Debug("session watcher started", zap.Duration("interval", w.interval))
}

// stop must be called with w.mu held. The caller waits on the returned
// channel after unlocking.
func (w *Watcher) stop() <-chan struct{} {
	w.unsubscribe()
	w.cancel()
	w.log.Debug("session watcher stopped")
	return w.done
}

func (w *Watcher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	present := w.store.Present(ctx)
	if ctx.Err() != nil {
		return
	}

	w.stateMu.Lock()
	changed := present != w.announced
	w.announced = present
	w.stateMu.Unlock()

	if changed {
		w.log.Info("session changed outside this process", zap.Bool("logged_in", present))
		w.publishing.Store(true)
		w.bus.Publish()
		w.publishing.Store(false)
	}
}

// observe runs on every publish and records what subscribers have been told.
func (w *Watcher) observe() {
	w.setAnnounced(w.store.Present(context.Background()))
}

func (w *Watcher) setAnnounced(v bool) {
	w.stateMu.Lock()
	w.announced = v
	w.stateMu.Unlock()
}
