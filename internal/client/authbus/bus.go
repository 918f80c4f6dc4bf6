// Package authbus delivers the in-process "authChange" signal to every
// consumer that renders from the session. The signal carries no payload:
// listeners re-read the session store instead of trusting a snapshot.
package authbus

import "sync"

type subscriber struct {
	id uint64
	fn func()
}

// Bus is a synchronous publish/subscribe channel. The zero value is ready to use.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber
}

func New() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function that removes it. The
// returned function may be called any number of times.
func (b *Bus) Subscribe(fn func()) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish calls every current subscriber once, in subscription order, on the
// caller's goroutine. Listeners run without the bus lock held.
func (b *Bus) Publish() {
	b.mu.Lock()
	snapshot := make([]subscriber, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, s := range snapshot {
		s.fn()
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
