package authbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublish_AllSubscribersOnceInOrder(t *testing.T) {
	bus := New()
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		bus.Subscribe(func() { order = append(order, i) })
	}

	bus.Publish()

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestPublish_SkipsUnsubscribed(t *testing.T) {
	bus := New()
	calls := make([]int, 3)
	var unsub []func()
	for i := range calls {
		i := i
		unsub = append(unsub, bus.Subscribe(func() { calls[i]++ }))
	}

	unsub[1]()
	bus.Publish()

	assert.Equal(t, []int{1, 0, 1}, calls)
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	bus := New()
	first := 0
	second := 0
	u1 := bus.Subscribe(func() { first++ })
	bus.Subscribe(func() { second++ })

	u1()
	u1()
	u1()
	assert.Equal(t, 1, bus.Len())

	bus.Publish()
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestPublish_ReentrantListener(t *testing.T) {
	bus := New()
	inner := 0
	var unsub func()
	unsub = bus.Subscribe(func() {
		unsub()
		bus.Subscribe(func() { inner++ })
	})

	bus.Publish()
	assert.Equal(t, 0, inner, "listeners added during delivery wait for the next publish")

	bus.Publish()
	assert.Equal(t, 1, inner)
}

func TestPublish_NoSubscribers(t *testing.T) {
	var bus Bus
	assert.NotPanics(t, bus.Publish)
}

func TestConcurrentSubscribePublish(t *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			u := bus.Subscribe(func() {})
			u()
		}()
		go func() {
			defer wg.Done()
			bus.Publish()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, bus.Len())
}
