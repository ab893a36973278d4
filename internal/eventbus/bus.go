// Package eventbus fans typed events out to subscriber channels.
package eventbus

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber channel capacity used when New is
// given a non-positive size.
const DefaultBuffer = 64

// Bus is a type-safe publish/subscribe bus. Publish never blocks: an event
// that does not fit a subscriber's buffer is dropped for that subscriber
// and counted.
type Bus[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	closed  bool
	buffer  int
	dropped atomic.Uint64
}

// New creates a bus whose subscribers get buffer slots each.
func New[T any](buffer int) *Bus[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus[T]{buffer: buffer}
}

// Publish sends e to every subscriber with room for it.
func (b *Bus[T]) Publish(e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe registers a subscriber. Subscribing to a closed bus returns a
// closed channel.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Dropped reports how many deliveries were skipped for full buffers.
func (b *Bus[T]) Dropped() uint64 { return b.dropped.Load() }

// Close closes the bus and every subscriber channel. Subscribers drain
// what is buffered before seeing the close.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
