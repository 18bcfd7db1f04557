package broadcast

import (
	"context"
	"sync"
)

// Hub fans out values of type T to all active subscribers.
// All methods are safe for concurrent use. The zero value is not usable;
// create instances with NewHub.
type Hub[T any] struct {
	mu     sync.RWMutex
	subs   map[uint64]chan T
	nextID uint64
	buffer int
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewHub creates a hub whose subscriber channels hold up to buffer pending
// values. A minimum buffer of 1 is enforced so that Publish never blocks.
func NewHub[T any](buffer int) *Hub[T] {
	return &Hub[T]{
		subs:   make(map[uint64]chan T),
		buffer: max(buffer, 1),
		done:   make(chan struct{}),
	}
}

// Subscribe registers a new listener and returns its receive channel.
// The channel is closed and the subscription removed when ctx is cancelled
// or the hub is closed. Subscribing to a closed hub returns an already
// closed channel.
func (h *Hub[T]) Subscribe(ctx context.Context) <-chan T {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan T, h.buffer)
	if h.closed {
		close(ch)
		return ch
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	if ctx.Done() != nil {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			select {
			case <-ctx.Done():
				h.unsubscribe(id)
			case <-h.done:
			}
		}()
	}

	return ch
}

// Publish delivers v to every subscriber without blocking. Subscribers whose
// buffer is full miss this value.
func (h *Hub[T]) Publish(v T) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Close shuts down the hub and closes all subscriber channels.
// It is idempotent.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.done)
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()

	// Wait for context-cancellation watchers so no unsubscribe races Close.
	h.wg.Wait()
}

func (h *Hub[T]) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}
