package broadcast_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborvest/arborvest-go/pkg/broadcast"
)

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[int](4)
	defer hub.Close()

	a := hub.Subscribe(context.Background())
	b := hub.Subscribe(context.Background())

	hub.Publish(42)

	select {
	case v := <-a:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("subscriber a did not receive the value")
	}
	select {
	case v := <-b:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("subscriber b did not receive the value")
	}
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[int](1)
	defer hub.Close()

	ch := hub.Subscribe(context.Background())

	// Second publish must not block even though nobody is draining.
	done := make(chan struct{})
	go func() {
		hub.Publish(1)
		hub.Publish(2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.Equal(t, 1, <-ch)
}

func TestHub_ContextCancellationUnsubscribes(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[string](1)
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := hub.Subscribe(ctx)
	cancel()

	// The channel is closed once the cancellation watcher runs.
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestHub_CloseIsIdempotentAndClosesChannels(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[int](1)
	ch := hub.Subscribe(context.Background())

	hub.Close()
	hub.Close()

	_, ok := <-ch
	assert.False(t, ok, "subscriber channel must be closed after hub close")

	// Subscribing after close returns an already closed channel.
	late := hub.Subscribe(context.Background())
	_, ok = <-late
	assert.False(t, ok)

	// Publishing after close is a no-op.
	hub.Publish(7)
}

func TestHub_ConcurrentPublishAndSubscribe(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[int](64)
	defer hub.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			ch := hub.Subscribe(ctx)
			for i := 0; i < 50; i++ {
				hub.Publish(i)
			}
			// Drain whatever arrived.
			for {
				select {
				case <-ch:
				default:
					return
				}
			}
		}()
	}
	wg.Wait()
}
