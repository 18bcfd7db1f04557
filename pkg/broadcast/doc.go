// Package broadcast provides a minimal in-process fan-out hub used to push
// events from the API gateway and the session manager to any number of
// listeners (session invalidation, state changes for re-render).
//
// Delivery is non-blocking: a subscriber that does not drain its channel
// loses messages instead of stalling the publisher. This matches the
// semantics the events carry — every event is a "current state changed"
// notification, so a dropped message is always followed by a newer one or
// can be recovered by reading the current state.
//
// # Usage
//
//	hub := broadcast.NewHub[string](8)
//	defer hub.Close()
//
//	ch := hub.Subscribe(ctx) // closed when ctx is cancelled
//	go func() {
//	    for msg := range ch {
//	        fmt.Println(msg)
//	    }
//	}()
//
//	hub.Publish("hello")
package broadcast
