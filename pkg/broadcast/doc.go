// Package broadcast provides a type-safe "latest value" broadcaster.
//
// Views that render the cart badge or the cart page subscribe once and are
// handed every new snapshot as it is published. A subscriber that falls
// behind never blocks the publisher: its single-slot buffer is overwritten,
// so it always observes the newest value rather than a backlog.
//
// Basic usage:
//
//	b := broadcast.New[int]()
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	b.Publish(3)
//	fmt.Println(<-sub.Receive()) // 3
//
// A subscriber is removed when its context is cancelled, when it is closed,
// or when the broadcaster is closed. In every case its channel is closed.
package broadcast
