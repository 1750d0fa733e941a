package state

import (
	"context"
	"sync"
)

// watchBuffer is the channel capacity for Watch. A consumer that falls
// further behind than this starts losing intermediate changes.
const watchBuffer = 64

// Watch subscribes to the store and returns a channel of Changes,
// beginning with the initial connection delivery. The subscription is
// cancelled and the channel closed when ctx is done.
//
// Watch is intended for feeding select loops (the devtools live stream
// is built on it). Unlike Subscribe callbacks, a slow Watch consumer
// never blocks the store's broadcast: once the buffer is full, changes
// are dropped and a warning is logged. Consumers that need the lossless
// ordered sequence should use Subscribe directly.
func (s *Store[S]) Watch(ctx context.Context) <-chan Change[S] {
	if ctx == nil {
		ctx = context.Background()
	}

	ch := make(chan Change[S], watchBuffer)

	// closeMu orders the final close against in-flight sends from a
	// broadcast racing ctx cancellation.
	var closeMu sync.Mutex
	closed := false

	sub := s.Subscribe(func(old *S, next S) {
		trigger := TriggerStoreUpdate
		var prior S
		if old == nil {
			trigger = TriggerStoreConnect
			prior = next
		} else {
			prior = *old
		}
		change := NewChangeFunc(trigger, prior, next, s.equal)

		closeMu.Lock()
		defer closeMu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- change:
		default:
			s.logger.Warn("watch channel full, dropping change", "store", s.name)
		}
	})

	go func() {
		<-ctx.Done()
		sub.Cancel()
		closeMu.Lock()
		closed = true
		close(ch)
		closeMu.Unlock()
	}()

	return ch
}
