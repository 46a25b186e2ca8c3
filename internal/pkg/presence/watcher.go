package presence

import (
	"context"
	"sync"

	"evento-chat/internal/infrastructure/pubsub"
)

// Watcher reports whether one user is online, recomputed on every channel
// event by scanning all tracked entries.
type Watcher struct {
	sub *pubsub.Subscription[Event]

	mu     sync.RWMutex
	online bool
	known  bool
}

// Watch subscribes to channel and calls onChange with the initial state and
// whenever it flips. onChange runs on the subscription goroutine. If the
// subscription cannot be established the user is reported offline.
func Watch(channel *Channel, userID string, onChange func(online bool)) (*Watcher, error) {
	w := &Watcher{}
	sub, err := channel.Subscribe(func(ctx context.Context, ev Event) {
		online := Online(ev.State, userID)
		w.mu.Lock()
		changed := !w.known || online != w.online
		w.online, w.known = online, true
		w.mu.Unlock()
		if changed && onChange != nil {
			onChange(online)
		}
	})
	if err != nil {
		if onChange != nil {
			onChange(false)
		}
		return nil, err
	}
	w.sub = sub
	return w, nil
}

// Online is false until the first event has been seen.
func (w *Watcher) Online() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.online
}

// Stop detaches the watcher; onChange is not called afterwards.
func (w *Watcher) Stop() {
	if w == nil || w.sub == nil {
		return
	}
	w.sub.Unsubscribe()
}
