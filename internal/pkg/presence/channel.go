// Package presence tracks which users are online from heartbeat records
// published on a shared channel.
package presence

import (
	"context"
	"sync"
	"time"

	"evento-chat/internal/infrastructure/pubsub"
)

// DefaultChannel is the shared channel every session tracks on.
const DefaultChannel = "online-users"

// Record is one heartbeat of a session.
type Record struct {
	UserID   string    `json:"user"`
	OnlineAt time.Time `json:"online_at"`
}

type EventType string

const (
	EventSync  EventType = "sync"
	EventJoin  EventType = "join"
	EventLeave EventType = "leave"
)

// Event is dispatched on every change. State is a snapshot of the whole
// channel keyed by session key; Records holds what joined or left.
type Event struct {
	Type    EventType
	Key     string
	Records []Record
	State   map[string][]Record
}

// Channel holds the in-memory presence state and dispatches sync, join and
// leave events to subscribers. Events are published under the state lock so
// snapshots reach subscribers in the order they were taken.
type Channel struct {
	name   string
	broker *pubsub.Broker[Event]

	mu    sync.RWMutex
	state map[string][]Record
}

func NewChannel(name string, broker *pubsub.Broker[Event]) *Channel {
	return &Channel{name: name, broker: broker, state: make(map[string][]Record)}
}

// Track sets the record for key. A first track emits join; every track is
// followed by sync.
func (c *Channel) Track(key string, r Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, existed := c.state[key]
	c.state[key] = []Record{r}
	snapshot := c.snapshotLocked()

	if !existed {
		c.broker.Publish(c.name, Event{Type: EventJoin, Key: key, Records: []Record{r}, State: snapshot})
	}
	c.broker.Publish(c.name, Event{Type: EventSync, State: snapshot})
}

// Untrack removes key and emits leave followed by sync. Unknown keys are ignored.
func (c *Channel) Untrack(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	left, ok := c.state[key]
	if !ok {
		return
	}
	delete(c.state, key)
	snapshot := c.snapshotLocked()

	c.broker.Publish(c.name, Event{Type: EventLeave, Key: key, Records: left, State: snapshot})
	c.broker.Publish(c.name, Event{Type: EventSync, State: snapshot})
}

// Sweep untracks every key whose newest heartbeat is older than staleAfter
// at now, and returns the removed keys.
func (c *Channel) Sweep(now time.Time, staleAfter time.Duration) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var stale []string
	for key, records := range c.state {
		if newest(records).Add(staleAfter).Before(now) {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		left := c.state[key]
		delete(c.state, key)
		c.broker.Publish(c.name, Event{Type: EventLeave, Key: key, Records: left, State: c.snapshotLocked()})
	}
	if len(stale) > 0 {
		c.broker.Publish(c.name, Event{Type: EventSync, State: c.snapshotLocked()})
	}
	return stale
}

// State returns a copy of the current presence state.
func (c *Channel) State() map[string][]Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Subscribe delivers channel events to h. An initial sync with the current
// state is queued right after subscribing.
func (c *Channel) Subscribe(h func(ctx context.Context, ev Event)) (*pubsub.Subscription[Event], error) {
	sub, err := c.broker.Subscribe(c.name, pubsub.Handler[Event](h))
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	c.broker.Publish(c.name, Event{Type: EventSync, State: c.snapshotLocked()})
	c.mu.RUnlock()
	return sub, nil
}

func (c *Channel) snapshotLocked() map[string][]Record {
	out := make(map[string][]Record, len(c.state))
	for k, v := range c.state {
		out[k] = append([]Record(nil), v...)
	}
	return out
}

// Online scans every tracked entry for userID.
func Online(state map[string][]Record, userID string) bool {
	for _, records := range state {
		for _, r := range records {
			if r.UserID == userID {
				return true
			}
		}
	}
	return false
}

func newest(records []Record) time.Time {
	var t time.Time
	for _, r := range records {
		if r.OnlineAt.After(t) {
			t = r.OnlineAt
		}
	}
	return t
}
