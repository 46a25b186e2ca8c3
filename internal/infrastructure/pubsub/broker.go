package pubsub

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned by Subscribe once the broker has been closed.
var ErrClosed = errors.New("pubsub: broker closed")

const defaultBuffer = 64

// Handler receives events for one subscription. Calls for a given
// subscription never overlap and arrive in publish order.
type Handler[E any] func(ctx context.Context, ev E)

// Broker fans events out to topic subscribers. Each subscription owns one
// dispatcher goroutine draining a bounded queue; a full queue drops the event
// for that subscriber only.
type Broker[E any] struct {
	mu     sync.RWMutex
	topics map[string]map[uint64]*Subscription[E]
	nextID uint64
	buffer int
	closed bool
	log    *zap.Logger
}

func NewBroker[E any](log *zap.Logger, buffer int) *Broker[E] {
	if log == nil {
		log = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Broker[E]{
		topics: make(map[string]map[uint64]*Subscription[E]),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe registers h on topic and starts its dispatcher.
func (b *Broker[E]) Subscribe(topic string, h Handler[E]) (*Subscription[E], error) {
	if h == nil {
		return nil, errors.New("pubsub: nil handler")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	b.nextID++
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription[E]{
		id:     b.nextID,
		topic:  topic,
		broker: b,
		queue:  make(chan E, b.buffer),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	subs := b.topics[topic]
	if subs == nil {
		subs = make(map[uint64]*Subscription[E])
		b.topics[topic] = subs
	}
	subs[s.id] = s

	go s.run(h)
	return s, nil
}

// Publish enqueues ev for every current subscriber of topic and returns how
// many accepted it.
func (b *Broker[E]) Publish(topic string, ev E) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0
	}
	delivered := 0
	for _, s := range b.topics[topic] {
		select {
		case s.queue <- ev:
			delivered++
		default:
			b.log.Warn("pubsub: subscriber queue full, dropping event",
				zap.String("topic", topic),
				zap.Uint64("subscription", s.id),
			)
		}
	}
	return delivered
}

// Subscribers reports the number of live subscriptions on topic.
func (b *Broker[E]) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Close cancels every subscription and waits for their dispatchers to exit.
func (b *Broker[E]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	var all []*Subscription[E]
	for _, subs := range b.topics {
		for _, s := range subs {
			all = append(all, s)
		}
	}
	b.topics = make(map[string]map[uint64]*Subscription[E])
	b.mu.Unlock()

	for _, s := range all {
		s.cancel()
		<-s.done
	}
}

func (b *Broker[E]) remove(s *Subscription[E]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[s.topic]
	if subs == nil {
		return
	}
	delete(subs, s.id)
	if len(subs) == 0 {
		delete(b.topics, s.topic)
	}
}

// Subscription is a cancellable registration on one topic.
type Subscription[E any] struct {
	id     uint64
	topic  string
	broker *Broker[E]
	queue  chan E
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription[E]) Topic() string { return s.topic }

// Done is closed once the dispatcher has exited.
func (s *Subscription[E]) Done() <-chan struct{} { return s.done }

// Unsubscribe detaches the subscription and blocks until any running handler
// call returns. No handler call starts afterwards. It must not be called from
// the subscription's own handler.
func (s *Subscription[E]) Unsubscribe() {
	s.once.Do(func() {
		s.broker.remove(s)
		s.cancel()
	})
	<-s.done
}

func (s *Subscription[E]) run(h Handler[E]) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.queue:
			if s.ctx.Err() != nil {
				return
			}
			h(s.ctx, ev)
		}
	}
}
