package state

import (
	"sync"
	"sync/atomic"
)

type EventPublisher interface {
	Publish(any)
}

type EventSubscriber interface {
	Subscribe(chan any)
	Unsubscribe(chan any)
}

var _ EventPublisher = (*EventBus)(nil)
var _ EventSubscriber = (*EventBus)(nil)

type nullEventPublisher struct{}

func (nullEventPublisher) Publish(any) {}

var NullEventPublisher = nullEventPublisher{}

// EventBus fans notifications out to subscribers. A subscriber that is not keeping up misses
// notifications rather than stalling the engine.
type EventBus struct {
	lock        sync.RWMutex
	subscribers map[chan any]struct{}
	dropped     atomic.Uint64
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: map[chan any]struct{}{}}
}

func (b *EventBus) Subscribe(ch chan any) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.subscribers[ch] = struct{}{}
}

func (b *EventBus) Unsubscribe(ch chan any) {
	b.lock.Lock()
	defer b.lock.Unlock()

	delete(b.subscribers, ch)
}

func (b *EventBus) Publish(e any) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped counts notifications discarded because a subscriber channel was full.
func (b *EventBus) Dropped() uint64 {
	return b.dropped.Load()
}
