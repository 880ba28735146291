package realtime

import (
	"context"
	"sync"

	"irokart-be/internal/metrics"
)

const defaultSubscriberBuffer = 16

type subscription struct {
	tables map[string]bool
	ch     chan Event
}

// MemoryBus is an in-process Bus for a single server instance. A slow
// subscriber loses events instead of blocking publishers.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
	closed bool
	buffer int
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]*subscription), buffer: defaultSubscriberBuffer}
}

func (b *MemoryBus) Publish(ctx context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}
	for _, s := range b.subs {
		if !wants(s.tables, ev.Table) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			metrics.Default().Counter(metrics.RealtimeEventsDropped).Inc()
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, tables ...string) (<-chan Event, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBusClosed
	}
	id := b.nextID
	b.nextID++
	s := &subscription{tables: tableSet(tables), ch: make(chan Event, b.buffer)}
	b.subs[id] = s
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(id)
	}()
	return s.ch, nil
}

func (b *MemoryBus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(s.ch)
	}
}

// Subscribers reports how many subscriptions are live.
func (b *MemoryBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, s := range b.subs {
		delete(b.subs, id)
		close(s.ch)
	}
	return nil
}
