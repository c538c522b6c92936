package bus

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

const defaultTapBuffer = 100

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is an in-process fan-out channel keyed by names. Every publish is
// delivered to every handler subscribed to that name at publish time.
type Bus struct {
	log *slog.Logger

	subscribers map[Name][]subscription
	nextID      uint64

	taps      map[uint64]chan Delivery
	nextTapID uint64

	done      chan struct{}
	closeOnce sync.Once

	mu sync.RWMutex
}

// New builds an empty bus. A nil logger falls back to slog.Default.
func New(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}

	return &Bus{
		log:         log.With("component", "bus"),
		subscribers: make(map[Name][]subscription),
		taps:        make(map[uint64]chan Delivery),
		done:        make(chan struct{}),
	}
}

// Logger returns the bus component logger.
func (b *Bus) Logger() *slog.Logger {
	return b.log
}

// Publish dispatches env to the current subscribers of name, one after
// another on the calling goroutine. The subscriber list is snapshotted
// first, so handlers may subscribe or unsubscribe while being dispatched.
// It returns false when ctx is done or the bus is closed.
func (b *Bus) Publish(ctx context.Context, name Name, env Envelope) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-ctx.Done():
		return false
	case <-b.done:
		return false
	default:
	}

	b.mu.RLock()
	subs := append([]subscription(nil), b.subscribers[name]...)
	// Tap channels are closed under the write lock, so sends stay under
	// the read lock. They never block.
	if len(b.taps) > 0 {
		delivery := Delivery{Name: name, Envelope: env, At: time.Now().UTC(), Subscribers: len(subs)}
		for _, ch := range b.taps {
			select {
			case ch <- delivery:
			default:
				// Drop instead of blocking the publisher on slow observers.
			}
		}
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(ctx, env)
	}

	return true
}

// Subscribe registers handler on name and returns a function that removes
// exactly that registration. The returned function is safe to call more
// than once.
func (b *Bus) Subscribe(name Name, handler Handler) func() {
	id := b.reserveID()
	if !b.add(name, id, handler) {
		return func() {}
	}

	return b.remover(name, id)
}

// Subscribers reports how many handlers are registered on name.
func (b *Bus) Subscribers(name Name) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers[name])
}

// Close drops every subscription and observer. Later publishes are no-ops.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.done)

		b.mu.Lock()
		clear(b.subscribers)
		for id, ch := range b.taps {
			close(ch)
			delete(b.taps, id)
		}
		b.mu.Unlock()
	})
}

// Closed reports whether Close has been called.
func (b *Bus) Closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// reserveID allocates a subscription id before the handler is installed so
// one-shot handlers can refer to their own registration.
func (b *Bus) reserveID() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	return id
}

func (b *Bus) add(name Name, id uint64, handler Handler) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return false
	default:
	}

	b.subscribers[name] = append(b.subscribers[name], subscription{id: id, handler: handler})
	return true
}

func (b *Bus) remover(name Name, id uint64) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			b.remove(name, id)
		})
	}
}

func (b *Bus) remove(name Name, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[name]
	idx := slices.IndexFunc(subs, func(sub subscription) bool { return sub.id == id })
	if idx < 0 {
		return
	}

	subs = slices.Delete(subs, idx, idx+1)
	if len(subs) == 0 {
		delete(b.subscribers, name)
		return
	}
	b.subscribers[name] = subs
}
