package bus

import (
	"context"
	"sync"
	"time"
)

// Delivery is one observed publish, as seen by a traffic tap.
type Delivery struct {
	Name        Name      `json:"name"`
	Envelope    Envelope  `json:"envelope"`
	At          time.Time `json:"at"`
	Subscribers int       `json:"subscribers"`
}

// Tap observes every publish on the bus regardless of name. Deliveries are
// dropped when the buffer is full. The channel closes on unsubscribe, when
// ctx ends, or when the bus closes.
func (b *Bus) Tap(ctx context.Context, buffer int) (<-chan Delivery, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	if buffer <= 0 {
		buffer = defaultTapBuffer
	}

	ch := make(chan Delivery, buffer)

	b.mu.Lock()
	select {
	case <-b.done:
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}

	id := b.nextTapID
	b.nextTapID++
	b.taps[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			if tapCh, ok := b.taps[id]; ok {
				delete(b.taps, id)
				close(tapCh)
			}
			b.mu.Unlock()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-b.done:
			unsubscribe()
		}
	}()

	return ch, unsubscribe
}
