package bus

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Future is the pending result of one Call. It settles at most once.
type Future[T any] struct {
	id     string
	name   Name
	log    *slog.Logger
	done   chan struct{}
	once   sync.Once
	value  T
	err    error
	cancel func()
}

func newFuture[T any](name Name, log *slog.Logger) *Future[T] {
	return &Future[T]{
		id:     uuid.NewString(),
		name:   name,
		log:    log,
		done:   make(chan struct{}),
		cancel: func() {},
	}
}

// ID is the request id used to correlate log lines for this call.
func (f *Future[T]) ID() string {
	return f.id
}

// Name is the endpoint the call was issued on.
func (f *Future[T]) Name() Name {
	return f.name
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx ends. A done ctx only stops
// the wait; use Cancel to abandon the request itself.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel abandons the request: its listener is removed right away and the
// future rejects with context.Canceled unless it already settled.
func (f *Future[T]) Cancel() {
	f.abandon(context.Canceled)
}

func (f *Future[T]) abandon(cause error) {
	f.cancel()

	var zero T
	f.settle(zero, cause)
}

func (f *Future[T]) settle(value T, err error) bool {
	settled := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

func (f *Future[T]) result() (T, error) {
	<-f.done
	return f.value, f.err
}

// Call issues one request on name and returns its future immediately.
//
// A one-shot listener is installed on the receive name before the request
// is published on the send name, so providers may answer inline. The first
// envelope on the receive name settles the future; that listener is gone
// before the envelope is inspected, so later envelopes have no effect.
// When ctx ends before an answer the listener is removed and the future
// rejects with the context cause.
func Call[T any](ctx context.Context, b *Bus, name Name, data any) *Future[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	names := SendReceive(name)
	f := newFuture[T](name, b.log)

	id := b.reserveID()
	release := b.remover(names.Receive, id)
	f.cancel = release

	installed := b.add(names.Receive, id, func(_ context.Context, env Envelope) {
		release()

		if env.Failed() {
			var zero T
			f.settle(zero, &RemoteError{Name: name, Message: env.Error})
			return
		}

		value, err := payloadAs[T](env.Data)
		f.settle(value, err)
	})
	if !installed {
		f.abandon(ErrClosed)
		return f
	}

	if err := ctx.Err(); err != nil {
		f.abandon(context.Cause(ctx))
		return f
	}

	b.log.Debug("Request sent", "name", names.Send, "request_id", f.id)
	if !b.Publish(ctx, names.Send, Envelope{Data: data}) {
		cause := context.Cause(ctx)
		if cause == nil {
			cause = ErrClosed
		}
		f.abandon(cause)
		return f
	}

	if ctx.Done() != nil {
		go func() {
			select {
			case <-f.done:
			case <-ctx.Done():
				f.abandon(context.Cause(ctx))
			}
		}()
	}

	return f
}

// ServeFunc answers one request. A returned error is sent back to the
// caller as the envelope error string.
type ServeFunc func(ctx context.Context, data any) (any, error)

// Serve answers every request published on name's send channel by
// publishing the handler's result on the receive channel. It returns the
// function that unmounts the provider.
func Serve(b *Bus, name Name, handler ServeFunc) func() {
	names := SendReceive(name)
	log := b.log.With("name", name)

	return b.Subscribe(names.Send, func(ctx context.Context, env Envelope) {
		data, err := handler(ctx, env.Data)

		response := Envelope{Data: data}
		if err != nil {
			response = Envelope{Error: errorMessage(err)}
			log.Debug("Request failed", "error", err)
		}

		b.Publish(ctx, names.Receive, response)
	})
}

// Emit publishes data on name without waiting for any answer.
func Emit(ctx context.Context, b *Bus, name Name, data any) bool {
	return b.Publish(ctx, name, Envelope{Data: data})
}

// On subscribes to name and hands each envelope's data to fn. Envelopes
// whose data is not a T are logged and skipped.
func On[T any](b *Bus, name Name, fn func(T)) func() {
	return b.Subscribe(name, func(_ context.Context, env Envelope) {
		value, err := payloadAs[T](env.Data)
		if err != nil {
			b.log.Warn("Dropped envelope", "name", name, "error", err)
			return
		}
		fn(value)
	})
}

func errorMessage(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}

	msg := err.Error()
	if msg == "" {
		return "unknown error"
	}
	return msg
}
