package bus

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	b := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(b.Close)
	return b
}

func TestPublishFansOutToEverySubscriber(t *testing.T) {
	b := newTestBus(t)

	var gotA, gotB []any
	unsubA := b.Subscribe("panel", func(_ context.Context, env Envelope) { gotA = append(gotA, env.Data) })
	defer unsubA()
	unsubB := b.Subscribe("panel", func(_ context.Context, env Envelope) { gotB = append(gotB, env.Data) })
	defer unsubB()

	require.True(t, b.Publish(context.Background(), "panel", Envelope{Data: "hello"}))
	require.Equal(t, []any{"hello"}, gotA)
	require.Equal(t, []any{"hello"}, gotB)
}

func TestPublishOnlyReachesMatchingName(t *testing.T) {
	b := newTestBus(t)

	calls := 0
	defer b.Subscribe("a", func(context.Context, Envelope) { calls++ })()

	b.Publish(context.Background(), "b", Envelope{})
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}

func TestUnsubscribeRemovesExactlyOneRegistration(t *testing.T) {
	b := newTestBus(t)

	var first, second int
	unsubFirst := b.Subscribe("x", func(context.Context, Envelope) { first++ })
	unsubSecond := b.Subscribe("x", func(context.Context, Envelope) { second++ })
	defer unsubSecond()

	unsubFirst()
	unsubFirst()
	require.Equal(t, 1, b.Subscribers("x"))

	b.Publish(context.Background(), "x", Envelope{})
	require.Equal(t, 0, first)
	require.Equal(t, 1, second)
}

func TestHandlersMayMutateRegistryDuringPublish(t *testing.T) {
	b := newTestBus(t)

	lateCalls := 0
	var unsubSelf func()
	unsubSelf = b.Subscribe("x", func(context.Context, Envelope) {
		unsubSelf()
		b.Subscribe("x", func(context.Context, Envelope) { lateCalls++ })
		b.Publish(context.Background(), "y", Envelope{})
	})

	require.True(t, b.Publish(context.Background(), "x", Envelope{}))
	require.Equal(t, 0, lateCalls, "subscriber added mid-publish must not see that publish")
	require.Equal(t, 1, b.Subscribers("x"))

	b.Publish(context.Background(), "x", Envelope{})
	require.Equal(t, 1, lateCalls)
}

func TestCloseStopsBusOperations(t *testing.T) {
	b := New(nil)
	calls := 0
	b.Subscribe("x", func(context.Context, Envelope) { calls++ })
	b.Close()

	require.True(t, b.Closed())
	require.False(t, b.Publish(context.Background(), "x", Envelope{}))
	require.Equal(t, 0, calls)
	require.Equal(t, 0, b.Subscribers("x"))

	b.Subscribe("x", func(context.Context, Envelope) { calls++ })()
	require.Equal(t, 0, b.Subscribers("x"))
}

func TestPublishFailsOnCanceledContext(t *testing.T) {
	b := newTestBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if ok := b.Publish(ctx, "x", Envelope{}); ok {
		t.Fatal("expected publish to fail on canceled context")
	}
}

func TestTapObservesAllTraffic(t *testing.T) {
	b := newTestBus(t)

	deliveries, unsubscribe := b.Tap(context.Background(), 4)
	defer unsubscribe()

	b.Publish(context.Background(), "walletget", Envelope{Data: 1})

	select {
	case got := <-deliveries:
		require.Equal(t, Name("walletget"), got.Name)
		require.Equal(t, 1, got.Envelope.Data)
		require.False(t, got.At.IsZero())
	case <-time.After(500 * time.Millisecond):
		t.Fatal("tap did not observe publish")
	}
}

func TestSlowTapDoesNotBlockPublish(t *testing.T) {
	b := newTestBus(t)

	deliveries, unsubscribe := b.Tap(context.Background(), 1)
	defer unsubscribe()

	b.Publish(context.Background(), "x", Envelope{})
	start := time.Now()
	b.Publish(context.Background(), "x", Envelope{})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("publish blocked on slow tap")
	}

	<-deliveries
}

func TestTapClosesOnBusClose(t *testing.T) {
	b := New(nil)
	deliveries, _ := b.Tap(context.Background(), 1)
	b.Close()

	select {
	case _, ok := <-deliveries:
		if ok {
			t.Fatal("expected tap channel to be closed")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("tap did not close with the bus")
	}
}

func TestPublishWhileTapsCloseDoesNotPanic(t *testing.T) {
	for range 200 {
		b := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
		_, unsubscribe := b.Tap(context.Background(), 1)
		ctx, cancel := context.WithCancel(context.Background())
		b.Tap(ctx, 1)

		start := make(chan struct{})
		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for range 50 {
					b.Publish(context.Background(), "traffic", Envelope{Data: 1})
				}
			}()
		}

		close(start)
		unsubscribe()
		cancel()
		b.Close()
		wg.Wait()
	}
}
