package focus

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Task is a running focus-gated poll. Only its creator should stop it.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start runs fn every interval while src reports focus. Ticks that land
// while unfocused are skipped, not replayed; regaining focus waits for the
// next tick. The task ends on Stop or when ctx is done.
func Start(ctx context.Context, src Source, interval time.Duration, fn func(context.Context)) (*Task, error) {
	if interval <= 0 {
		return nil, errors.New("poll interval must be greater than zero")
	}

	ticker := time.NewTicker(interval)
	return start(ctx, src, ticker.C, ticker.Stop, fn), nil
}

func start(ctx context.Context, src Source, ticks <-chan time.Time, stopTicks func(), fn func(context.Context)) *Task {
	if ctx == nil {
		ctx = context.Background()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	task := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(task.done)
		defer stopTicks()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticks:
				if !src.Focused() {
					continue
				}
				fn(loopCtx)
			}
		}
	}()

	return task
}

// Stop cancels future ticks and waits for an in-flight callback to return.
func (t *Task) Stop() {
	if t == nil {
		return
	}

	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the poll loop has exited.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
