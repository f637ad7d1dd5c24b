package practice

import (
	"context"
	"sync"
	"time"
)

// Ticker is a cancellable periodic callback owned by one session.
// A nil *Ticker is valid and does nothing.
type Ticker struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartTicker calls fn every interval until Stop is called. A non-positive
// interval returns nil.
func StartTicker(interval time.Duration, fn func()) *Ticker {
	if interval <= 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &Ticker{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	return t
}

// Stop cancels the ticker. It does not wait for an in-progress callback.
func (t *Ticker) Stop() {
	if t == nil {
		return
	}
	t.once.Do(t.cancel)
}

// Done is closed once the ticker goroutine has exited.
func (t *Ticker) Done() <-chan struct{} {
	if t == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return t.done
}
