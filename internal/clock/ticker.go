package clock

import (
	"context"
	"sync"
	"time"
)

// Ticker delivers a signal on C every interval until stopped. C is closed
// once the ticker goroutine exits, so receivers never block on a dead ticker.
type Ticker struct {
	C <-chan struct{}

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewTicker starts a ticker bound to ctx.
func NewTicker(ctx context.Context, interval time.Duration) *Ticker {
	ctx, cancel := context.WithCancel(ctx)
	c := make(chan struct{})
	t := &Ticker{C: c, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer close(c)
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				select {
				case c <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return t
}

// Stop cancels the ticker and waits for its goroutine to exit. It is safe to
// call more than once.
func (t *Ticker) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}
