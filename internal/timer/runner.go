package timer

import (
	"context"
	"time"
)

// Runner owns the one-second cadence for an Engine when no TUI is
// driving ticks. There is never more than one clock per runner, and
// Stop cancels it exactly once.
type Runner struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Run starts ticking the engine once per second until ctx is
// cancelled, Stop is called, or the countdown completes.
func Run(ctx context.Context, e *Engine) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	r := &Runner{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = e.Tick()
				if e.State() != Running {
					return
				}
			}
		}
	}()
	return r
}

// Stop cancels the cadence and waits for the tick goroutine to exit.
// Safe to call more than once.
func (r *Runner) Stop() {
	r.cancel()
	<-r.done
}

// Done is closed once the runner's clock has stopped for any reason.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}
