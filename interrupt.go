package bench

import (
	"context"
	"os"
	"os/signal"
)

// withInterruptHandling returns a context canceled on SIGINT, mirroring the
// Benchmark constructor's context.WithCancel/signal.Notify wiring, extended
// so a Master given the returned cancel func can still let a live worker
// exit gracefully (see spawnWorker's cmd.Cancel/WaitDelay) instead of
// killing it outright.
func withInterruptHandling(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}

		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
