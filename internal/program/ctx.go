package program

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// MainContext cancels on SIGINT or SIGTERM. If the program has not exited gracefulShutdownTimeout
// after cancellation, it is force-exited so a hung request cannot keep the process alive.
func MainContext(gracefulShutdownTimeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	context.AfterFunc(ctx, func() {
		time.Sleep(gracefulShutdownTimeout)
		fmt.Fprintf(os.Stderr, "timed out waiting for depctl to exit gracefully (%v), force-exiting\n", gracefulShutdownTimeout)
		os.Exit(1)
	})

	return ctx, cancel
}
