package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/fretmastery/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := runner.command().Run(ctx, os.Args)
	stop()
	runner.Close()

	if err == nil {
		return
	}
	switch {
	case errors.Is(err, context.Canceled):
		logger.Warn("interrupted")
		os.Exit(130)
	case shared.IsUserError(err), errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrForbidden):
		logger.Error(err)
		os.Exit(1)
	default:
		logger.Fatalf("application error: %v", err)
	}
}
