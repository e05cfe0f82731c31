package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

type Runner func(ctx context.Context) error

// shutdownGrace is how long Run waits for the runner after a signal.
const shutdownGrace = 10 * time.Second

// Run executes run until it returns or the process is signalled, and
// returns the exit code.
func Run(serviceName string, logger zerolog.Logger, run Runner) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runContext(ctx, serviceName, logger, run, shutdownGrace)
}

func runContext(ctx context.Context, serviceName string, logger zerolog.Logger, run Runner, grace time.Duration) int {
	logger.Debug().Str("service", serviceName).Msg("starting")

	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx) }()

	select {
	case err := <-errCh:
		return exitCode(serviceName, logger, err)
	case <-ctx.Done():
		logger.Info().Str("service", serviceName).Msg("shutting down")
	}

	select {
	case err := <-errCh:
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		return exitCode(serviceName, logger, err)
	case <-time.After(grace):
		logger.Error().Str("service", serviceName).Dur("grace", grace).Msg("shutdown timed out")
		return 1
	}
}

func exitCode(serviceName string, logger zerolog.Logger, err error) int {
	if err != nil {
		logger.Error().Err(err).Str("service", serviceName).Msg("failed")
		return 1
	}
	logger.Debug().Str("service", serviceName).Msg("stopped")
	return 0
}
