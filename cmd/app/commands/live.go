package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/app"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/config"
)

// RunLive starts live mode: it authenticates the mail transport (fatal on
// failure), then runs the triage worker loop alongside the ops and metrics
// servers until SIGINT/SIGTERM. The running cycle finishes before shutdown,
// and the summary table is printed on the way out.
func RunLive(ctx context.Context, version string) error {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on log level
	gin.SetMode(cfg.GetGinMode())

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("starting live mode", slog.String("version", version))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Setup graceful shutdown before authenticating, so an interrupt during
	// the device code prompt also exits cleanly.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Building the worker authenticates the transport; failure here stops
	// the process before any loop starts.
	worker, err := container.Worker(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize worker: %w", err)
	}

	opsServer, err := container.OpsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize ops server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := worker.Start(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("worker error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		if err := opsServer.Start(groupCtx); err != nil {
			return fmt.Errorf("ops server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		group.Go(func() error {
			if err := metricsServer.Start(groupCtx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	// Stop the blocking servers once the worker stops or a server fails.
	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		var shutdownErrors []error
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("ops server shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		return errors.Join(shutdownErrors...)
	})

	runErr := group.Wait()
	if runErr != nil {
		logger.Error("live mode stopped with error", slog.Any("error", runErr))
	} else {
		logger.Info("live mode stopped")
	}

	// Print what was processed, most recent first.
	if auditRecords, err := container.AuditRecordRepository(); err == nil {
		records, err := auditRecords.ListAll(context.Background())
		if err != nil {
			logger.Error("failed to list audit records for summary", slog.Any("error", err))
		} else {
			printSummary(os.Stdout, records)
		}
	}

	return runErr
}
