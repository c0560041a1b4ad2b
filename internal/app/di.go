// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/classifier"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/config"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/database"
	eventsUsecase "github.com/karthikpoola6-cmd/email-triage-ai/internal/events/usecase"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/graph"
	appHTTP "github.com/karthikpoola6-cmd/email-triage-ai/internal/http"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/metrics"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/notification"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/servicenow"
	triageHTTP "github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/http"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/service"
	triageUsecase "github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Repositories
	auditRecordRepo triageUsecase.AuditRecordRepository
	eventRepo       eventsUsecase.EventRepository

	// Services and collaborators
	routingRules  *service.RoutingRules
	routingPolicy service.RoutingPolicy
	inboundFilter service.InboundFilter
	classifier    *classifier.Client
	ticketing     *servicenow.Client
	renderer      *notification.Renderer
	graphAuth     *graph.Authenticator
	graphClient   *graph.Client

	// Event publishing
	eventPublisher eventsUsecase.Publisher

	// Use Cases
	pipelineUseCase       triageUsecase.PipelineUseCase
	samplePipelineUseCase triageUsecase.PipelineUseCase
	resolutionUseCase     triageUsecase.ResolutionUseCase
	relayUseCase          eventsUsecase.UseCase

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Servers and Workers
	auditRecordHandler *triageHTTP.AuditRecordHandler
	opsServer          *appHTTP.Server
	metricsServer      *appHTTP.MetricsServer
	worker             *triageUsecase.Worker

	// Initialization flags and mutex for thread-safety
	mu                        sync.Mutex
	loggerInit                sync.Once
	dbInit                    sync.Once
	txManagerInit             sync.Once
	auditRecordRepoInit       sync.Once
	eventRepoInit             sync.Once
	routingRulesInit          sync.Once
	routingPolicyInit         sync.Once
	inboundFilterInit         sync.Once
	classifierInit            sync.Once
	ticketingInit             sync.Once
	rendererInit              sync.Once
	graphAuthInit             sync.Once
	graphClientInit           sync.Once
	eventPublisherInit        sync.Once
	pipelineUseCaseInit       sync.Once
	samplePipelineUseCaseInit sync.Once
	resolutionUseCaseInit     sync.Once
	relayUseCaseInit          sync.Once
	metricsProviderInit       sync.Once
	businessMetricsInit       sync.Once
	auditRecordHandlerInit    sync.Once
	opsServerInit             sync.Once
	metricsServerInit         sync.Once
	workerInit                sync.Once
	initErrors                map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown servers if initialized
	if c.opsServer != nil {
		if err := c.opsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("ops server shutdown: %w", err))
		}
	}
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Flush metrics if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close the event publisher if it holds a connection
	if c.eventPublisher != nil {
		if closer, ok := c.eventPublisher.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("event publisher close: %w", err))
			}
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}
