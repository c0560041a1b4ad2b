package app

import (
	"context"
	"fmt"

	triageHTTP "github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/http"
	triageRepository "github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/repository"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/service"
	triageUsecase "github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/usecase"
)

// AuditRecordRepository returns the audit record repository based on database driver.
func (c *Container) AuditRecordRepository() (triageUsecase.AuditRecordRepository, error) {
	var err error
	c.auditRecordRepoInit.Do(func() {
		c.auditRecordRepo, err = c.initAuditRecordRepository()
		if err != nil {
			c.initErrors["auditRecordRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRecordRepo"]; exists {
		return nil, storedErr
	}
	return c.auditRecordRepo, nil
}

// RoutingRules returns the parsed and validated routing rules file.
func (c *Container) RoutingRules() (*service.RoutingRules, error) {
	var err error
	c.routingRulesInit.Do(func() {
		c.routingRules, err = service.LoadRoutingRules(c.config.RoutingRulesPath)
		if err != nil {
			c.initErrors["routingRules"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["routingRules"]; exists {
		return nil, storedErr
	}
	return c.routingRules, nil
}

// RoutingPolicy returns the routing policy built from the routing rules.
func (c *Container) RoutingPolicy() (service.RoutingPolicy, error) {
	var err error
	c.routingPolicyInit.Do(func() {
		c.routingPolicy, err = c.initRoutingPolicy()
		if err != nil {
			c.initErrors["routingPolicy"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["routingPolicy"]; exists {
		return nil, storedErr
	}
	return c.routingPolicy, nil
}

// InboundFilter returns the inbound message filter, extended with the
// skip sets from the routing rules file.
func (c *Container) InboundFilter() (service.InboundFilter, error) {
	var err error
	c.inboundFilterInit.Do(func() {
		c.inboundFilter, err = c.initInboundFilter()
		if err != nil {
			c.initErrors["inboundFilter"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["inboundFilter"]; exists {
		return nil, storedErr
	}
	return c.inboundFilter, nil
}

// PipelineUseCase returns the live-mode pipeline use case, which delivers
// acknowledgements through the authenticated mail transport.
func (c *Container) PipelineUseCase(ctx context.Context) (triageUsecase.PipelineUseCase, error) {
	var err error
	c.pipelineUseCaseInit.Do(func() {
		c.pipelineUseCase, err = c.initPipelineUseCase(ctx)
		if err != nil {
			c.initErrors["pipelineUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pipelineUseCase"]; exists {
		return nil, storedErr
	}
	return c.pipelineUseCase, nil
}

// SamplePipelineUseCase returns the sample-mode pipeline use case. It has no
// notifier, so acknowledgements are rendered but never delivered and no
// message is ever marked read.
func (c *Container) SamplePipelineUseCase() (triageUsecase.PipelineUseCase, error) {
	var err error
	c.samplePipelineUseCaseInit.Do(func() {
		c.samplePipelineUseCase, err = c.buildPipelineUseCase(nil)
		if err != nil {
			c.initErrors["samplePipelineUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["samplePipelineUseCase"]; exists {
		return nil, storedErr
	}
	return c.samplePipelineUseCase, nil
}

// ResolutionUseCase returns the resolution poller use case.
func (c *Container) ResolutionUseCase(ctx context.Context) (triageUsecase.ResolutionUseCase, error) {
	var err error
	c.resolutionUseCaseInit.Do(func() {
		c.resolutionUseCase, err = c.initResolutionUseCase(ctx)
		if err != nil {
			c.initErrors["resolutionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["resolutionUseCase"]; exists {
		return nil, storedErr
	}
	return c.resolutionUseCase, nil
}

// Worker returns the live-mode worker loop.
func (c *Container) Worker(ctx context.Context) (*triageUsecase.Worker, error) {
	var err error
	c.workerInit.Do(func() {
		c.worker, err = c.initWorker(ctx)
		if err != nil {
			c.initErrors["worker"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["worker"]; exists {
		return nil, storedErr
	}
	return c.worker, nil
}

// AuditRecordHandler returns the HTTP handler for audit record listing.
func (c *Container) AuditRecordHandler() (*triageHTTP.AuditRecordHandler, error) {
	var err error
	c.auditRecordHandlerInit.Do(func() {
		c.auditRecordHandler, err = c.initAuditRecordHandler()
		if err != nil {
			c.initErrors["auditRecordHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRecordHandler"]; exists {
		return nil, storedErr
	}
	return c.auditRecordHandler, nil
}

// initAuditRecordRepository creates the audit record repository based on the
// database driver.
func (c *Container) initAuditRecordRepository() (triageUsecase.AuditRecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit record repository: %w", err)
	}

	switch c.config.DBDriver {
	case "sqlite":
		return triageRepository.NewSQLiteAuditRecordRepository(db), nil
	case "postgres":
		return triageRepository.NewPostgreSQLAuditRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRoutingPolicy creates the routing policy from the rules table.
func (c *Container) initRoutingPolicy() (service.RoutingPolicy, error) {
	rules, err := c.RoutingRules()
	if err != nil {
		return nil, fmt.Errorf("failed to get routing rules for routing policy: %w", err)
	}
	return service.NewRoutingPolicy(rules.Table()), nil
}

// initInboundFilter creates the inbound filter with configured extensions.
func (c *Container) initInboundFilter() (service.InboundFilter, error) {
	rules, err := c.RoutingRules()
	if err != nil {
		return nil, fmt.Errorf("failed to get routing rules for inbound filter: %w", err)
	}
	return service.NewInboundFilter(rules.Filters.SkipSenders, rules.Filters.SkipDomains), nil
}

// initPipelineUseCase creates the live pipeline with the transport client as
// its notifier.
func (c *Container) initPipelineUseCase(ctx context.Context) (triageUsecase.PipelineUseCase, error) {
	notifier, err := c.GraphClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get graph client for pipeline use case: %w", err)
	}
	return c.buildPipelineUseCase(notifier)
}

// buildPipelineUseCase assembles a pipeline use case around the given
// notifier. A nil notifier disables the delivery stage.
func (c *Container) buildPipelineUseCase(notifier triageUsecase.Notifier) (triageUsecase.PipelineUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for pipeline use case: %w", err)
	}

	auditRepo, err := c.AuditRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit record repository for pipeline use case: %w", err)
	}

	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for pipeline use case: %w", err)
	}

	classifierClient, err := c.Classifier()
	if err != nil {
		return nil, fmt.Errorf("failed to get classifier for pipeline use case: %w", err)
	}

	routingPolicy, err := c.RoutingPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to get routing policy for pipeline use case: %w", err)
	}

	ticketing, err := c.Ticketing()
	if err != nil {
		return nil, fmt.Errorf("failed to get ticketing client for pipeline use case: %w", err)
	}

	renderer, err := c.Renderer()
	if err != nil {
		return nil, fmt.Errorf("failed to get renderer for pipeline use case: %w", err)
	}

	baseUseCase := triageUsecase.NewPipelineUseCase(
		txManager,
		auditRepo,
		eventRepo,
		classifierClient,
		routingPolicy,
		ticketing,
		renderer,
		notifier,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for pipeline use case: %w", err)
		}
		return triageUsecase.NewPipelineUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initResolutionUseCase creates the resolution poller with all its dependencies.
func (c *Container) initResolutionUseCase(ctx context.Context) (triageUsecase.ResolutionUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for resolution use case: %w", err)
	}

	auditRepo, err := c.AuditRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit record repository for resolution use case: %w", err)
	}

	ticketing, err := c.Ticketing()
	if err != nil {
		return nil, fmt.Errorf("failed to get ticketing client for resolution use case: %w", err)
	}

	renderer, err := c.Renderer()
	if err != nil {
		return nil, fmt.Errorf("failed to get renderer for resolution use case: %w", err)
	}

	notifier, err := c.GraphClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get graph client for resolution use case: %w", err)
	}

	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for resolution use case: %w", err)
	}

	baseUseCase := triageUsecase.NewResolutionUseCase(
		triageUsecase.ResolutionConfig{ResolvedState: c.config.ServiceNowResolvedState},
		txManager,
		auditRepo,
		ticketing,
		renderer,
		notifier,
		eventRepo,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for resolution use case: %w", err)
		}
		return triageUsecase.NewResolutionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initWorker creates the worker loop with all its dependencies.
func (c *Container) initWorker(ctx context.Context) (*triageUsecase.Worker, error) {
	transport, err := c.GraphClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get graph client for worker: %w", err)
	}

	pipeline, err := c.PipelineUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline use case for worker: %w", err)
	}

	resolution, err := c.ResolutionUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get resolution use case for worker: %w", err)
	}

	relay, err := c.RelayUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get relay use case for worker: %w", err)
	}

	workerConfig := triageUsecase.WorkerConfig{
		PollInterval: c.config.PollInterval,
		FetchLimit:   c.config.FetchLimit,
	}

	return triageUsecase.NewWorker(workerConfig, transport, pipeline, resolution, relay, c.Logger()), nil
}

// initAuditRecordHandler creates the audit record HTTP handler.
func (c *Container) initAuditRecordHandler() (*triageHTTP.AuditRecordHandler, error) {
	auditRepo, err := c.AuditRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit record repository for audit record handler: %w", err)
	}

	return triageHTTP.NewAuditRecordHandler(auditRepo, c.Logger()), nil
}
