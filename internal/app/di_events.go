package app

import (
	"fmt"
	"strings"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/events/kafka"
	eventsRepository "github.com/karthikpoola6-cmd/email-triage-ai/internal/events/repository"
	eventsUsecase "github.com/karthikpoola6-cmd/email-triage-ai/internal/events/usecase"
)

// EventRepository returns the triage event repository based on database driver.
func (c *Container) EventRepository() (eventsUsecase.EventRepository, error) {
	var err error
	c.eventRepoInit.Do(func() {
		c.eventRepo, err = c.initEventRepository()
		if err != nil {
			c.initErrors["eventRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventRepo"]; exists {
		return nil, storedErr
	}
	return c.eventRepo, nil
}

// EventPublisher returns the configured event publisher: Kafka when brokers
// are configured, a log-only publisher otherwise.
func (c *Container) EventPublisher() eventsUsecase.Publisher {
	c.eventPublisherInit.Do(func() {
		if c.config.KafkaBrokers != "" {
			brokers := strings.Split(c.config.KafkaBrokers, ",")
			c.eventPublisher = kafka.NewPublisher(brokers, c.config.KafkaEventsTopic)
			return
		}
		c.eventPublisher = eventsUsecase.NewLogPublisher(c.Logger())
	})
	return c.eventPublisher
}

// RelayUseCase returns the event relay use case.
func (c *Container) RelayUseCase() (eventsUsecase.UseCase, error) {
	var err error
	c.relayUseCaseInit.Do(func() {
		c.relayUseCase, err = c.initRelayUseCase()
		if err != nil {
			c.initErrors["relayUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["relayUseCase"]; exists {
		return nil, storedErr
	}
	return c.relayUseCase, nil
}

// initEventRepository creates the event repository based on the database driver.
func (c *Container) initEventRepository() (eventsUsecase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "sqlite":
		return eventsRepository.NewSQLiteEventRepository(db), nil
	case "postgres":
		return eventsRepository.NewPostgreSQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRelayUseCase creates the relay use case with all its dependencies.
func (c *Container) initRelayUseCase() (eventsUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for relay use case: %w", err)
	}

	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for relay use case: %w", err)
	}

	useCaseConfig := eventsUsecase.Config{
		BatchSize:  c.config.EventsBatchSize,
		MaxRetries: c.config.EventsMaxRetries,
	}

	return eventsUsecase.NewRelayUseCase(useCaseConfig, txManager, eventRepo, c.EventPublisher(), c.Logger()), nil
}
