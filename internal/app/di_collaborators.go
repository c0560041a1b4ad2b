package app

import (
	"context"
	"fmt"
	"os"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/classifier"
	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/graph"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/notification"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/servicenow"
)

// Classifier returns the classification collaborator client.
func (c *Container) Classifier() (*classifier.Client, error) {
	var err error
	c.classifierInit.Do(func() {
		c.classifier, err = c.initClassifier()
		if err != nil {
			c.initErrors["classifier"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["classifier"]; exists {
		return nil, storedErr
	}
	return c.classifier, nil
}

// Ticketing returns the ticketing collaborator client.
func (c *Container) Ticketing() (*servicenow.Client, error) {
	var err error
	c.ticketingInit.Do(func() {
		c.ticketing, err = c.initTicketing()
		if err != nil {
			c.initErrors["ticketing"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ticketing"]; exists {
		return nil, storedErr
	}
	return c.ticketing, nil
}

// Renderer returns the notification template renderer.
func (c *Container) Renderer() (*notification.Renderer, error) {
	var err error
	c.rendererInit.Do(func() {
		c.renderer, err = notification.NewRenderer()
		if err != nil {
			c.initErrors["renderer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["renderer"]; exists {
		return nil, storedErr
	}
	return c.renderer, nil
}

// GraphAuthenticator returns the mail transport authenticator. Device code
// prompts are written to stdout so the operator can complete the sign-in.
func (c *Container) GraphAuthenticator() (*graph.Authenticator, error) {
	var err error
	c.graphAuthInit.Do(func() {
		c.graphAuth, err = c.initGraphAuthenticator()
		if err != nil {
			c.initErrors["graphAuth"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["graphAuth"]; exists {
		return nil, storedErr
	}
	return c.graphAuth, nil
}

// GraphClient returns the authenticated mail transport client. The first
// call may block on the interactive device code flow, so it takes the
// startup context.
func (c *Container) GraphClient(ctx context.Context) (*graph.Client, error) {
	var err error
	c.graphClientInit.Do(func() {
		c.graphClient, err = c.initGraphClient(ctx)
		if err != nil {
			c.initErrors["graphClient"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["graphClient"]; exists {
		return nil, storedErr
	}
	return c.graphClient, nil
}

// initClassifier creates the classification client from configuration.
func (c *Container) initClassifier() (*classifier.Client, error) {
	if c.config.AnthropicAPIKey == "" {
		return nil, apperrors.Wrap(apperrors.ErrConfig, "ANTHROPIC_API_KEY is not set")
	}

	return classifier.New(
		c.config.AnthropicAPIKey,
		c.config.AnthropicModel,
		int64(c.config.ClassifierMaxTokens),
		c.Logger(),
	), nil
}

// initTicketing creates the ticketing client from configuration.
func (c *Container) initTicketing() (*servicenow.Client, error) {
	if c.config.ServiceNowInstanceURL == "" {
		return nil, apperrors.Wrap(apperrors.ErrConfig, "SERVICENOW_INSTANCE_URL is not set")
	}

	return servicenow.New(
		c.config.ServiceNowInstanceURL,
		c.config.ServiceNowUsername,
		c.config.ServiceNowPassword,
		c.Logger(),
	), nil
}

// initGraphAuthenticator creates the transport authenticator from configuration.
func (c *Container) initGraphAuthenticator() (*graph.Authenticator, error) {
	if c.config.GraphClientID == "" {
		return nil, apperrors.Wrap(apperrors.ErrConfig, "MS_CLIENT_ID is not set")
	}

	return graph.NewAuthenticator(
		c.config.GraphClientID,
		c.config.GraphAuthority,
		c.config.GraphTokenCachePath,
		os.Stdout,
		c.Logger(),
	), nil
}

// initGraphClient authenticates against the identity platform and wires the
// inbound filter into the transport so rejected messages never reach the
// pipeline.
func (c *Container) initGraphClient(ctx context.Context) (*graph.Client, error) {
	auth, err := c.GraphAuthenticator()
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticator for graph client: %w", err)
	}

	httpClient, err := auth.Client(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to authenticate mail transport")
	}

	filter, err := c.InboundFilter()
	if err != nil {
		return nil, fmt.Errorf("failed to get inbound filter for graph client: %w", err)
	}

	return graph.NewClient(httpClient, filter, c.Logger()), nil
}
