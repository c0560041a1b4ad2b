// Package servicenow is a minimal client for the ServiceNow Table API,
// covering incident creation and incident state lookups.
package servicenow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// incidentTable is the Table API path for the incident table.
const incidentTable = "/api/now/table/incident"

// requestTimeout bounds every call to the instance.
const requestTimeout = 30 * time.Second

// StatusError reports a response with an unexpected HTTP status. Callers
// that record failed creations as sentinel ticket ids read the code from
// here.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("servicenow returned status %d", e.Code)
}

// StatusCode returns the HTTP status the instance answered with.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// Client talks to one ServiceNow instance using basic authentication.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client for the given instance URL. A trailing slash on the
// URL is tolerated.
func New(instanceURL, username, password string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(instanceURL, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}
}

type incidentPayload struct {
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	Urgency          string `json:"urgency"`
	AssignmentGroup  string `json:"assignment_group"`
	CallerID         string `json:"caller_id"`
}

type incidentCreated struct {
	Result struct {
		Number string `json:"number"`
	} `json:"result"`
}

type incidentQuery struct {
	Result []struct {
		State      string `json:"state"`
		CloseNotes string `json:"close_notes"`
		Number     string `json:"number"`
	} `json:"result"`
}

// CreateIncident opens an incident and returns its number. A response with
// any status other than 201 comes back as a *StatusError.
func (c *Client) CreateIncident(ctx context.Context, req domain.TicketRequest) (string, error) {
	payload := incidentPayload{
		ShortDescription: fmt.Sprintf("[%s] %s", strings.ToUpper(string(req.Category)), req.Subject),
		Description:      req.Description,
		Urgency:          strconv.Itoa(req.Priority),
		AssignmentGroup:  req.AssignmentGroup,
		CallerID:         req.Requester,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal incident payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+incidentTable, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to build incident request")
	}
	c.prepare(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		if c.logger != nil {
			c.logger.Warn("incident creation rejected",
				slog.Int("status", resp.StatusCode),
				slog.String("body", string(excerpt)),
			)
		}
		return "", &StatusError{Code: resp.StatusCode}
	}

	var created incidentCreated
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", apperrors.Wrap(err, "failed to decode incident response")
	}
	if created.Result.Number == "" {
		return "", apperrors.New("incident response carries no number")
	}

	if c.logger != nil {
		c.logger.Debug("incident created", slog.String("ticket_id", created.Result.Number))
	}

	return created.Result.Number, nil
}

// GetTicketState looks up one incident by number and returns its state code
// and close notes. Returns domain.ErrTicketNotFound when the instance has no
// matching incident.
func (c *Client) GetTicketState(ctx context.Context, ticketID string) (domain.TicketState, error) {
	query := url.Values{}
	query.Set("sysparm_query", "number="+ticketID)
	query.Set("sysparm_fields", "state,close_notes,number")
	query.Set("sysparm_limit", "1")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+incidentTable+"?"+query.Encode(), nil)
	if err != nil {
		return domain.TicketState{}, apperrors.Wrap(err, "failed to build ticket query")
	}
	c.prepare(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.TicketState{}, apperrors.Wrap(apperrors.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.TicketState{}, &StatusError{Code: resp.StatusCode}
	}

	var result incidentQuery
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.TicketState{}, apperrors.Wrap(err, "failed to decode ticket query response")
	}
	if len(result.Result) == 0 {
		return domain.TicketState{}, domain.ErrTicketNotFound
	}

	record := result.Result[0]

	return domain.TicketState{
		State:      record.State,
		CloseNotes: record.CloseNotes,
	}, nil
}

func (c *Client) prepare(req *http.Request) {
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
}
