// Package graph reads and sends mail through the Microsoft Graph API and
// handles the device code sign-in that live mode requires.
package graph

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
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/service"
)

// defaultBaseURL is the production Graph endpoint.
const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// unknownSender stands in for messages Graph returns without a usable from
// address.
const unknownSender = "unknown@unknown.com"

// Profile identifies the authenticated mailbox.
type Profile struct {
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Address returns the mailbox address, falling back to the principal name
// for accounts without a mail attribute.
func (p Profile) Address() string {
	if p.Mail != "" {
		return p.Mail
	}

	return p.UserPrincipalName
}

// Client is the mail transport. The HTTP client is expected to carry OAuth
// credentials, normally the one built from Authenticator.TokenSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	filter     service.InboundFilter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different Graph endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewClient creates a mail transport over the given authenticated HTTP
// client. Messages rejected by the filter never surface from FetchUnread.
func NewClient(httpClient *http.Client, filter service.InboundFilter, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		filter:     filter,
		logger:     logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type messageBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type rawMessage struct {
	ID               string `json:"id"`
	Subject          string `json:"subject"`
	ReceivedDateTime string `json:"receivedDateTime"`
	From             struct {
		EmailAddress emailAddress `json:"emailAddress"`
	} `json:"from"`
	Body messageBody `json:"body"`
}

type messageList struct {
	Value []rawMessage `json:"value"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type outboundMessage struct {
	Subject      string      `json:"subject"`
	Body         messageBody `json:"body"`
	ToRecipients []recipient `json:"toRecipients"`
}

type sendMailPayload struct {
	Message         outboundMessage `json:"message"`
	SaveToSentItems bool            `json:"saveToSentItems"`
}

// FetchUnread returns up to limit unread inbox messages, newest first,
// with HTML bodies reduced to plain text. Messages the inbound filter
// rejects are dropped here and stay unread in the mailbox.
func (c *Client) FetchUnread(ctx context.Context, limit int) ([]domain.InboundMessage, error) {
	query := url.Values{}
	query.Set("$filter", "isRead eq false")
	query.Set("$top", strconv.Itoa(limit))
	query.Set("$select", "id,from,subject,body,receivedDateTime")
	query.Set("$orderby", "receivedDateTime desc")

	var payload messageList
	if err := c.do(ctx, http.MethodGet, "/me/messages?"+query.Encode(), nil, &payload); err != nil {
		return nil, err
	}

	messages := make([]domain.InboundMessage, 0, len(payload.Value))
	for _, raw := range payload.Value {
		address := raw.From.EmailAddress.Address
		if address == "" {
			address = unknownSender
		}

		if c.filter != nil && !c.filter.Accept(address, raw.Subject) {
			if c.logger != nil {
				c.logger.Debug("skipping system message",
					slog.String("sender", address),
					slog.String("subject", raw.Subject),
				)
			}
			continue
		}

		body := raw.Body.Content
		if strings.EqualFold(raw.Body.ContentType, "html") {
			body = htmlToText(body)
		}

		receivedAt, _ := time.Parse(time.RFC3339, raw.ReceivedDateTime)

		messages = append(messages, domain.InboundMessage{
			ID:         raw.ID,
			Sender:     address,
			SenderName: raw.From.EmailAddress.Name,
			Subject:    raw.Subject,
			Body:       body,
			ReceivedAt: receivedAt,
		})
	}

	return messages, nil
}

// MarkRead flags the message as read so later fetches no longer return it.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	body := map[string]bool{"isRead": true}

	return c.do(ctx, http.MethodPatch, "/me/messages/"+url.PathEscape(messageID), body, nil)
}

// Send posts an HTML email from the authenticated mailbox, keeping a copy
// in Sent Items.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload := sendMailPayload{
		Message: outboundMessage{
			Subject: subject,
			Body: messageBody{
				ContentType: "HTML",
				Content:     htmlBody,
			},
			ToRecipients: []recipient{
				{EmailAddress: emailAddress{Address: to}},
			},
		},
		SaveToSentItems: true,
	}

	return c.do(ctx, http.MethodPost, "/me/sendMail", payload, nil)
}

// Profile fetches the authenticated user's profile. Live mode calls this
// right after sign-in to verify the token works.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/me", nil, &profile); err != nil {
		return Profile{}, err
	}

	return profile, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal graph request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperrors.Wrap(err, "failed to build graph request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 200))

		return apperrors.New(fmt.Sprintf("graph returned status %d: %s", resp.StatusCode, excerpt))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, "failed to decode graph response")
	}

	return nil
}
