// Package classifier categorizes support requests with the Anthropic
// Messages API. The model assigns each message one category, a confidence
// score, a one-sentence summary, and an urgency flag.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
	triageDomain "github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

const classificationPrompt = `You are an IT support email classifier. Analyze the email below and classify it into exactly ONE category.

CATEGORIES:
- connectivity: Network, VPN, internet, Wi-Fi, firewall, DNS, or connection issues
- onboarding: New hire setup, account creation, access requests, equipment provisioning
- transactional: Password resets, software installs, license requests, routine IT changes
- general: Uncategorized, multi-topic, policy questions, or anything that doesn't fit above

RULES:
- Pick the BEST single category
- Provide a confidence score from 0.0 to 1.0
- Extract a brief summary (1 sentence)
- If the email mentions urgency, flag it

Respond ONLY with valid JSON in this exact format:
{
  "category": "connectivity|onboarding|transactional|general",
  "confidence": 0.95,
  "summary": "Brief one-sentence summary of the issue",
  "is_urgent": false
}

EMAIL:
From: %s
Subject: %s

%s`

// Client classifies support requests through the Anthropic API.
type Client struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *slog.Logger
}

// New creates a classifier client. Extra request options are passed through
// to the underlying SDK client.
func New(apiKey, model string, maxTokens int64, logger *slog.Logger, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &Client{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Classify sends the message to the model and parses its JSON verdict.
// All failure modes (API error, empty completion, malformed or incomplete
// JSON, out-of-range confidence) map to errors.ErrClassification.
func (c *Client) Classify(ctx context.Context, msg triageDomain.InboundMessage) (triageDomain.Classification, error) {
	prompt := buildPrompt(msg)

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return triageDomain.Classification{}, apperrors.Wrap(apperrors.ErrClassification, err.Error())
	}

	if c.logger != nil {
		c.logger.Debug("classification completed",
			slog.String("message_id", msg.ID),
			slog.Int64("input_tokens", message.Usage.InputTokens),
			slog.Int64("output_tokens", message.Usage.OutputTokens),
		)
	}

	text := firstTextBlock(message)
	if text == "" {
		return triageDomain.Classification{}, apperrors.Wrap(apperrors.ErrClassification, "response contains no text")
	}

	return parseClassification(text)
}

// buildPrompt fills the classification prompt with the message headers and body.
func buildPrompt(msg triageDomain.InboundMessage) string {
	return fmt.Sprintf(classificationPrompt, msg.Sender, msg.Subject, msg.Body)
}

// firstTextBlock returns the first text content block of the completion.
func firstTextBlock(message *anthropic.Message) string {
	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

// classificationPayload mirrors the JSON verdict the prompt demands. The
// category, confidence, and summary keys are required; is_urgent defaults
// to false when absent.
type classificationPayload struct {
	Category   *string  `json:"category"`
	Confidence *float64 `json:"confidence"`
	Summary    *string  `json:"summary"`
	IsUrgent   bool     `json:"is_urgent"`
}

// parseClassification strips markdown fences and decodes the model verdict.
func parseClassification(text string) (triageDomain.Classification, error) {
	text = stripFences(text)

	var payload classificationPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return triageDomain.Classification{}, apperrors.Wrap(apperrors.ErrClassification, fmt.Sprintf("invalid response JSON: %v", err))
	}

	if payload.Category == nil || payload.Confidence == nil || payload.Summary == nil {
		return triageDomain.Classification{}, apperrors.Wrap(apperrors.ErrClassification, "response JSON is missing required keys")
	}
	if *payload.Confidence < 0 || *payload.Confidence > 1 {
		return triageDomain.Classification{}, apperrors.Wrap(apperrors.ErrClassification,
			fmt.Sprintf("confidence %v is outside [0, 1]", *payload.Confidence))
	}

	return triageDomain.Classification{
		Category:   triageDomain.Category(*payload.Category),
		Confidence: *payload.Confidence,
		Summary:    *payload.Summary,
		IsUrgent:   payload.IsUrgent,
	}, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, from the completion text.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// Drop the opening fence line
	if _, rest, ok := strings.Cut(text, "\n"); ok {
		text = rest
	} else {
		return ""
	}

	// Drop the closing fence
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}

	return strings.TrimSpace(text)
}
