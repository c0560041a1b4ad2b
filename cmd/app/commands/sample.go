package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
	triageUsecase "github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/usecase"
)

// sampleMessage is one entry of the sample emails JSON file.
type sampleMessage struct {
	ID         string `json:"id"`
	Sender     string `json:"sender"`
	SenderName string `json:"sender_name"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

// RunSample processes the sample email batch through the pipeline and prints
// the summary table. The pipeline must be the sample-mode one: nothing is
// delivered and no mailbox is touched. A message that fails to process is
// logged and skipped so the rest of the batch still runs.
//
// Requirements: Database must be migrated and accessible.
func RunSample(
	ctx context.Context,
	pipeline triageUsecase.PipelineUseCase,
	auditRecords triageUsecase.AuditRecordRepository,
	logger *slog.Logger,
	out io.Writer,
	path string,
) error {
	messages, err := loadSampleMessages(path)
	if err != nil {
		return err
	}

	logger.Info("processing sample batch",
		slog.String("path", path),
		slog.Int("count", len(messages)),
	)

	for _, msg := range messages {
		if _, err := pipeline.ProcessMessage(ctx, msg); err != nil {
			logger.Error("failed to process sample message",
				slog.String("message_id", msg.ID),
				slog.Any("error", err),
			)
		}
	}

	records, err := auditRecords.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list audit records: %w", err)
	}

	printSummary(out, records)
	return nil
}

// loadSampleMessages reads and parses the sample emails file into inbound
// messages. Entries without an id get a positional one.
func loadSampleMessages(path string) ([]domain.InboundMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample emails file: %w", err)
	}

	var samples []sampleMessage
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("failed to parse sample emails file: %w", err)
	}

	now := time.Now().UTC()
	messages := make([]domain.InboundMessage, 0, len(samples))
	for i, sample := range samples {
		id := sample.ID
		if id == "" {
			id = fmt.Sprintf("sample-%d", i+1)
		}
		messages = append(messages, domain.InboundMessage{
			ID:         id,
			Sender:     sample.Sender,
			SenderName: sample.SenderName,
			Subject:    sample.Subject,
			Body:       sample.Body,
			ReceivedAt: now,
		})
	}

	return messages, nil
}
