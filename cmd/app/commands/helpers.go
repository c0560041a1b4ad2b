// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/app"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// printSummary writes the processed-request summary table: subject, category,
// assignment group, and ticket id, most recent first.
func printSummary(w io.Writer, records []*domain.AuditRecord) {
	fmt.Fprintf(w, "\nProcessed %d request(s)\n", len(records))
	if len(records) == 0 {
		return
	}

	fmt.Fprintf(w, "%-42s %-15s %-22s %s\n", "SUBJECT", "CATEGORY", "ASSIGNMENT GROUP", "TICKET")
	for _, record := range records {
		fmt.Fprintf(w, "%-42s %-15s %-22s %s\n",
			truncate(record.Subject, 40),
			record.Category,
			truncate(record.AssignmentGroup, 20),
			record.TicketID,
		)
	}
}

// truncate shortens s to at most max runes, marking the cut with "..".
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-2]) + ".."
}
