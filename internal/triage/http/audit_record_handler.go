// Package http provides HTTP handlers for querying triage audit records.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/httputil"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/http/dto"
)

// AuditRecordLister is the read side of the audit store used by the API.
type AuditRecordLister interface {
	List(ctx context.Context, offset, limit int) ([]*domain.AuditRecord, error)
}

// AuditRecordHandler handles HTTP requests for audit record queries.
type AuditRecordHandler struct {
	auditRecords AuditRecordLister
	logger       *slog.Logger
}

// NewAuditRecordHandler creates a new audit record handler with required dependencies.
func NewAuditRecordHandler(auditRecords AuditRecordLister, logger *slog.Logger) *AuditRecordHandler {
	return &AuditRecordHandler{
		auditRecords: auditRecords,
		logger:       logger,
	}
}

// ListHandler retrieves audit records with pagination support.
// GET /v1/audit-records?offset=0&limit=50
// Returns 200 OK with records ordered by id descending (newest first).
func (h *AuditRecordHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	records, err := h.auditRecords.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapAuditRecordsToListResponse(records)
	c.JSON(http.StatusOK, response)
}
