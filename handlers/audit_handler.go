package handlers

import (
	"net/http"

	"github.com/upb/command-gateway/middleware"
	"github.com/upb/command-gateway/repositories"
	"github.com/upb/command-gateway/utils"
	"go.uber.org/zap"
)

// AuditHandler handles audit trail HTTP requests
type AuditHandler struct {
	audit  repositories.AuditRepository
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(audit repositories.AuditRepository, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: logger,
	}
}

// HandleListLogs handles GET /api/v1/audit/logs (admin only)
func (h *AuditHandler) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	limit, offset := parsePagination(r)

	logs, err := h.audit.List(ctx, limit, offset)
	if err != nil {
		h.logger.Error("failed to list audit logs",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteServiceUnavailable(w, "Failed to retrieve audit logs")
		return
	}

	_ = utils.WriteOK(w, logs)
}
