package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/command-gateway/middleware"
	"github.com/upb/command-gateway/models"
	"github.com/upb/command-gateway/repositories"
	"github.com/upb/command-gateway/utils"
	"go.uber.org/zap"
)

// CreateRuleRequest represents a request to create a rule
type CreateRuleRequest struct {
	Pattern string            `json:"pattern" validate:"required"`
	Action  models.RuleAction `json:"action" validate:"required,oneof=AUTO_ACCEPT AUTO_REJECT"`
}

// RuleHandler handles rule administration HTTP requests
type RuleHandler struct {
	rules  repositories.RuleRepository
	logger *zap.Logger
}

// NewRuleHandler creates a new RuleHandler
func NewRuleHandler(rules repositories.RuleRepository, logger *zap.Logger) *RuleHandler {
	return &RuleHandler{
		rules:  rules,
		logger: logger,
	}
}

// HandleListRules handles GET /api/v1/rules
func (h *RuleHandler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rules, err := h.rules.List(ctx)
	if err != nil {
		h.logger.Error("failed to list rules", zap.Error(err))
		_ = utils.WriteServiceUnavailable(w, "Failed to retrieve rules")
		return
	}

	_ = utils.WriteOK(w, rules)
}

// HandleCreateRule handles POST /api/v1/rules. The pattern must compile as
// a regular expression; the matcher additionally skips stored rules whose
// pattern no longer compiles.
func (h *RuleHandler) HandleCreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req CreateRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, "Pattern and action are required", fieldDetails(err))
		return
	}
	if err := utils.ValidatePattern(req.Pattern); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid regex pattern", map[string]interface{}{
			"pattern": err.Error(),
		})
		return
	}

	rule := models.NewRule(req.Pattern, req.Action)
	if err := h.rules.Create(ctx, rule); err != nil {
		h.logger.Error("failed to create rule",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteServiceUnavailable(w, "Failed to create rule")
		return
	}

	h.logger.Info("rule created",
		zap.String("request_id", requestID),
		zap.String("rule_id", rule.ID.String()),
		zap.Int64("seq", rule.Seq),
		zap.String("action", string(rule.Action)))

	_ = utils.WriteCreated(w, rule)
}

// HandleDeleteRule handles DELETE /api/v1/rules/{id}
func (h *RuleHandler) HandleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid rule ID", nil)
		return
	}

	if err := h.rules.Delete(ctx, id); err != nil {
		h.logger.Warn("failed to delete rule",
			zap.String("request_id", requestID),
			zap.String("rule_id", id.String()),
			zap.Error(err))
		writeDomainError(w, err)
		return
	}

	h.logger.Info("rule deleted",
		zap.String("request_id", requestID),
		zap.String("rule_id", id.String()))

	utils.WriteNoContent(w)
}
