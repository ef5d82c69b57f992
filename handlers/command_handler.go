package handlers

import (
	"context"
	"net/http"

	"github.com/upb/command-gateway/middleware"
	"github.com/upb/command-gateway/models"
	"github.com/upb/command-gateway/utils"
	"go.uber.org/zap"
)

// CommandRequest represents a command submitted for evaluation
type CommandRequest struct {
	CommandText string `json:"command_text" validate:"required"`
}

// DecisionResponse represents the outcome of one evaluation
type DecisionResponse struct {
	Status      models.ResponseStatus `json:"status"`
	ActionTaken models.RuleAction     `json:"action_taken"`
	NewBalance  int                   `json:"new_balance"`
	Message     string                `json:"message"`
}

// DecisionService defines the interface for the decision pipeline
type DecisionService interface {
	// Evaluate classifies a command and atomically applies billing and audit
	Evaluate(ctx context.Context, account *models.Account, commandText string) (*models.Decision, error)
}

// CommandHandler handles command evaluation HTTP requests
type CommandHandler struct {
	decisions DecisionService
	logger    *zap.Logger
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(decisions DecisionService, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{
		decisions: decisions,
		logger:    logger,
	}
}

// HandleProcessCommand handles POST /api/v1/commands
func (h *CommandHandler) HandleProcessCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	account := middleware.GetAccountFromContext(ctx)
	if account == nil {
		h.logger.Error("account not found in context",
			zap.String("request_id", requestID))
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CommandRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, "No command provided", fieldDetails(err))
		return
	}

	decision, err := h.decisions.Evaluate(ctx, account, req.CommandText)
	if err != nil {
		h.logger.Warn("evaluation failed",
			zap.String("request_id", requestID),
			zap.String("account_id", account.ID.String()),
			zap.Error(err))
		writeDomainError(w, err)
		return
	}

	h.logger.Info("command evaluated",
		zap.String("request_id", requestID),
		zap.String("account_id", account.ID.String()),
		zap.String("status", string(decision.Status)))

	_ = utils.WriteJSON(w, http.StatusOK, DecisionResponse{
		Status:      decision.Status,
		ActionTaken: decision.ActionTaken,
		NewBalance:  decision.NewBalance,
		Message:     decision.Message,
	})
}

// fieldDetails converts validation field errors into a details map
func fieldDetails(err error) map[string]interface{} {
	fields := utils.GetValidationFields(err)
	if len(fields) == 0 {
		return nil
	}
	details := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return details
}
