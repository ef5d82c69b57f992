package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/command-gateway/middleware"
	"github.com/upb/command-gateway/models"
	"github.com/upb/command-gateway/repositories"
	"github.com/upb/command-gateway/services"
	"github.com/upb/command-gateway/services/auth"
	"github.com/upb/command-gateway/utils"
	"go.uber.org/zap"
)

// CreateAccountRequest represents a request to provision an account
type CreateAccountRequest struct {
	Username string             `json:"username" validate:"required,min=1,max=255"`
	Role     models.AccountRole `json:"role" validate:"required,oneof=admin member"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID       uuid.UUID          `json:"id"`
	Username string             `json:"username"`
	Role     models.AccountRole `json:"role"`
	Credits  int                `json:"credits"`
}

// CreatedAccountResponse carries the plaintext API key exactly once, at
// provisioning time. It is never retrievable again.
type CreatedAccountResponse struct {
	AccountResponse
	APIKey string `json:"api_key"`
}

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accounts repositories.AccountRepository
	audit    repositories.AuditRepository
	logger   *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts repositories.AccountRepository, audit repositories.AuditRepository, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		audit:    audit,
		logger:   logger,
	}
}

// HandleGetMe handles GET /api/v1/accounts/me
func (h *AccountHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account := middleware.GetAccountFromContext(ctx)
	if account == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	// Re-read so the balance reflects decisions applied since auth
	fresh, err := h.accounts.GetByID(ctx, account.ID)
	if err != nil {
		h.logger.Error("failed to load account", zap.Error(err))
		writeDomainError(w, err)
		return
	}

	_ = utils.WriteOK(w, accountToResponse(fresh))
}

// HandleGetMyHistory handles GET /api/v1/accounts/me/history
func (h *AccountHandler) HandleGetMyHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	account := middleware.GetAccountFromContext(ctx)
	if account == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit, offset := parsePagination(r)

	logs, err := h.audit.GetByAccountID(ctx, account.ID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list audit history",
			zap.String("request_id", requestID),
			zap.String("account_id", account.ID.String()),
			zap.Error(err))
		_ = utils.WriteServiceUnavailable(w, "Failed to retrieve history")
		return
	}

	_ = utils.WriteOK(w, logs)
}

// HandleCreateAccount handles POST /api/v1/accounts (admin only).
// A random API key is generated, its hash stored, and the plaintext
// returned in this response only.
func (h *AccountHandler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, "Username and role are required", fieldDetails(err))
		return
	}

	apiKey, err := auth.GenerateAPIKey()
	if err != nil {
		h.logger.Error("failed to generate API key",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	account := models.NewAccount(req.Username, auth.HashAPIKey(apiKey), req.Role)
	if err := h.accounts.Create(ctx, account); err != nil {
		if services.IsConflictError(err) {
			_ = utils.WriteConflict(w, "Username already taken", nil)
			return
		}
		h.logger.Error("failed to create account",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteServiceUnavailable(w, "Failed to create account")
		return
	}

	h.logger.Info("account provisioned",
		zap.String("request_id", requestID),
		zap.String("account_id", account.ID.String()),
		zap.String("username", account.Username),
		zap.String("role", string(account.Role)))

	_ = utils.WriteCreated(w, CreatedAccountResponse{
		AccountResponse: accountToResponse(account),
		APIKey:          apiKey,
	})
}

// accountToResponse converts an Account model to its API representation
func accountToResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:       a.ID,
		Username: a.Username,
		Role:     a.Role,
		Credits:  a.Credits,
	}
}
