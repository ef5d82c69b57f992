package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/command-gateway/utils"
	"go.uber.org/zap"
)

// TokenRequest represents a request to exchange an API key for a session token
type TokenRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// TokenResponse carries a signed session token and its expiry
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// TokenIssuer mints session tokens from API keys
type TokenIssuer interface {
	// IssueToken exchanges a valid API key for a signed session token
	IssueToken(ctx context.Context, apiKey string) (string, time.Time, error)
}

// AuthHandler handles credential exchange HTTP requests
type AuthHandler struct {
	issuer TokenIssuer
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(issuer TokenIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		issuer: issuer,
		logger: logger,
	}
}

// HandleIssueToken handles POST /api/v1/auth/token
func (h *AuthHandler) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, "API key is required", fieldDetails(err))
		return
	}

	token, expiresAt, err := h.issuer.IssueToken(ctx, req.APIKey)
	if err != nil {
		h.logger.Warn("token issuance failed", zap.Error(err))
		writeDomainError(w, err)
		return
	}

	_ = utils.WriteOK(w, TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
