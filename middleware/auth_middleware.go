package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/upb/command-gateway/models"
	"github.com/upb/command-gateway/services"
	"github.com/upb/command-gateway/utils"
	"go.uber.org/zap"
)

// APIKeyHeader carries the caller's opaque credential
const APIKeyHeader = "X-API-Key"

// Authenticator resolves opaque credentials to accounts
type Authenticator interface {
	// AuthenticateAPIKey resolves an API key to its account
	AuthenticateAPIKey(ctx context.Context, apiKey string) (*models.Account, error)

	// AuthenticateToken resolves a session token to its account
	AuthenticateToken(ctx context.Context, token string) (*models.Account, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	authenticator Authenticator
	logger        *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger,
	}
}

// RequireAuth is a middleware that requires a valid credential: either an
// X-API-Key header or a Bearer session token. The resolved account is
// attached to the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		account, err := m.resolveAccount(r)
		if err != nil {
			m.logger.Warn("authentication failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			if services.IsStorageUnavailableError(err) {
				_ = utils.WriteInternalServerError(w, "Authentication temporarily unavailable")
				return
			}
			_ = utils.WriteUnauthorized(w, "Missing or invalid credentials")
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("account_id", account.ID.String()),
			zap.String("username", account.Username))

		next.ServeHTTP(w, r.WithContext(WithAccount(ctx, account)))
	})
}

// RequireRole is a middleware that requires a specific role. Applied once
// per route group rather than repeated inside each handler.
func (m *AuthMiddleware) RequireRole(role models.AccountRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			account := GetAccountFromContext(ctx)
			if account == nil {
				m.logger.Error("account not found in context",
					zap.String("request_id", requestID))
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			if account.Role != role {
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", requestID),
					zap.String("account_id", account.ID.String()),
					zap.String("required_role", string(role)),
					zap.String("role", string(account.Role)))
				_ = utils.WriteForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// resolveAccount resolves the request's credential to an account.
// The API key header takes precedence over a Bearer token.
func (m *AuthMiddleware) resolveAccount(r *http.Request) (*models.Account, error) {
	ctx := r.Context()

	if apiKey := r.Header.Get(APIKeyHeader); apiKey != "" {
		return m.authenticator.AuthenticateAPIKey(ctx, apiKey)
	}

	if token := extractBearerToken(r); token != "" {
		return m.authenticator.AuthenticateToken(ctx, token)
	}

	return nil, services.ErrUnauthorized
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
