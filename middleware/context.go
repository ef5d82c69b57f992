package middleware

import (
	"context"

	"github.com/upb/command-gateway/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// AccountKey is the context key for the authenticated account
	AccountKey contextKey = "account"
)

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetAccountFromContext retrieves the authenticated account from context
func GetAccountFromContext(ctx context.Context) *models.Account {
	if val := ctx.Value(AccountKey); val != nil {
		if account, ok := val.(*models.Account); ok {
			return account
		}
	}
	return nil
}

// WithAccount adds the authenticated account to the context
func WithAccount(ctx context.Context, account *models.Account) context.Context {
	return context.WithValue(ctx, AccountKey, account)
}
