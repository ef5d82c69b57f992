package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/upb/command-gateway/models"
	"github.com/upb/command-gateway/repositories"
	"github.com/upb/command-gateway/services"
	"go.uber.org/zap"
)

// tokenIssuer identifies tokens minted by this service
const tokenIssuer = "command-gateway"

// Service resolves opaque credentials (API keys or short-lived session
// tokens) to accounts.
type Service struct {
	accounts repositories.AccountRepository
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewService creates a new auth service
func NewService(accounts repositories.AccountRepository, secret []byte, tokenTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		accounts: accounts,
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// AuthenticateAPIKey resolves an API key to its account
func (s *Service) AuthenticateAPIKey(ctx context.Context, apiKey string) (*models.Account, error) {
	if apiKey == "" {
		return nil, services.ErrInvalidAPIKey
	}

	account, err := s.accounts.GetByAPIKeyHash(ctx, HashAPIKey(apiKey))
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrInvalidAPIKey
		}
		return nil, services.WrapStorage("failed to look up API key", err)
	}

	return account, nil
}

// IssueToken exchanges a valid API key for a short-lived HS256 session
// token. Returns the signed token and its expiry.
func (s *Service) IssueToken(ctx context.Context, apiKey string) (string, time.Time, error) {
	account, err := s.AuthenticateAPIKey(ctx, apiKey)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   account.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Debug("session token issued",
		zap.String("account_id", account.ID.String()),
		zap.Time("expires_at", expiresAt))

	return signed, expiresAt, nil
}

// AuthenticateToken resolves a session token to its account
func (s *Service) AuthenticateToken(ctx context.Context, tokenString string) (*models.Account, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, services.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, services.ErrInvalidToken
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, services.ErrInvalidToken
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrInvalidToken
		}
		return nil, services.WrapStorage("failed to look up account", err)
	}

	return account, nil
}
