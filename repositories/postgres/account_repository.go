package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/upb/command-gateway/models"
	"github.com/upb/command-gateway/repositories"
	"github.com/upb/command-gateway/services"
	"go.uber.org/zap"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

// AccountRepository implements the repositories.AccountRepository interface
type AccountRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB, logger *zap.Logger) repositories.AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, username, api_key_hash, role, credits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.APIKeyHash,
		account.Role,
		account.Credits,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if pqErr.Constraint == "accounts_api_key_hash_key" {
				return services.ErrDuplicateAPIKey
			}
			return services.ErrDuplicateUsername
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	r.logger.Debug("account created",
		zap.String("id", account.ID.String()),
		zap.String("username", account.Username))
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `
		SELECT id, username, api_key_hash, role, credits, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	return r.scanAccount(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetByAPIKeyHash retrieves an account by the hash of its API key
func (r *AccountRepository) GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*models.Account, error) {
	query := `
		SELECT id, username, api_key_hash, role, credits, created_at, updated_at
		FROM accounts
		WHERE api_key_hash = $1
	`

	return r.scanAccount(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, apiKeyHash))
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, username, api_key_hash, role, credits, created_at, updated_at
		FROM accounts
		WHERE username = $1
	`

	return r.scanAccount(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, username))
}

// List retrieves all accounts with pagination
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	query := `
		SELECT id, username, api_key_hash, role, credits, created_at, updated_at
		FROM accounts
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*models.Account, 0)
	for rows.Next() {
		account := &models.Account{}
		if err := rows.Scan(
			&account.ID,
			&account.Username,
			&account.APIKeyHash,
			&account.Role,
			&account.Credits,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accounts, nil
}

// Debit atomically decrements the balance, refusing to go below zero.
// The WHERE clause makes the check and the decrement one indivisible
// statement: two concurrent debits of the same account cannot both
// observe the pre-debit balance.
func (r *AccountRepository) Debit(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	query := `
		UPDATE accounts
		SET credits = credits - $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND credits >= $2
		RETURNING credits
	`

	executor := GetExecutor(ctx, r.db)

	var balance int
	err := executor.QueryRowContext(ctx, query, id, amount).Scan(&balance)
	if err == nil {
		r.logger.Debug("account debited",
			zap.String("id", id.String()),
			zap.Int("amount", amount),
			zap.Int("balance", balance))
		return balance, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to debit account: %w", err)
	}

	// No row updated: either the account is gone or the balance is too low.
	var exists bool
	checkQuery := `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`
	if err := executor.QueryRowContext(ctx, checkQuery, id).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check account existence: %w", err)
	}
	if !exists {
		return 0, services.ErrAccountNotFound
	}
	return 0, services.ErrInsufficientCredits
}

// Count returns the total number of accounts
func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var count int
	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// scanAccount scans a single account row, mapping sql.ErrNoRows to the
// domain not-found error
func (r *AccountRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.APIKeyHash,
		&account.Role,
		&account.Credits,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}
