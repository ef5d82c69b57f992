package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/upb/command-gateway/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Automatically commits if the function succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// AccountRepository handles account data operations. Repositories observe
// the transaction carried in the context when one is present.
type AccountRepository interface {
	// Create creates a new account
	Create(ctx context.Context, account *models.Account) error

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)

	// GetByAPIKeyHash retrieves an account by the hash of its API key
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*models.Account, error)

	// GetByUsername retrieves an account by username
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// List retrieves all accounts with pagination
	List(ctx context.Context, limit, offset int) ([]*models.Account, error)

	// Debit atomically decrements the balance by amount, refusing to go
	// below zero. Returns the resulting balance. The conditional update is
	// a single statement, so concurrent debits of the same account cannot
	// both observe the pre-debit balance.
	Debit(ctx context.Context, id uuid.UUID, amount int) (int, error)

	// Count returns the total number of accounts
	Count(ctx context.Context) (int, error)
}

// RuleRepository handles rule data operations. The rule set is read-mostly:
// the pipeline reads one consistent snapshot per evaluation.
type RuleRepository interface {
	// Create creates a new rule; creation order is the de facto priority
	Create(ctx context.Context, rule *models.Rule) error

	// GetByID retrieves a rule by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Rule, error)

	// List retrieves all rules in creation order (ascending seq)
	List(ctx context.Context) ([]*models.Rule, error)

	// Delete deletes a rule
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the total number of rules
	Count(ctx context.Context) (int, error)
}

// AuditRepository handles audit trail operations. The trail is write-once,
// read-many: no update or delete is exposed.
type AuditRepository interface {
	// Insert appends a new audit entry
	Insert(ctx context.Context, entry *models.AuditLog) error

	// GetByAccountID retrieves entries for one account, most recent first
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)

	// List retrieves entries across all accounts, most recent first
	List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)

	// CountByAccountID returns the number of entries for one account
	CountByAccountID(ctx context.Context, accountID uuid.UUID) (int, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Accounts  AccountRepository
	Rules     RuleRepository
	AuditLogs AuditRepository
}
