package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountRole represents the role of an account on the gateway
type AccountRole string

const (
	RoleAdmin  AccountRole = "admin"
	RoleMember AccountRole = "member"
)

// DefaultStartingCredits is the balance assigned to newly provisioned accounts
const DefaultStartingCredits = 100

// Account represents a caller identity with a prepaid credit balance.
// The balance is only ever decremented through the decision pipeline's
// atomic apply step and never goes negative.
type Account struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	Username   string      `json:"username" db:"username"`
	APIKeyHash string      `json:"-" db:"api_key_hash"` // SHA-256 hex of the API key, never exposed
	Role       AccountRole `json:"role" db:"role"`
	Credits    int         `json:"credits" db:"credits"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new Account instance with the default starting balance
func NewAccount(username, apiKeyHash string, role AccountRole) *Account {
	now := time.Now()
	return &Account{
		ID:         uuid.New(),
		Username:   username,
		APIKeyHash: apiKeyHash,
		Role:       role,
		Credits:    DefaultStartingCredits,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsAdmin returns true if the account has the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// HasCredits returns true if the account can still pay for a decision
func (a *Account) HasCredits() bool {
	return a.Credits > 0
}
