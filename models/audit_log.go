package models

import (
	"time"

	"github.com/google/uuid"
)

// ResponseStatus represents the billing outcome recorded for a decision
type ResponseStatus string

const (
	StatusExecuted ResponseStatus = "EXECUTED"
	StatusRejected ResponseStatus = "REJECTED"
)

// AuditLog represents one immutable entry in the decision trail.
// Entries are write-once: the repository exposes no update or delete.
type AuditLog struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	AccountID      uuid.UUID      `json:"account_id" db:"account_id"`
	CommandText    string         `json:"command_text" db:"command_text"` // verbatim, untrusted
	ActionTaken    RuleAction     `json:"action_taken" db:"action_taken"`
	ResponseStatus ResponseStatus `json:"response_status" db:"response_status"`
	MatchedRuleID  *uuid.UUID     `json:"matched_rule_id,omitempty" db:"matched_rule_id"`
	Timestamp      time.Time      `json:"timestamp" db:"timestamp"` // server-assigned at write time
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(accountID uuid.UUID, commandText string, action RuleAction, status ResponseStatus) *AuditLog {
	return &AuditLog{
		ID:             uuid.New(),
		AccountID:      accountID,
		CommandText:    commandText,
		ActionTaken:    action,
		ResponseStatus: status,
		Timestamp:      time.Now(),
	}
}

// WithMatchedRule sets the rule that produced the decision
func (l *AuditLog) WithMatchedRule(ruleID uuid.UUID) *AuditLog {
	l.MatchedRuleID = &ruleID
	return l
}
