package models

import "github.com/google/uuid"

// Decision is the per-request result of evaluating eligibility and rules and
// applying the atomic outcome. It is derived, never stored as its own entity.
type Decision struct {
	Status        ResponseStatus `json:"status"`
	ActionTaken   RuleAction     `json:"action_taken"`
	MatchedRuleID *uuid.UUID     `json:"matched_rule_id,omitempty"`
	NewBalance    int            `json:"new_balance"` // balance as of after this decision
	Message       string         `json:"message"`
}

// Executed returns true if the command was approved and billed
func (d *Decision) Executed() bool {
	return d.Status == StatusExecuted
}
