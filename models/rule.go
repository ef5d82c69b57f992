package models

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownAction is returned when a rule carries an action outside the enum
var ErrUnknownAction = errors.New("unknown rule action")

// RuleAction represents the outcome category a rule assigns to a command
type RuleAction string

const (
	ActionAutoAccept RuleAction = "AUTO_ACCEPT"
	ActionAutoReject RuleAction = "AUTO_REJECT"
)

// IsValid returns true if the action is one of the known values
func (a RuleAction) IsValid() bool {
	return a == ActionAutoAccept || a == ActionAutoReject
}

// Rule represents a pattern/action pair used to classify commands.
// Rules have no explicit priority field: Seq records creation order and
// matching walks rules in ascending Seq, first match wins.
type Rule struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Seq       int64      `json:"seq" db:"seq"`
	Pattern   string     `json:"pattern" db:"pattern"`
	Action    RuleAction `json:"action" db:"action"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Rule model
func (Rule) TableName() string {
	return "rules"
}

// NewRule creates a new Rule instance. Seq is assigned by the database.
func NewRule(pattern string, action RuleAction) *Rule {
	return &Rule{
		ID:        uuid.New(),
		Pattern:   pattern,
		Action:    action,
		CreatedAt: time.Now(),
	}
}

// Validate checks that the pattern compiles and the action is known.
// Called at creation time by the administrative boundary; the matcher
// additionally skips stored rules whose pattern no longer compiles.
func (r *Rule) Validate() error {
	if !r.Action.IsValid() {
		return ErrUnknownAction
	}
	if _, err := regexp.Compile(r.Pattern); err != nil {
		return err
	}
	return nil
}
