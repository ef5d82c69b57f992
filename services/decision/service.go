package decision

import (
	"context"

	"github.com/upb/command-gateway/models"
	"github.com/upb/command-gateway/repositories"
	"github.com/upb/command-gateway/services"
	"go.uber.org/zap"
)

// decisionCost is what one approved execution debits from the balance
const decisionCost = 1

// Service is the decision pipeline: eligibility gate, rule classification,
// and the atomic apply of billing and audit side effects. No command is
// ever actually run; an "executed" decision means approved and billed.
type Service struct {
	accounts  repositories.AccountRepository
	rules     repositories.RuleRepository
	audit     repositories.AuditRepository
	txManager repositories.TransactionManager
	matcher   *Matcher
	logger    *zap.Logger
}

// NewService creates a new decision pipeline
func NewService(
	accounts repositories.AccountRepository,
	rules repositories.RuleRepository,
	audit repositories.AuditRepository,
	txManager repositories.TransactionManager,
	matcher *Matcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		accounts:  accounts,
		rules:     rules,
		audit:     audit,
		txManager: txManager,
		matcher:   matcher,
		logger:    logger,
	}
}

// Evaluate runs one command through the pipeline and returns the decision.
//
// Failure semantics: a validation or eligibility failure performs no
// mutation beyond the refusal audit entry. A failed rule-set read surfaces
// as storage-unavailable with no mutation. A failure inside the atomic
// apply rolls the whole unit back, so debited-but-unlogged and
// logged-but-not-debited states are never observable.
func (s *Service) Evaluate(ctx context.Context, account *models.Account, commandText string) (*models.Decision, error) {
	if commandText == "" {
		return nil, services.ErrEmptyCommand
	}

	// Eligibility gate: exhausted accounts are refused before any rule
	// lookup. The refusal itself is audited so the trail stays complete.
	if !account.HasCredits() {
		s.auditRefusal(ctx, account, commandText)
		return nil, insufficientCredits(account.Credits)
	}

	// One consistent snapshot of the rule set per evaluation; concurrent
	// administrative changes are not re-read mid-match.
	ruleSet, err := s.rules.List(ctx)
	if err != nil {
		return nil, services.WrapStorage("failed to load rules", err)
	}

	result := s.matcher.Match(commandText, ruleSet)
	isExecuted := result.Action == models.ActionAutoAccept

	status := models.StatusRejected
	if isExecuted {
		status = models.StatusExecuted
	}

	entry := models.NewAuditLog(account.ID, commandText, result.Action, status)
	if result.Rule != nil {
		entry.WithMatchedRule(result.Rule.ID)
	}

	// Atomic apply: debit and audit append commit together or not at all.
	newBalance := account.Credits
	err = s.txManager.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		if isExecuted {
			balance, err := s.accounts.Debit(txCtx, account.ID, decisionCost)
			if err != nil {
				return err
			}
			newBalance = balance
		}
		return s.audit.Insert(txCtx, entry)
	})
	if err != nil {
		// Lost the race on the last credit: the unit rolled back, so record
		// the refusal the same way the eligibility gate does.
		if services.IsInsufficientCreditsError(err) {
			s.auditRefusal(ctx, account, commandText)
			return nil, err
		}
		if services.IsNotFoundError(err) {
			return nil, err
		}
		return nil, services.WrapTransaction("atomic apply failed", err)
	}

	decision := &models.Decision{
		Status:        status,
		ActionTaken:   result.Action,
		NewBalance:    newBalance,
		Message:       "Command blocked",
		MatchedRuleID: entry.MatchedRuleID,
	}
	if isExecuted {
		decision.Message = "Command executed"
	}

	s.logger.Info("decision applied",
		zap.String("account_id", account.ID.String()),
		zap.String("status", string(status)),
		zap.String("action", string(result.Action)),
		zap.Int("new_balance", newBalance))

	return decision, nil
}

// insufficientCredits builds a per-request refusal error. The shared
// services.ErrInsufficientCredits sentinel is never mutated.
func insufficientCredits(balance int) error {
	return services.NewDomainError(services.ErrorTypeInsufficientCredits, "insufficient credits", nil).
		WithDetail("balance", balance)
}

// auditRefusal records an insufficient-credit refusal. Best effort: the
// caller's error is the refusal itself, so a failed write is only logged.
func (s *Service) auditRefusal(ctx context.Context, account *models.Account, commandText string) {
	entry := models.NewAuditLog(account.ID, commandText, models.ActionAutoReject, models.StatusRejected)
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to audit insufficient-credit refusal",
			zap.String("account_id", account.ID.String()),
			zap.Error(err))
	}
}
