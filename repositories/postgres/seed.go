package postgres

import (
	"context"
	"fmt"

	"github.com/upb/command-gateway/models"
	"github.com/upb/command-gateway/services/auth"
	"go.uber.org/zap"
)

// defaultRules are installed when the rule table is empty. Order matters:
// creation order is the match priority.
var defaultRules = []struct {
	pattern string
	action  models.RuleAction
}{
	{`:\(\)\{ :\|:& \};:`, models.ActionAutoReject}, // fork bomb
	{`rm\s+-rf\s+/`, models.ActionAutoReject},
	{`mkfs\.`, models.ActionAutoReject},
	{`git\s+(status|log|diff)`, models.ActionAutoAccept},
	{`^(ls|cat|pwd|echo)`, models.ActionAutoAccept},
}

// Seed installs default accounts and rules when the respective tables are
// empty. Development convenience only; the API keys used here must never
// appear in a production deployment.
func Seed(ctx context.Context, db *DB, adminAPIKey, memberAPIKey string, logger *zap.Logger) error {
	accountRepo := NewAccountRepository(db, logger)
	ruleRepo := NewRuleRepository(db, logger)

	accountCount, err := accountRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count accounts: %w", err)
	}

	if accountCount == 0 {
		logger.Info("seeding default accounts")

		admin := models.NewAccount("admin", auth.HashAPIKey(adminAPIKey), models.RoleAdmin)
		admin.Credits = 999
		if err := accountRepo.Create(ctx, admin); err != nil {
			return fmt.Errorf("failed to seed admin account: %w", err)
		}

		member := models.NewAccount("athi", auth.HashAPIKey(memberAPIKey), models.RoleMember)
		if err := accountRepo.Create(ctx, member); err != nil {
			return fmt.Errorf("failed to seed member account: %w", err)
		}
	}

	ruleCount, err := ruleRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count rules: %w", err)
	}

	if ruleCount == 0 {
		logger.Info("seeding default rules", zap.Int("count", len(defaultRules)))

		for _, seed := range defaultRules {
			rule := models.NewRule(seed.pattern, seed.action)
			if err := ruleRepo.Create(ctx, rule); err != nil {
				return fmt.Errorf("failed to seed rule %q: %w", seed.pattern, err)
			}
		}
	}

	return nil
}
