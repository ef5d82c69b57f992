package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/command-gateway/models"
	"github.com/upb/command-gateway/repositories"
	"github.com/upb/command-gateway/services"
	"go.uber.org/zap"
)

// RuleRepository implements the repositories.RuleRepository interface
type RuleRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *DB, logger *zap.Logger) repositories.RuleRepository {
	return &RuleRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new rule. seq is assigned by the database so creation
// order is the match priority.
func (r *RuleRepository) Create(ctx context.Context, rule *models.Rule) error {
	query := `
		INSERT INTO rules (id, pattern, action, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING seq
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		rule.ID,
		rule.Pattern,
		rule.Action,
		rule.CreatedAt,
	).Scan(&rule.Seq)

	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}

	r.logger.Debug("rule created",
		zap.String("id", rule.ID.String()),
		zap.Int64("seq", rule.Seq),
		zap.String("action", string(rule.Action)))
	return nil
}

// GetByID retrieves a rule by ID
func (r *RuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Rule, error) {
	query := `
		SELECT id, seq, pattern, action, created_at
		FROM rules
		WHERE id = $1
	`

	rule := &models.Rule{}
	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&rule.ID,
		&rule.Seq,
		&rule.Pattern,
		&rule.Action,
		&rule.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return rule, nil
}

// List retrieves all rules in creation order. A single SELECT gives the
// pipeline one consistent snapshot per evaluation.
func (r *RuleRepository) List(ctx context.Context) ([]*models.Rule, error) {
	query := `
		SELECT id, seq, pattern, action, created_at
		FROM rules
		ORDER BY seq ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	rules := make([]*models.Rule, 0)
	for rows.Next() {
		rule := &models.Rule{}
		if err := rows.Scan(
			&rule.ID,
			&rule.Seq,
			&rule.Pattern,
			&rule.Action,
			&rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return rules, nil
}

// Delete deletes a rule
func (r *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM rules WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return services.ErrRuleNotFound
	}

	r.logger.Debug("rule deleted", zap.String("id", id.String()))
	return nil
}

// Count returns the total number of rules
func (r *RuleRepository) Count(ctx context.Context) (int, error) {
	var count int
	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM rules`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rules: %w", err)
	}
	return count, nil
}
