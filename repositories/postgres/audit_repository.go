package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/command-gateway/models"
	"github.com/upb/command-gateway/repositories"
	"go.uber.org/zap"
)

// AuditRepository implements the repositories.AuditRepository interface.
// The trail is append-only: this type deliberately exposes no update or
// delete operation.
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends a new audit entry. The timestamp is server-assigned at
// write time; the caller's value is ignored.
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, account_id, command_text, action_taken, response_status, matched_rule_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING timestamp
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		entry.ID,
		entry.AccountID,
		entry.CommandText,
		entry.ActionTaken,
		entry.ResponseStatus,
		entry.MatchedRuleID,
	).Scan(&entry.Timestamp)

	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	r.logger.Debug("audit log inserted",
		zap.String("id", entry.ID.String()),
		zap.String("status", string(entry.ResponseStatus)))
	return nil
}

// GetByAccountID retrieves entries for one account, most recent first
func (r *AuditRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, account_id, command_text, action_taken, response_status, matched_rule_id, timestamp
		FROM audit_logs
		WHERE account_id = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryAuditLogs(ctx, query, accountID, limit, offset)
}

// List retrieves entries across all accounts, most recent first
func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, account_id, command_text, action_taken, response_status, matched_rule_id, timestamp
		FROM audit_logs
		ORDER BY timestamp DESC
		LIMIT $1 OFFSET $2
	`

	return r.queryAuditLogs(ctx, query, limit, offset)
}

// CountByAccountID returns the number of entries for one account
func (r *AuditRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int, error) {
	var count int
	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs WHERE account_id = $1`, accountID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	return count, nil
}

// queryAuditLogs executes a query and scans the resulting audit logs
func (r *AuditRepository) queryAuditLogs(ctx context.Context, query string, args ...interface{}) ([]*models.AuditLog, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.AuditLog, 0)
	for rows.Next() {
		entry := &models.AuditLog{}
		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.CommandText,
			&entry.ActionTaken,
			&entry.ResponseStatus,
			&entry.MatchedRuleID,
			&entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return logs, nil
}
