package postgres

import (
	"context"
	"fmt"

	"github.com/avc/loyalty-rewards/internal/domain"
)

// TierHistoryRepository реализует domain.TierHistoryRepository
type TierHistoryRepository struct {
	db DBTX
}

// NewTierHistoryRepository создает новый TierHistoryRepository
func NewTierHistoryRepository(db DBTX) *TierHistoryRepository {
	return &TierHistoryRepository{db: db}
}

// CreateTierChange добавляет запись о смене уровня
func (r *TierHistoryRepository) CreateTierChange(ctx context.Context, change *domain.TierChange) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tier_history (account_id, old_tier, new_tier, total_sent_at_change, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		change.AccountID, change.OldTier, change.NewTier, change.TotalSentAtChange, change.CreatedAt,
	).Scan(&change.ID)

	if err != nil {
		return fmt.Errorf("repository: failed to create tier change for account %d: %w", change.AccountID, err)
	}

	return nil
}

// ListTierChanges получает историю уровней счета в хронологическом порядке
func (r *TierHistoryRepository) ListTierChanges(ctx context.Context, accountID int64) ([]*domain.TierChange, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, account_id, old_tier, new_tier, total_sent_at_change, created_at
		 FROM tier_history
		 WHERE account_id = $1
		 ORDER BY created_at ASC, id ASC`,
		accountID,
	)

	if err != nil {
		return nil, fmt.Errorf("repository: failed to list tier history for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var changes []*domain.TierChange
	for rows.Next() {
		c := &domain.TierChange{}
		if err := rows.Scan(&c.ID, &c.AccountID, &c.OldTier, &c.NewTier, &c.TotalSentAtChange, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan tier change: %w", err)
		}
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating tier history: %w", err)
	}

	return changes, nil
}
