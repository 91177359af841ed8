package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/avc/loyalty-rewards/internal/domain"
)

// RedemptionRepository реализует domain.RedemptionRepository
type RedemptionRepository struct {
	db DBTX
}

// NewRedemptionRepository создает новый RedemptionRepository
func NewRedemptionRepository(db DBTX) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

// CreateRedemption сохраняет обмен и заполняет его ID
func (r *RedemptionRepository) CreateRedemption(ctx context.Context, redemption *domain.Redemption) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO redemptions (account_id, reward_id, points_spent, status, redemption_code, expires_at, redeemed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		redemption.AccountID, redemption.RewardID, redemption.PointsSpent, redemption.Status,
		redemption.RedemptionCode, redemption.ExpiresAt, redemption.RedeemedAt, redemption.CreatedAt,
	).Scan(&redemption.ID)

	if err != nil {
		return fmt.Errorf("repository: failed to create redemption for account %d: %w", redemption.AccountID, err)
	}

	return nil
}

// ListRedemptions получает обмены счета вместе с наградами, новые первыми
func (r *RedemptionRepository) ListRedemptions(ctx context.Context, accountID int64) ([]*domain.RedemptionDetails, error) {
	rows, err := r.db.Query(ctx,
		`SELECT rd.id, rd.account_id, rd.reward_id, rd.points_spent, rd.status, rd.redemption_code,
		        rd.expires_at, rd.redeemed_at, rd.created_at,
		        rw.id, rw.name, rw.description, rw.points_cost, rw.category, rw.image_url,
		        rw.is_available, rw.stock_quantity, rw.terms_conditions, rw.expiry_days, rw.created_at, rw.updated_at
		 FROM redemptions rd
		 JOIN rewards rw ON rw.id = rd.reward_id
		 WHERE rd.account_id = $1
		 ORDER BY rd.created_at DESC, rd.id DESC`,
		accountID,
	)

	if err != nil {
		return nil, fmt.Errorf("repository: failed to list redemptions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var redemptions []*domain.RedemptionDetails
	for rows.Next() {
		d := &domain.RedemptionDetails{}
		err := rows.Scan(&d.ID, &d.AccountID, &d.RewardID, &d.PointsSpent, &d.Status, &d.RedemptionCode,
			&d.ExpiresAt, &d.RedeemedAt, &d.Redemption.CreatedAt,
			&d.Reward.ID, &d.Reward.Name, &d.Reward.Description, &d.Reward.PointsCost, &d.Reward.Category,
			&d.Reward.ImageURL, &d.Reward.IsAvailable, &d.Reward.StockQuantity, &d.Reward.TermsConditions,
			&d.Reward.ExpiryDays, &d.Reward.CreatedAt, &d.Reward.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan redemption: %w", err)
		}
		redemptions = append(redemptions, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating redemptions: %w", err)
	}

	return redemptions, nil
}

// ListExpiredRedemptions получает ID завершенных обменов с истекшим сроком
func (r *RedemptionRepository) ListExpiredRedemptions(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id
		 FROM redemptions
		 WHERE status = $1 AND expires_at < $2
		 ORDER BY expires_at ASC
		 LIMIT $3`,
		domain.RedemptionStatusCompleted, now, limit,
	)

	if err != nil {
		return nil, fmt.Errorf("repository: failed to list expired redemptions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repository: failed to scan redemption id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating expired redemptions: %w", err)
	}

	return ids, nil
}

// MarkRedemptionExpired переводит завершенный обмен в статус expired.
// Повторный вызов для уже истекшего обмена не является ошибкой.
func (r *RedemptionRepository) MarkRedemptionExpired(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE redemptions
		 SET status = $1
		 WHERE id = $2 AND status = $3`,
		domain.RedemptionStatusExpired, id, domain.RedemptionStatusCompleted,
	)

	if err != nil {
		return fmt.Errorf("repository: failed to expire redemption %d: %w", id, err)
	}

	return nil
}
