package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/jackc/pgx/v5"
)

const rewardColumns = `id, name, description, points_cost, category, image_url, is_available, stock_quantity, terms_conditions, expiry_days, created_at, updated_at`

// AllCategories означает отсутствие фильтра по категории
const AllCategories = "All"

// RewardRepository реализует domain.RewardRepository
type RewardRepository struct {
	db DBTX
}

// NewRewardRepository создает новый RewardRepository
func NewRewardRepository(db DBTX) *RewardRepository {
	return &RewardRepository{db: db}
}

func scanReward(row rowScanner) (*domain.Reward, error) {
	rw := &domain.Reward{}
	err := row.Scan(&rw.ID, &rw.Name, &rw.Description, &rw.PointsCost, &rw.Category, &rw.ImageURL,
		&rw.IsAvailable, &rw.StockQuantity, &rw.TermsConditions, &rw.ExpiryDays, &rw.CreatedAt, &rw.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rw, nil
}

// CreateReward добавляет награду в каталог
func (r *RewardRepository) CreateReward(ctx context.Context, reward *domain.Reward) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO rewards (name, description, points_cost, category, image_url, is_available, stock_quantity, terms_conditions, expiry_days)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		reward.Name, reward.Description, reward.PointsCost, reward.Category, reward.ImageURL,
		reward.IsAvailable, reward.StockQuantity, reward.TermsConditions, reward.ExpiryDays,
	).Scan(&reward.ID, &reward.CreatedAt, &reward.UpdatedAt)

	if err != nil {
		return fmt.Errorf("repository: failed to create reward %q: %w", reward.Name, err)
	}

	return nil
}

// GetRewardForUpdate получает награду с блокировкой строки
func (r *RewardRepository) GetRewardForUpdate(ctx context.Context, id int64) (*domain.Reward, error) {
	reward, err := scanReward(r.db.QueryRow(ctx,
		`SELECT `+rewardColumns+`
		 FROM rewards
		 WHERE id = $1
		 FOR UPDATE`,
		id,
	))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRewardNotFound
		}
		return nil, fmt.Errorf("repository: failed to lock reward %d: %w", id, err)
	}

	return reward, nil
}

// ListAvailableRewards получает доступные награды по возрастанию стоимости.
// Пустая категория или "All" - без фильтра.
func (r *RewardRepository) ListAvailableRewards(ctx context.Context, category string) ([]*domain.Reward, error) {
	if category == AllCategories {
		category = ""
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+rewardColumns+`
		 FROM rewards
		 WHERE is_available = TRUE AND ($1 = '' OR category = $1)
		 ORDER BY points_cost ASC, id ASC`,
		category,
	)

	if err != nil {
		return nil, fmt.Errorf("repository: failed to list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*domain.Reward
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rewards: %w", err)
	}

	return rewards, nil
}

// ListCategories получает категории доступных наград
func (r *RewardRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT category
		 FROM rewards
		 WHERE is_available = TRUE
		 ORDER BY category`,
	)

	if err != nil {
		return nil, fmt.Errorf("repository: failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("repository: failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating categories: %w", err)
	}

	return categories, nil
}

// UpdateStock обновляет остаток награды
func (r *RewardRepository) UpdateStock(ctx context.Context, id int64, stock int64) error {
	result, err := r.db.Exec(ctx,
		`UPDATE rewards
		 SET stock_quantity = $1, updated_at = NOW()
		 WHERE id = $2`,
		stock, id,
	)

	if err != nil {
		return fmt.Errorf("repository: failed to update stock of reward %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRewardNotFound
	}

	return nil
}

// CountRewards возвращает размер каталога
func (r *RewardRepository) CountRewards(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM rewards`).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count rewards: %w", err)
	}
	return count, nil
}
