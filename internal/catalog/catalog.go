// Package catalog загружает каталог наград из YAML и заполняет им пустую БД.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultExpiryDays - срок действия кода обмена, если в каталоге не указан
const DefaultExpiryDays = 30

//go:embed default.yaml
var defaultCatalog []byte

var ErrEmptyCatalog = errors.New("catalog has no rewards")

// Entry - позиция каталога в YAML файле.
// Необязательные поля - указатели, чтобы отличить пропуск от нуля.
type Entry struct {
	Name            string `yaml:"name" validate:"required,max=200"`
	Description     string `yaml:"description"`
	PointsCost      int64  `yaml:"points_cost" validate:"gt=0"`
	Category        string `yaml:"category" validate:"required,max=50"`
	ImageURL        string `yaml:"image_url" validate:"omitempty,url"`
	Available       *bool  `yaml:"available"`
	StockQuantity   *int64 `yaml:"stock_quantity" validate:"omitempty,gte=-1"`
	TermsConditions string `yaml:"terms_conditions"`
	ExpiryDays      int    `yaml:"expiry_days" validate:"gte=0"`
}

type file struct {
	Rewards []Entry `yaml:"rewards" validate:"dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Parse разбирает YAML каталог и применяет значения по умолчанию
func Parse(data []byte) ([]*domain.Reward, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: failed to parse: %w", err)
	}
	if len(f.Rewards) == 0 {
		return nil, ErrEmptyCatalog
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("catalog: invalid entry: %w", err)
	}

	rewards := make([]*domain.Reward, 0, len(f.Rewards))
	for _, e := range f.Rewards {
		rewards = append(rewards, e.toReward())
	}
	return rewards, nil
}

func (e Entry) toReward() *domain.Reward {
	reward := &domain.Reward{
		Name:            e.Name,
		Description:     e.Description,
		PointsCost:      e.PointsCost,
		Category:        e.Category,
		ImageURL:        e.ImageURL,
		IsAvailable:     true,
		StockQuantity:   domain.UnlimitedStock,
		TermsConditions: e.TermsConditions,
		ExpiryDays:      e.ExpiryDays,
	}
	if e.Available != nil {
		reward.IsAvailable = *e.Available
	}
	if e.StockQuantity != nil {
		reward.StockQuantity = *e.StockQuantity
	}
	if reward.ExpiryDays == 0 {
		reward.ExpiryDays = DefaultExpiryDays
	}
	return reward
}

// Load читает каталог из файла. Пустой путь - встроенный каталог по умолчанию.
func Load(path string) ([]*domain.Reward, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Seed заполняет каталог, если в БД еще нет ни одной награды.
// Возвращает количество добавленных наград.
func Seed(ctx context.Context, storage domain.Storage, path string, logger *zap.Logger) (int, error) {
	count, err := storage.Rewards().CountRewards(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog: %w", err)
	}
	if count > 0 {
		logger.Debug("catalog already seeded", zap.Int64("rewards", count))
		return 0, nil
	}

	rewards, err := Load(path)
	if err != nil {
		return 0, err
	}

	err = storage.InTx(ctx, func(tx domain.Storage) error {
		for _, reward := range rewards {
			if err := tx.Rewards().CreateReward(ctx, reward); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("catalog: failed to seed: %w", err)
	}

	logger.Info("catalog seeded", zap.Int("rewards", len(rewards)), zap.String("source", sourceName(path)))
	return len(rewards), nil
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
