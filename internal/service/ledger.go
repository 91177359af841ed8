package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/avc/loyalty-rewards/internal/ledger"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	profileRecentLimit = 10
)

// LedgerConfig - параметры выборок LedgerService
type LedgerConfig struct {
	DashboardRecentLimit int
	LeaderboardLimit     int
}

// TransferResult - результат перевода для ответа клиенту
type TransferResult struct {
	Transaction  *domain.Transaction `json:"transaction"`
	Account      *domain.Account     `json:"user"`
	PointsEarned int64               `json:"points_earned"`
	TierChange   *domain.TierChange  `json:"tier_change,omitempty"`
}

// RedeemResult - результат обмена баллов для ответа клиенту
type RedeemResult struct {
	Redemption *domain.Redemption `json:"redemption"`
	Reward     *domain.Reward     `json:"reward"`
	Account    *domain.Account    `json:"user"`
}

// BonusResult - результат начисления бонуса
type BonusResult struct {
	Transaction *domain.Transaction `json:"transaction"`
	Account     *domain.Account     `json:"user"`
}

// LedgerService применяет правила ledger к счетам в хранилище.
// Каждая изменяющая операция выполняется в одной транзакции БД
// с блокировкой строки счета.
type LedgerService struct {
	store  domain.Storage
	config LedgerConfig
	now    func() time.Time
}

// NewLedgerService создает новый LedgerService
func NewLedgerService(store domain.Storage, config LedgerConfig) *LedgerService {
	if config.DashboardRecentLimit <= 0 {
		config.DashboardRecentLimit = 5
	}
	if config.LeaderboardLimit <= 0 {
		config.LeaderboardLimit = 10
	}
	return &LedgerService{
		store:  store,
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Transfer списывает деньги со счета и начисляет баллы
func (s *LedgerService) Transfer(ctx context.Context, accountID int64, req ledger.TransferRequest) (*TransferResult, error) {
	var result *TransferResult

	err := s.store.InTx(ctx, func(tx domain.Storage) error {
		account, err := tx.Accounts().GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		outcome, err := ledger.Transfer(account, req, s.now())
		if err != nil {
			return err
		}

		if err := tx.Accounts().UpdateLedgerState(ctx, account); err != nil {
			return err
		}
		if err := tx.Transactions().CreateTransaction(ctx, outcome.Transaction); err != nil {
			return err
		}
		if outcome.TierChange != nil {
			if err := tx.TierHistory().CreateTierChange(ctx, outcome.TierChange); err != nil {
				return err
			}
		}

		result = &TransferResult{
			Transaction:  outcome.Transaction,
			Account:      account,
			PointsEarned: outcome.Transaction.PointsEarned,
			TierChange:   outcome.TierChange,
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("ledger service: failed to transfer from account %d: %w", accountID, err)
	}

	return result, nil
}

// Redeem обменивает баллы счета на награду из каталога
func (s *LedgerService) Redeem(ctx context.Context, accountID, rewardID int64) (*RedeemResult, error) {
	var result *RedeemResult

	err := s.store.InTx(ctx, func(tx domain.Storage) error {
		// Порядок блокировок: счет, затем награда
		account, err := tx.Accounts().GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		reward, err := tx.Rewards().GetRewardForUpdate(ctx, rewardID)
		if err != nil {
			if errors.Is(err, domain.ErrRewardNotFound) {
				return domain.NewRedemptionError(rewardID, domain.ErrRewardNotFound)
			}
			return err
		}

		stockBefore := reward.StockQuantity
		outcome, err := ledger.Redeem(account, reward, s.now())
		if err != nil {
			return err
		}

		if err := tx.Accounts().UpdateLedgerState(ctx, account); err != nil {
			return err
		}
		if reward.StockQuantity != stockBefore {
			if err := tx.Rewards().UpdateStock(ctx, reward.ID, reward.StockQuantity); err != nil {
				return err
			}
		}
		if err := tx.Redemptions().CreateRedemption(ctx, outcome.Redemption); err != nil {
			return err
		}
		if err := tx.Transactions().CreateTransaction(ctx, outcome.Transaction); err != nil {
			return err
		}

		result = &RedeemResult{
			Redemption: outcome.Redemption,
			Reward:     reward,
			Account:    account,
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("ledger service: failed to redeem reward %d for account %d: %w", rewardID, accountID, err)
	}

	return result, nil
}

// AwardBonus начисляет бонусные баллы с указанной причиной
func (s *LedgerService) AwardBonus(ctx context.Context, accountID, points int64, reason string) (*BonusResult, error) {
	var result *BonusResult

	err := s.store.InTx(ctx, func(tx domain.Storage) error {
		account, err := tx.Accounts().GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		entry := ledger.AwardBonus(account, points, reason, s.now())

		if err := tx.Accounts().UpdateLedgerState(ctx, account); err != nil {
			return err
		}
		if err := tx.Transactions().CreateTransaction(ctx, entry); err != nil {
			return err
		}

		result = &BonusResult{Transaction: entry, Account: account}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("ledger service: failed to award bonus to account %d: %w", accountID, err)
	}

	return result, nil
}

// Profile получает счет с последними операциями и ID полученных наград
func (s *LedgerService) Profile(ctx context.Context, accountID int64) (*domain.Profile, error) {
	account, err := s.store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("ledger service: failed to get account %d: %w", accountID, err)
	}

	page, err := s.store.Transactions().ListTransactions(ctx, accountID, domain.TransactionFilter{
		Page:     1,
		PageSize: profileRecentLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("ledger service: failed to get recent transactions for account %d: %w", accountID, err)
	}

	redemptions, err := s.store.Redemptions().ListRedemptions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("ledger service: failed to get redemptions for account %d: %w", accountID, err)
	}

	rewardIDs := make([]int64, 0, len(redemptions))
	for _, r := range redemptions {
		rewardIDs = append(rewardIDs, r.RewardID)
	}

	return &domain.Profile{
		Account:           account,
		Tier:              ledger.TierOf(account.TotalSent),
		TierProgress:      ledger.TierProgress(account.TotalSent),
		Transactions:      page.Transactions,
		RedeemedRewardIDs: rewardIDs,
	}, nil
}

// Dashboard собирает сводку по счету
func (s *LedgerService) Dashboard(ctx context.Context, accountID int64) (*domain.Summary, error) {
	account, err := s.store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("ledger service: failed to get account %d: %w", accountID, err)
	}

	history, err := s.store.Transactions().GetHistory(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("ledger service: failed to get history for account %d: %w", accountID, err)
	}

	return ledger.Dashboard(account, history, s.now(), s.config.DashboardRecentLimit), nil
}

// ListTransactions получает страницу истории счета.
// Нулевые page и pageSize заменяются значениями по умолчанию.
func (s *LedgerService) ListTransactions(ctx context.Context, accountID int64, filter domain.TransactionFilter) (*domain.TransactionPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = DefaultPageSize
	}
	if filter.PageSize > MaxPageSize {
		filter.PageSize = MaxPageSize
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.NewValidationError(fmt.Errorf("%w: %q", ErrUnknownTransactionType, filter.Type))
	}

	page, err := s.store.Transactions().ListTransactions(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("ledger service: failed to list transactions for account %d: %w", accountID, err)
	}

	return page, nil
}

// Rewards получает доступные награды категории. Пустая категория или "All" - все.
func (s *LedgerService) Rewards(ctx context.Context, category string) ([]*domain.Reward, error) {
	rewards, err := s.store.Rewards().ListAvailableRewards(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("ledger service: failed to list rewards: %w", err)
	}
	if rewards == nil {
		rewards = []*domain.Reward{}
	}
	return rewards, nil
}

// Categories получает категории доступных наград
func (s *LedgerService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.store.Rewards().ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger service: failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Redemptions получает обмены счета вместе с наградами
func (s *LedgerService) Redemptions(ctx context.Context, accountID int64) ([]*domain.RedemptionDetails, error) {
	redemptions, err := s.store.Redemptions().ListRedemptions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("ledger service: failed to list redemptions for account %d: %w", accountID, err)
	}
	if redemptions == nil {
		redemptions = []*domain.RedemptionDetails{}
	}
	return redemptions, nil
}

// TierHistory получает историю смены уровней счета
func (s *LedgerService) TierHistory(ctx context.Context, accountID int64) ([]*domain.TierChange, error) {
	changes, err := s.store.TierHistory().ListTierChanges(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("ledger service: failed to list tier history for account %d: %w", accountID, err)
	}
	if changes == nil {
		changes = []*domain.TierChange{}
	}
	return changes, nil
}

// Leaderboard получает таблицу лидеров. limit <= 0 - значение из конфигурации.
func (s *LedgerService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = s.config.LeaderboardLimit
	}

	accounts, err := s.store.Accounts().ListActiveAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger service: failed to list accounts: %w", err)
	}

	return ledger.Leaderboard(accounts, limit), nil
}

// TierBenefits получает привилегии уровня по названию без учета регистра
func (s *LedgerService) TierBenefits(name string) (domain.TierBenefits, error) {
	tier, ok := ledger.ParseTier(name)
	if !ok {
		return domain.TierBenefits{}, fmt.Errorf("%w: %q", ErrUnknownTier, name)
	}
	return ledger.BenefitsOf(tier), nil
}
