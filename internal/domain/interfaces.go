package domain

import (
	"context"
	"time"
)

// AccountRepository определяет методы для работы со счетами
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *Account) (*Account, error)
	GetAccountByID(ctx context.Context, id int64) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	// GetAccountForUpdate блокирует строку счета до конца транзакции
	GetAccountForUpdate(ctx context.Context, id int64) (*Account, error)
	UpdateLedgerState(ctx context.Context, account *Account) error
	ListActiveAccounts(ctx context.Context) ([]*Account, error)
}

// TransactionRepository определяет методы для работы с историей операций
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	ListTransactions(ctx context.Context, accountID int64, filter TransactionFilter) (*TransactionPage, error)
	GetHistory(ctx context.Context, accountID int64) ([]*Transaction, error)
}

// RewardRepository определяет методы для работы с каталогом наград
type RewardRepository interface {
	CreateReward(ctx context.Context, reward *Reward) error
	GetRewardForUpdate(ctx context.Context, id int64) (*Reward, error)
	ListAvailableRewards(ctx context.Context, category string) ([]*Reward, error)
	ListCategories(ctx context.Context) ([]string, error)
	UpdateStock(ctx context.Context, id int64, stock int64) error
	CountRewards(ctx context.Context) (int64, error)
}

// RedemptionRepository определяет методы для работы с обменами
type RedemptionRepository interface {
	CreateRedemption(ctx context.Context, redemption *Redemption) error
	ListRedemptions(ctx context.Context, accountID int64) ([]*RedemptionDetails, error)
	ListExpiredRedemptions(ctx context.Context, now time.Time, limit int) ([]int64, error)
	MarkRedemptionExpired(ctx context.Context, id int64) error
}

// TierHistoryRepository определяет методы для работы с историей уровней
type TierHistoryRepository interface {
	CreateTierChange(ctx context.Context, change *TierChange) error
	ListTierChanges(ctx context.Context, accountID int64) ([]*TierChange, error)
}

// Storage объединяет репозитории и позволяет выполнить их в одной транзакции
type Storage interface {
	Accounts() AccountRepository
	Transactions() TransactionRepository
	Rewards() RewardRepository
	Redemptions() RedemptionRepository
	TierHistory() TierHistoryRepository

	// InTx выполняет fn в транзакции БД. Ошибка из fn откатывает все изменения.
	InTx(ctx context.Context, fn func(Storage) error) error
}
