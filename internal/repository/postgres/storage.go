package postgres

import (
	"context"
	"fmt"

	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX - общий интерфейс пула соединений и транзакции pgx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// rowScanner покрывает pgx.Row и pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// Storage реализует domain.Storage поверх pgx
type Storage struct {
	db DBTX
}

// NewStorage создает Storage
func NewStorage(db DBTX) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Accounts() domain.AccountRepository {
	return NewAccountRepository(s.db)
}

func (s *Storage) Transactions() domain.TransactionRepository {
	return NewTransactionRepository(s.db)
}

func (s *Storage) Rewards() domain.RewardRepository {
	return NewRewardRepository(s.db)
}

func (s *Storage) Redemptions() domain.RedemptionRepository {
	return NewRedemptionRepository(s.db)
}

func (s *Storage) TierHistory() domain.TierHistoryRepository {
	return NewTierHistoryRepository(s.db)
}

// InTx выполняет fn в транзакции: коммит при успехе, откат при ошибке
func (s *Storage) InTx(ctx context.Context, fn func(domain.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	return fn(NewStorage(tx))
}
