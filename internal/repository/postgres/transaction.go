package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

const transactionColumns = `id, account_id, type, amount, points_earned, recipient, recipient_phone, reference, status, description, created_at, completed_at`

var errDuplicateReference = errors.New("transaction reference already exists")

// TransactionRepository реализует domain.TransactionRepository
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository создает новый TransactionRepository
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	err := row.Scan(&tx.ID, &tx.AccountID, &tx.Type, &tx.Amount, &tx.PointsEarned,
		&tx.Recipient, &tx.RecipientPhone, &tx.Reference, &tx.Status, &tx.Description,
		&tx.CreatedAt, &tx.CompletedAt)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// CreateTransaction сохраняет запись истории и заполняет ее ID
func (r *TransactionRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO transactions (account_id, type, amount, points_earned, recipient, recipient_phone, reference, status, description, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		tx.AccountID, tx.Type, tx.Amount, tx.PointsEarned, tx.Recipient, tx.RecipientPhone,
		tx.Reference, tx.Status, tx.Description, tx.CreatedAt, tx.CompletedAt,
	).Scan(&tx.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("repository: %w: %s", errDuplicateReference, tx.Reference)
		}
		return fmt.Errorf("repository: failed to create transaction for account %d: %w", tx.AccountID, err)
	}

	return nil
}

// ListTransactions получает страницу истории, новые записи первыми
func (r *TransactionRepository) ListTransactions(ctx context.Context, accountID int64, filter domain.TransactionFilter) (*domain.TransactionPage, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM transactions
		 WHERE account_id = $1 AND ($2 = '' OR type = $2)`,
		accountID, string(filter.Type),
	).Scan(&total)

	if err != nil {
		return nil, fmt.Errorf("repository: failed to count transactions for account %d: %w", accountID, err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	rows, err := r.db.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE account_id = $1 AND ($2 = '' OR type = $2)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3 OFFSET $4`,
		accountID, string(filter.Type), filter.PageSize, offset,
	)

	if err != nil {
		return nil, fmt.Errorf("repository: failed to list transactions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating transactions: %w", err)
	}

	return domain.NewTransactionPage(transactions, total, filter), nil
}

// GetHistory получает всю историю счета, новые записи первыми
func (r *TransactionRepository) GetHistory(ctx context.Context, accountID int64) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE account_id = $1
		 ORDER BY created_at DESC, id DESC`,
		accountID,
	)

	if err != nil {
		return nil, fmt.Errorf("repository: failed to get history for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating history: %w", err)
	}

	return transactions, nil
}
