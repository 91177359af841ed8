package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const accountColumns = `id, name, email, phone, password_hash, balance, points, total_sent, is_active, created_at, updated_at`

// AccountRepository реализует domain.AccountRepository
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository создает новый AccountRepository
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash,
		&a.Balance, &a.Points, &a.TotalSent, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAccount создает новый счет
func (r *AccountRepository) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	created, err := scanAccount(r.db.QueryRow(ctx,
		`INSERT INTO accounts (name, email, phone, password_hash, balance)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+accountColumns,
		account.Name, account.Email, account.Phone, account.PasswordHash, account.Balance,
	))

	if err != nil {
		// Email уникален
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("repository: failed to create account %q: %w", account.Email, err)
	}

	return created, nil
}

// GetAccountByID получает счет по ID
func (r *AccountRepository) GetAccountByID(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+`
		 FROM accounts
		 WHERE id = $1`,
		id,
	))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("repository: failed to get account by id %d: %w", id, err)
	}

	return account, nil
}

// GetAccountByEmail получает счет по email
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+`
		 FROM accounts
		 WHERE email = $1`,
		email,
	))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("repository: failed to get account by email %q: %w", email, err)
	}

	return account, nil
}

// GetAccountForUpdate получает счет с блокировкой строки.
// Конкурентные операции над одним счетом выполняются последовательно.
func (r *AccountRepository) GetAccountForUpdate(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+`
		 FROM accounts
		 WHERE id = $1
		 FOR UPDATE`,
		id,
	))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("repository: failed to lock account %d: %w", id, err)
	}

	return account, nil
}

// UpdateLedgerState сохраняет баланс, баллы и объем переводов
func (r *AccountRepository) UpdateLedgerState(ctx context.Context, account *domain.Account) error {
	result, err := r.db.Exec(ctx,
		`UPDATE accounts
		 SET balance = $1, points = $2, total_sent = $3, updated_at = $4
		 WHERE id = $5`,
		account.Balance, account.Points, account.TotalSent, account.UpdatedAt, account.ID,
	)

	if err != nil {
		return fmt.Errorf("repository: failed to update account %d: %w", account.ID, err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// ListActiveAccounts получает активные счета в порядке создания
func (r *AccountRepository) ListActiveAccounts(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+accountColumns+`
		 FROM accounts
		 WHERE is_active = TRUE
		 ORDER BY id ASC`,
	)

	if err != nil {
		return nil, fmt.Errorf("repository: failed to list active accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating accounts: %w", err)
	}

	return accounts, nil
}
