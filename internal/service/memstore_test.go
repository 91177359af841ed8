package service

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/avc/loyalty-rewards/internal/domain"
)

// memStore - хранилище в памяти для тестов сервисов.
// InTx выполняется последовательно и откатывает состояние при ошибке.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	accounts     map[int64]*domain.Account
	transactions []*domain.Transaction
	rewards      map[int64]*domain.Reward
	redemptions  []*domain.Redemption
	tierChanges  []*domain.TierChange
	nextID       int64

	// failOn задает ошибку для операции по имени метода
	failOn map[string]error

	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[int64]*domain.Account),
		rewards:  make(map[int64]*domain.Reward),
		failOn:   make(map[string]error),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) fail(op string) error {
	return m.failOn[op]
}

func (m *memStore) addAccount(a *domain.Account) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		a.ID = m.id()
	}
	c := *a
	m.accounts[a.ID] = &c
	return a
}

func (m *memStore) addReward(r *domain.Reward) *domain.Reward {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		r.ID = m.id()
	}
	c := *r
	m.rewards[r.ID] = &c
	return r
}

func (m *memStore) account(id int64) domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.accounts[id]
}

func (m *memStore) reward(id int64) domain.Reward {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rewards[id]
}

type memSnapshot struct {
	accounts     map[int64]domain.Account
	rewards      map[int64]domain.Reward
	transactions int
	redemptions  int
	tierChanges  int
	nextID       int64
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := memSnapshot{
		accounts:     make(map[int64]domain.Account, len(m.accounts)),
		rewards:      make(map[int64]domain.Reward, len(m.rewards)),
		transactions: len(m.transactions),
		redemptions:  len(m.redemptions),
		tierChanges:  len(m.tierChanges),
		nextID:       m.nextID,
	}
	for id, a := range m.accounts {
		s.accounts[id] = *a
	}
	for id, r := range m.rewards {
		s.rewards[id] = *r
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range s.accounts {
		c := a
		m.accounts[id] = &c
	}
	for id, r := range s.rewards {
		c := r
		m.rewards[id] = &c
	}
	m.transactions = m.transactions[:s.transactions]
	m.redemptions = m.redemptions[:s.redemptions]
	m.tierChanges = m.tierChanges[:s.tierChanges]
	m.nextID = s.nextID
}

func (m *memStore) Accounts() domain.AccountRepository         { return m }
func (m *memStore) Transactions() domain.TransactionRepository { return m }
func (m *memStore) Rewards() domain.RewardRepository           { return m }
func (m *memStore) Redemptions() domain.RedemptionRepository   { return m }
func (m *memStore) TierHistory() domain.TierHistoryRepository  { return m }

func (m *memStore) InTx(_ context.Context, fn func(domain.Storage) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

func (m *memStore) CreateAccount(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if err := m.fail("CreateAccount"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == account.Email {
			return nil, domain.ErrAccountExists
		}
	}
	c := *account
	c.ID = m.id()
	c.IsActive = true
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.accounts[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memStore) GetAccountByID(_ context.Context, id int64) (*domain.Account, error) {
	if err := m.fail("GetAccountByID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	c := *a
	return &c, nil
}

func (m *memStore) GetAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			c := *a
			return &c, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memStore) GetAccountForUpdate(ctx context.Context, id int64) (*domain.Account, error) {
	return m.GetAccountByID(ctx, id)
}

func (m *memStore) UpdateLedgerState(_ context.Context, account *domain.Account) error {
	if err := m.fail("UpdateLedgerState"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Balance = account.Balance
	a.Points = account.Points
	a.TotalSent = account.TotalSent
	a.UpdatedAt = account.UpdatedAt
	return nil
}

func (m *memStore) ListActiveAccounts(_ context.Context) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Account
	for _, a := range m.accounts {
		if a.IsActive {
			c := *a
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Account) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *memStore) CreateTransaction(_ context.Context, tx *domain.Transaction) error {
	if err := m.fail("CreateTransaction"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx.ID = m.id()
	c := *tx
	m.transactions = append(m.transactions, &c)
	return nil
}

func (m *memStore) history(accountID int64, txType domain.TransactionType) []*domain.Transaction {
	var out []*domain.Transaction
	for i := len(m.transactions) - 1; i >= 0; i-- {
		tx := m.transactions[i]
		if tx.AccountID != accountID || (txType != "" && tx.Type != txType) {
			continue
		}
		c := *tx
		out = append(out, &c)
	}
	return out
}

func (m *memStore) ListTransactions(_ context.Context, accountID int64, filter domain.TransactionFilter) (*domain.TransactionPage, error) {
	if err := m.fail("ListTransactions"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.history(accountID, filter.Type)
	from := min((filter.Page-1)*filter.PageSize, len(all))
	to := min(from+filter.PageSize, len(all))
	return domain.NewTransactionPage(all[from:to], int64(len(all)), filter), nil
}

func (m *memStore) GetHistory(_ context.Context, accountID int64) ([]*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history(accountID, ""), nil
}

func (m *memStore) CreateReward(_ context.Context, reward *domain.Reward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reward.ID = m.id()
	c := *reward
	m.rewards[c.ID] = &c
	return nil
}

func (m *memStore) GetRewardForUpdate(_ context.Context, id int64) (*domain.Reward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rewards[id]
	if !ok {
		return nil, domain.ErrRewardNotFound
	}
	c := *r
	return &c, nil
}

func (m *memStore) ListAvailableRewards(_ context.Context, category string) ([]*domain.Reward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Reward
	for _, r := range m.rewards {
		if r.IsAvailable && (category == "" || category == "All" || r.Category == category) {
			c := *r
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Reward) int {
		return cmp.Or(cmp.Compare(a.PointsCost, b.PointsCost), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (m *memStore) ListCategories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, r := range m.rewards {
		if r.IsAvailable && !slices.Contains(out, r.Category) {
			out = append(out, r.Category)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *memStore) UpdateStock(_ context.Context, id int64, stock int64) error {
	if err := m.fail("UpdateStock"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rewards[id]
	if !ok {
		return domain.ErrRewardNotFound
	}
	r.StockQuantity = stock
	return nil
}

func (m *memStore) CountRewards(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rewards)), nil
}

func (m *memStore) CreateRedemption(_ context.Context, redemption *domain.Redemption) error {
	if err := m.fail("CreateRedemption"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	redemption.ID = m.id()
	c := *redemption
	m.redemptions = append(m.redemptions, &c)
	return nil
}

func (m *memStore) ListRedemptions(_ context.Context, accountID int64) ([]*domain.RedemptionDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RedemptionDetails
	for i := len(m.redemptions) - 1; i >= 0; i-- {
		r := m.redemptions[i]
		if r.AccountID != accountID {
			continue
		}
		d := &domain.RedemptionDetails{Redemption: *r}
		if rw, ok := m.rewards[r.RewardID]; ok {
			d.Reward = *rw
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *memStore) ListExpiredRedemptions(_ context.Context, now time.Time, limit int) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for _, r := range m.redemptions {
		if r.Status == domain.RedemptionStatusCompleted && r.ExpiresAt.Before(now) && len(ids) < limit {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

func (m *memStore) MarkRedemptionExpired(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.redemptions {
		if r.ID == id && r.Status == domain.RedemptionStatusCompleted {
			r.Status = domain.RedemptionStatusExpired
		}
	}
	return nil
}

func (m *memStore) CreateTierChange(_ context.Context, change *domain.TierChange) error {
	if err := m.fail("CreateTierChange"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	change.ID = m.id()
	c := *change
	m.tierChanges = append(m.tierChanges, &c)
	return nil
}

func (m *memStore) ListTierChanges(_ context.Context, accountID int64) ([]*domain.TierChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.TierChange
	for _, c := range m.tierChanges {
		if c.AccountID == accountID {
			cc := *c
			out = append(out, &cc)
		}
	}
	return out, nil
}
