package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier представляет уровень участника программы лояльности
type Tier string

const (
	TierBronze Tier = "Bronze"
	TierSilver Tier = "Silver"
	TierGold   Tier = "Gold"
)

// TransactionType представляет тип операции в истории счета
type TransactionType string

const (
	TransactionTypeSend   TransactionType = "send"
	TransactionTypeReward TransactionType = "reward"
	TransactionTypeBonus  TransactionType = "bonus"
)

// Valid сообщает, известен ли тип операции
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeSend, TransactionTypeReward, TransactionTypeBonus:
		return true
	}
	return false
}

// TransactionStatus представляет статус операции
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// RedemptionStatus представляет статус обмена баллов на награду
type RedemptionStatus string

const (
	RedemptionStatusPending   RedemptionStatus = "pending"
	RedemptionStatusCompleted RedemptionStatus = "completed"
	RedemptionStatusExpired   RedemptionStatus = "expired"
	RedemptionStatusCancelled RedemptionStatus = "cancelled"
)

// UnlimitedStock означает, что количество награды не ограничено
const UnlimitedStock = -1

// Account представляет счет пользователя
type Account struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	PasswordHash string          `json:"-"` // Не отправляем хеш в JSON
	Balance      decimal.Decimal `json:"balance"`
	Points       int64           `json:"points"`
	TotalSent    decimal.Decimal `json:"total_sent"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Transaction представляет запись в истории счета.
// Перевод денег - это Transaction с типом send.
type Transaction struct {
	ID             int64             `json:"id"`
	AccountID      int64             `json:"-"`
	Type           TransactionType   `json:"type"`
	Amount         decimal.Decimal   `json:"amount"`
	PointsEarned   int64             `json:"points"`
	Recipient      string            `json:"recipient,omitempty"`
	RecipientPhone string            `json:"recipient_phone,omitempty"`
	Reference      string            `json:"reference"`
	Status         TransactionStatus `json:"status"`
	Description    string            `json:"description,omitempty"`
	CreatedAt      time.Time         `json:"date"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}

// Reward представляет позицию каталога наград
type Reward struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	PointsCost      int64     `json:"points_cost"`
	Category        string    `json:"category"`
	ImageURL        string    `json:"image,omitempty"`
	IsAvailable     bool      `json:"available"`
	StockQuantity   int64     `json:"stock_quantity"`
	TermsConditions string    `json:"terms_conditions,omitempty"`
	ExpiryDays      int       `json:"expiry_days"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"-"`
}

// InStock сообщает, есть ли награда в наличии
func (r *Reward) InStock() bool {
	return r.StockQuantity == UnlimitedStock || r.StockQuantity > 0
}

// Redemption представляет обмен баллов на награду
type Redemption struct {
	ID             int64            `json:"id"`
	AccountID      int64            `json:"-"`
	RewardID       int64            `json:"reward_id"`
	PointsSpent    int64            `json:"points_spent"`
	Status         RedemptionStatus `json:"status"`
	RedemptionCode string           `json:"redemption_code"`
	ExpiresAt      time.Time        `json:"expires_at"`
	RedeemedAt     *time.Time       `json:"redeemed_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// RedemptionDetails - обмен вместе с наградой
type RedemptionDetails struct {
	Redemption
	Reward Reward `json:"reward"`
}

// TierChange - запись аудита о смене уровня
type TierChange struct {
	ID                int64           `json:"id"`
	AccountID         int64           `json:"-"`
	OldTier           Tier            `json:"old_tier"`
	NewTier           Tier            `json:"new_tier"`
	TotalSentAtChange decimal.Decimal `json:"total_sent_at_change"`
	CreatedAt         time.Time       `json:"created_at"`
}

// TransactionFilter задает параметры постраничной выборки истории
type TransactionFilter struct {
	Page     int
	PageSize int
	Type     TransactionType // Пустое значение - все типы
}

// TransactionPage - страница истории операций
type TransactionPage struct {
	Transactions []*Transaction `json:"transactions"`
	Total        int64          `json:"total"`
	Pages        int            `json:"pages"`
	CurrentPage  int            `json:"current_page"`
	HasNext      bool           `json:"has_next"`
	HasPrev      bool           `json:"has_prev"`
}

// NewTransactionPage собирает страницу и считает производные поля пагинации
func NewTransactionPage(items []*Transaction, total int64, filter TransactionFilter) *TransactionPage {
	pages := 0
	if filter.PageSize > 0 {
		pages = int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	}
	if items == nil {
		items = []*Transaction{}
	}
	return &TransactionPage{
		Transactions: items,
		Total:        total,
		Pages:        pages,
		CurrentPage:  filter.Page,
		HasNext:      filter.Page < pages,
		HasPrev:      filter.Page > 1,
	}
}

// Summary - сводка для дашборда пользователя
type Summary struct {
	Account            *Account       `json:"user"`
	Tier               Tier           `json:"tier"`
	RecentTransactions []*Transaction `json:"recent_transactions"`
	MonthlyPoints      int64          `json:"monthly_points"`
	TotalEarned        int64          `json:"total_earned"`
	TierProgress       float64        `json:"tier_progress"`
}

// LeaderboardEntry - строка таблицы лидеров
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
	Tier   Tier   `json:"tier"`
}

// TierBenefits описывает привилегии уровня
type TierBenefits struct {
	Tier            Tier     `json:"tier"`
	PointMultiplier float64  `json:"point_multiplier"`
	BonusRewards    []string `json:"bonus_rewards"`
	SpecialOffers   bool     `json:"special_offers"`
	PrioritySupport bool     `json:"priority_support"`
}

// Profile - профиль пользователя с последними операциями и полученными наградами
type Profile struct {
	Account           *Account       `json:"user"`
	Tier              Tier           `json:"tier"`
	TierProgress      float64        `json:"tier_progress"`
	Transactions      []*Transaction `json:"transactions"`
	RedeemedRewardIDs []int64        `json:"rewards_purchased"`
}
