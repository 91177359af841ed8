package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	referencePrefix = "MUK"
	referenceLength = 8
	codeLength      = 8

	// MoneyScale - число знаков после запятой в денежных колонках БД
	MoneyScale = 2
)

// TransferRequest - параметры перевода денег
type TransferRequest struct {
	Amount         decimal.Decimal
	Recipient      string
	RecipientPhone string
}

// TransferOutcome - результат успешного перевода
type TransferOutcome struct {
	Transaction *domain.Transaction
	TierChange  *domain.TierChange // nil, если уровень не изменился
}

// RedeemOutcome - результат успешного обмена баллов
type RedeemOutcome struct {
	Redemption  *domain.Redemption
	Transaction *domain.Transaction
}

// CheckAmount проверяет сумму перевода: она положительна и без долей копейки.
// Доли копейки БД округлила бы сама, и списание разошлось бы с начислением.
func CheckAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.NewValidationError(domain.ErrInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return domain.NewValidationError(domain.ErrInvalidAmountPrecision)
	}
	return nil
}

// Transfer проверяет перевод и применяет его к счету.
// При ошибке счет не изменяется.
func Transfer(account *domain.Account, req TransferRequest, now time.Time) (*TransferOutcome, error) {
	recipient := strings.TrimSpace(req.Recipient)

	if err := CheckAmount(req.Amount); err != nil {
		return nil, err
	}
	if req.Amount.GreaterThan(account.Balance) {
		return nil, domain.NewValidationError(domain.ErrInsufficientBalance)
	}
	if recipient == "" {
		return nil, domain.NewValidationError(domain.ErrRecipientRequired)
	}

	points := PointsFor(req.Amount)
	tierBefore := TierOf(account.TotalSent)

	account.Balance = account.Balance.Sub(req.Amount)
	account.Points += points
	account.TotalSent = account.TotalSent.Add(req.Amount)
	account.UpdatedAt = now

	completedAt := now
	outcome := &TransferOutcome{
		Transaction: &domain.Transaction{
			AccountID:      account.ID,
			Type:           domain.TransactionTypeSend,
			Amount:         req.Amount,
			PointsEarned:   points,
			Recipient:      recipient,
			RecipientPhone: strings.TrimSpace(req.RecipientPhone),
			Reference:      NewReference(),
			Status:         domain.TransactionStatusCompleted,
			Description:    fmt.Sprintf("Money sent to %s", recipient),
			CreatedAt:      now,
			CompletedAt:    &completedAt,
		},
	}

	if tierAfter := TierOf(account.TotalSent); tierAfter != tierBefore {
		outcome.TierChange = &domain.TierChange{
			AccountID:         account.ID,
			OldTier:           tierBefore,
			NewTier:           tierAfter,
			TotalSentAtChange: account.TotalSent,
			CreatedAt:         now,
		}
	}

	return outcome, nil
}

// CheckRedeem проверяет условия обмена в порядке: наличие и доступность награды,
// остаток на складе, достаточность баллов. Возвращает первую нарушенную причину.
func CheckRedeem(account *domain.Account, reward *domain.Reward) error {
	if reward == nil {
		return domain.NewRedemptionError(0, domain.ErrRewardNotFound)
	}
	if !reward.IsAvailable {
		return domain.NewRedemptionError(reward.ID, domain.ErrRewardUnavailable)
	}
	if !reward.InStock() {
		return domain.NewRedemptionError(reward.ID, domain.ErrRewardOutOfStock)
	}
	if account.Points < reward.PointsCost {
		return domain.NewRedemptionError(reward.ID, domain.ErrInsufficientPoints)
	}
	return nil
}

// Redeem списывает баллы за награду и уменьшает остаток, если он ограничен.
// При ошибке ни счет, ни награда не изменяются.
func Redeem(account *domain.Account, reward *domain.Reward, now time.Time) (*RedeemOutcome, error) {
	if err := CheckRedeem(account, reward); err != nil {
		return nil, err
	}

	account.Points -= reward.PointsCost
	account.UpdatedAt = now
	if reward.StockQuantity > 0 {
		reward.StockQuantity--
		reward.UpdatedAt = now
	}

	completedAt := now
	return &RedeemOutcome{
		Redemption: &domain.Redemption{
			AccountID:      account.ID,
			RewardID:       reward.ID,
			PointsSpent:    reward.PointsCost,
			Status:         domain.RedemptionStatusCompleted,
			RedemptionCode: NewRedemptionCode(),
			ExpiresAt:      now.AddDate(0, 0, reward.ExpiryDays),
			RedeemedAt:     &completedAt,
			CreatedAt:      now,
		},
		Transaction: &domain.Transaction{
			AccountID:    account.ID,
			Type:         domain.TransactionTypeReward,
			Amount:       decimal.Zero,
			PointsEarned: -reward.PointsCost,
			Reference:    NewReference(),
			Status:       domain.TransactionStatusCompleted,
			Description:  fmt.Sprintf("Redeemed %s", reward.Name),
			CreatedAt:    now,
			CompletedAt:  &completedAt,
		},
	}, nil
}

// AwardBonus начисляет бонусные баллы (допускается отрицательное значение)
func AwardBonus(account *domain.Account, points int64, reason string, now time.Time) *domain.Transaction {
	account.Points += points
	account.UpdatedAt = now

	completedAt := now
	return &domain.Transaction{
		AccountID:    account.ID,
		Type:         domain.TransactionTypeBonus,
		Amount:       decimal.Zero,
		PointsEarned: points,
		Reference:    NewReference(),
		Status:       domain.TransactionStatusCompleted,
		Description:  reason,
		CreatedAt:    now,
		CompletedAt:  &completedAt,
	}
}

// IsExpired сообщает, истек ли срок действия обмена
func IsExpired(r *domain.Redemption, now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// NewReference генерирует уникальный номер операции вида MUKXXXXXXXX
func NewReference() string {
	return referencePrefix + randomCode(referenceLength)
}

// NewRedemptionCode генерирует код обмена из 8 символов
func NewRedemptionCode() string {
	return randomCode(codeLength)
}

func randomCode(n int) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:n])
}
