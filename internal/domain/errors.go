package domain

import (
	"errors"
	"fmt"
)

// Ошибки счетов
var (
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Причины отказа в переводе
var (
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidAmountPrecision = errors.New("amount must have at most 2 decimal places")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrRecipientRequired      = errors.New("recipient is required")
)

// Причины отказа в обмене баллов
var (
	ErrRewardNotFound     = errors.New("reward not found")
	ErrRewardUnavailable  = errors.New("reward is not available")
	ErrRewardOutOfStock   = errors.New("reward is out of stock")
	ErrInsufficientPoints = errors.New("insufficient points")
)

// ValidationError - отказ в переводе из-за некорректных входных данных
type ValidationError struct {
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// NewValidationError создает ValidationError с указанной причиной
func NewValidationError(reason error) *ValidationError {
	return &ValidationError{Reason: reason}
}

// RedemptionError - отказ в обмене баллов на награду
type RedemptionError struct {
	RewardID int64
	Reason   error
}

func (e *RedemptionError) Error() string {
	if e.RewardID == 0 {
		return fmt.Sprintf("redemption failed: %v", e.Reason)
	}
	return fmt.Sprintf("redemption of reward %d failed: %v", e.RewardID, e.Reason)
}

func (e *RedemptionError) Unwrap() error {
	return e.Reason
}

// NewRedemptionError создает RedemptionError с указанной причиной
func NewRedemptionError(rewardID int64, reason error) *RedemptionError {
	return &RedemptionError{RewardID: rewardID, Reason: reason}
}
