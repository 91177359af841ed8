package service

import (
	"errors"

	"github.com/avc/loyalty-rewards/internal/domain"
)

// Ошибки ввода
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrUnknownTransactionType = errors.New("unknown transaction type")
	ErrUnknownTier            = errors.New("unknown tier")
)

// isDomainError сообщает, что ошибку нужно вернуть без обертки:
// по ней handlers выбирают код ответа
func isDomainError(err error) bool {
	var validationErr *domain.ValidationError
	var redemptionErr *domain.RedemptionError

	return errors.As(err, &validationErr) ||
		errors.As(err, &redemptionErr) ||
		errors.Is(err, domain.ErrAccountNotFound) ||
		errors.Is(err, domain.ErrAccountExists) ||
		errors.Is(err, domain.ErrInvalidCredentials)
}
