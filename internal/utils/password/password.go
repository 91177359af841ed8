package password

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost стоимость хеширования по умолчанию
const DefaultCost = bcrypt.DefaultCost

// DefaultMinLength минимальная длина пароля по умолчанию
const DefaultMinLength = 8

// bcrypt учитывает только первые 72 байта
const maxLength = 72

var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrMismatch         = errors.New("password does not match")
)

// Hasher хеширует и проверяет пароли
type Hasher interface {
	Hash(password string) (string, error)
	Check(hash, password string) error
}

// BCryptHasher реализация Hasher через bcrypt с проверкой длины пароля
type BCryptHasher struct {
	cost      int
	minLength int
}

// NewBCryptHasher создает hasher. Некорректные параметры заменяются значениями по умолчанию.
func NewBCryptHasher(cost, minLength int) *BCryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &BCryptHasher{
		cost:      cost,
		minLength: minLength,
	}
}

// Hash проверяет длину пароля и хеширует его
func (h *BCryptHasher) Hash(password string) (string, error) {
	if utf8.RuneCountInString(password) < h.minLength {
		return "", fmt.Errorf("%w: at least %d characters required", ErrPasswordTooShort, h.minLength)
	}
	if len(password) > maxLength {
		return "", fmt.Errorf("%w: at most %d bytes allowed", ErrPasswordTooLong, maxLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashed), nil
}

// Check проверяет соответствие пароля хешу
func (h *BCryptHasher) Check(hash, password string) error {
	if hash == "" || password == "" {
		return ErrMismatch
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("failed to check password: %w", err)
	}

	return nil
}
