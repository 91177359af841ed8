package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/avc/loyalty-rewards/internal/utils/jwt"
	"github.com/avc/loyalty-rewards/internal/utils/password"
	"github.com/shopspring/decimal"
)

// RegisterInput - данные для открытия счета
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// AuthResult - токен доступа и счет, которому он выдан
type AuthResult struct {
	Token   string          `json:"token"`
	Account *domain.Account `json:"user"`
}

// AuthService регистрирует и аутентифицирует владельцев счетов
type AuthService struct {
	accounts        domain.AccountRepository
	passwordHasher  password.Hasher
	jwtManager      *jwt.Manager
	startingBalance decimal.Decimal
}

// NewAuthService создает новый AuthService
func NewAuthService(
	accounts domain.AccountRepository,
	passwordHasher password.Hasher,
	jwtManager *jwt.Manager,
	startingBalance decimal.Decimal,
) *AuthService {
	return &AuthService{
		accounts:        accounts,
		passwordHasher:  passwordHasher,
		jwtManager:      jwtManager,
		startingBalance: startingBalance,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register открывает счет со стартовым балансом и выдает токен
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.NewValidationError(ErrInvalidInput)
	}

	hash, err := s.passwordHasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			return nil, domain.NewValidationError(err)
		}
		return nil, fmt.Errorf("auth service: failed to hash password for %q: %w", email, err)
	}

	account, err := s.accounts.CreateAccount(ctx, &domain.Account{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Balance:      s.startingBalance,
	})
	if err != nil {
		// Не оборачиваем sentinel error
		if errors.Is(err, domain.ErrAccountExists) {
			return nil, err
		}
		return nil, fmt.Errorf("auth service: failed to register %q: %w", email, err)
	}

	return s.issue(account)
}

// Login проверяет email и пароль и выдает токен
func (s *AuthService) Login(ctx context.Context, email, userPassword string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || userPassword == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: failed to get account %q: %w", email, err)
	}

	if !account.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.passwordHasher.Check(account.PasswordHash, userPassword); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(account)
}

// Authenticate проверяет токен и возвращает ID счета
func (s *AuthService) Authenticate(token string) (int64, error) {
	claims, err := s.jwtManager.Validate(token)
	if err != nil {
		return 0, domain.ErrInvalidCredentials
	}
	return claims.AccountID, nil
}

func (s *AuthService) issue(account *domain.Account) (*AuthResult, error) {
	token, err := s.jwtManager.Generate(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("auth service: failed to generate token for account %d: %w", account.ID, err)
	}
	return &AuthResult{Token: token, Account: account}, nil
}
