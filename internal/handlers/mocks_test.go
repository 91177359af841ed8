package handlers

import (
	"context"

	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/avc/loyalty-rewards/internal/ledger"
	"github.com/avc/loyalty-rewards/internal/service"
	"github.com/stretchr/testify/mock"
)

type authServiceMock struct{ mock.Mock }

func (m *authServiceMock) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	result, _ := args.Get(0).(*service.AuthResult)
	return result, args.Error(1)
}

func (m *authServiceMock) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	result, _ := args.Get(0).(*service.AuthResult)
	return result, args.Error(1)
}

type authenticatorMock struct{ mock.Mock }

func (m *authenticatorMock) Authenticate(token string) (int64, error) {
	args := m.Called(token)
	return args.Get(0).(int64), args.Error(1)
}

type ledgerServiceMock struct{ mock.Mock }

func (m *ledgerServiceMock) Transfer(ctx context.Context, accountID int64, req ledger.TransferRequest) (*service.TransferResult, error) {
	args := m.Called(ctx, accountID, req)
	result, _ := args.Get(0).(*service.TransferResult)
	return result, args.Error(1)
}

func (m *ledgerServiceMock) Redeem(ctx context.Context, accountID, rewardID int64) (*service.RedeemResult, error) {
	args := m.Called(ctx, accountID, rewardID)
	result, _ := args.Get(0).(*service.RedeemResult)
	return result, args.Error(1)
}

func (m *ledgerServiceMock) AwardBonus(ctx context.Context, accountID, points int64, reason string) (*service.BonusResult, error) {
	args := m.Called(ctx, accountID, points, reason)
	result, _ := args.Get(0).(*service.BonusResult)
	return result, args.Error(1)
}

func (m *ledgerServiceMock) Profile(ctx context.Context, accountID int64) (*domain.Profile, error) {
	args := m.Called(ctx, accountID)
	result, _ := args.Get(0).(*domain.Profile)
	return result, args.Error(1)
}

func (m *ledgerServiceMock) Dashboard(ctx context.Context, accountID int64) (*domain.Summary, error) {
	args := m.Called(ctx, accountID)
	result, _ := args.Get(0).(*domain.Summary)
	return result, args.Error(1)
}

func (m *ledgerServiceMock) ListTransactions(ctx context.Context, accountID int64, filter domain.TransactionFilter) (*domain.TransactionPage, error) {
	args := m.Called(ctx, accountID, filter)
	result, _ := args.Get(0).(*domain.TransactionPage)
	return result, args.Error(1)
}

func (m *ledgerServiceMock) Redemptions(ctx context.Context, accountID int64) ([]*domain.RedemptionDetails, error) {
	args := m.Called(ctx, accountID)
	result, _ := args.Get(0).([]*domain.RedemptionDetails)
	return result, args.Error(1)
}

func (m *ledgerServiceMock) TierHistory(ctx context.Context, accountID int64) ([]*domain.TierChange, error) {
	args := m.Called(ctx, accountID)
	result, _ := args.Get(0).([]*domain.TierChange)
	return result, args.Error(1)
}

type catalogServiceMock struct{ mock.Mock }

func (m *catalogServiceMock) Rewards(ctx context.Context, category string) ([]*domain.Reward, error) {
	args := m.Called(ctx, category)
	result, _ := args.Get(0).([]*domain.Reward)
	return result, args.Error(1)
}

func (m *catalogServiceMock) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).([]string)
	return result, args.Error(1)
}

func (m *catalogServiceMock) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	result, _ := args.Get(0).([]domain.LeaderboardEntry)
	return result, args.Error(1)
}

func (m *catalogServiceMock) TierBenefits(name string) (domain.TierBenefits, error) {
	args := m.Called(name)
	return args.Get(0).(domain.TierBenefits), args.Error(1)
}

type pingerMock struct{ mock.Mock }

func (m *pingerMock) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
