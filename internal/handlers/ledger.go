package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/avc/loyalty-rewards/internal/ledger"
	"github.com/avc/loyalty-rewards/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService определяет операции над счетом пользователя
type LedgerService interface {
	Transfer(ctx context.Context, accountID int64, req ledger.TransferRequest) (*service.TransferResult, error)
	Redeem(ctx context.Context, accountID, rewardID int64) (*service.RedeemResult, error)
	AwardBonus(ctx context.Context, accountID, points int64, reason string) (*service.BonusResult, error)
	Profile(ctx context.Context, accountID int64) (*domain.Profile, error)
	Dashboard(ctx context.Context, accountID int64) (*domain.Summary, error)
	ListTransactions(ctx context.Context, accountID int64, filter domain.TransactionFilter) (*domain.TransactionPage, error)
	Redemptions(ctx context.Context, accountID int64) ([]*domain.RedemptionDetails, error)
	TierHistory(ctx context.Context, accountID int64) ([]*domain.TierChange, error)
}

type LedgerHandler struct {
	ledgerService LedgerService
	logger        *zap.Logger
}

func NewLedgerHandler(ledgerService LedgerService, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

type sendMoneyRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Recipient      string          `json:"recipient" validate:"max=100"`
	RecipientPhone string          `json:"recipient_phone" validate:"omitempty,max=20"`
}

type redeemRequest struct {
	RewardID int64 `json:"reward_id" validate:"required,gt=0"`
}

type bonusRequest struct {
	Points int64  `json:"points"`
	Reason string `json:"reason" validate:"required,max=255"`
}

func (h *LedgerHandler) SendMoney(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	req, ok := decodeAndValidate[sendMoneyRequest](w, r)
	if !ok {
		return
	}
	if err := ledger.CheckAmount(req.Amount); err != nil {
		writeServiceError(w, h.logger, err, "invalid amount")
		return
	}

	result, err := h.ledgerService.Transfer(r.Context(), accountID, ledger.TransferRequest{
		Amount:         req.Amount,
		Recipient:      req.Recipient,
		RecipientPhone: req.RecipientPhone,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to send money", zap.Int64("account_id", accountID))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *LedgerHandler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	req, ok := decodeAndValidate[redeemRequest](w, r)
	if !ok {
		return
	}

	result, err := h.ledgerService.Redeem(r.Context(), accountID, req.RewardID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to redeem reward",
			zap.Int64("account_id", accountID), zap.Int64("reward_id", req.RewardID))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// AwardBonus начисляет или списывает баллы счету из пути запроса.
// Маршрут доступен только администратору, см. AdminMiddleware.
func (h *LedgerHandler) AwardBonus(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil || accountID <= 0 {
		writeError(w, http.StatusBadRequest, "account id must be a positive integer")
		return
	}

	req, ok := decodeAndValidate[bonusRequest](w, r)
	if !ok {
		return
	}

	result, err := h.ledgerService.AwardBonus(r.Context(), accountID, req.Points, req.Reason)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to award bonus", zap.Int64("account_id", accountID))
		return
	}

	h.logger.Info("bonus awarded",
		zap.Int64("account_id", accountID),
		zap.Int64("points", req.Points),
		zap.String("reason", req.Reason),
	)

	writeJSON(w, http.StatusOK, result)
}

func (h *LedgerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	profile, err := h.ledgerService.Profile(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get profile", zap.Int64("account_id", accountID))
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *LedgerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	summary, err := h.ledgerService.Dashboard(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to build dashboard", zap.Int64("account_id", accountID))
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *LedgerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	query := r.URL.Query()
	page, err := intParam(query.Get("page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	perPage, err := intParam(query.Get("per_page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "per_page must be an integer")
		return
	}

	result, err := h.ledgerService.ListTransactions(r.Context(), accountID, domain.TransactionFilter{
		Page:     page,
		PageSize: perPage,
		Type:     domain.TransactionType(query.Get("type")),
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list transactions", zap.Int64("account_id", accountID))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *LedgerHandler) Redemptions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	redemptions, err := h.ledgerService.Redemptions(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list redemptions", zap.Int64("account_id", accountID))
		return
	}

	writeJSON(w, http.StatusOK, redemptions)
}

func (h *LedgerHandler) TierHistory(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	changes, err := h.ledgerService.TierHistory(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list tier history", zap.Int64("account_id", accountID))
		return
	}

	writeJSON(w, http.StatusOK, changes)
}

// intParam разбирает необязательный числовой параметр запроса, пустое значение - 0
func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
