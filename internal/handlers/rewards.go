package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/avc/loyalty-rewards/internal/domain"
	"github.com/avc/loyalty-rewards/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogService определяет публичные операции: каталог, лидеры, уровни
type CatalogService interface {
	Rewards(ctx context.Context, category string) ([]*domain.Reward, error)
	Categories(ctx context.Context) ([]string, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	TierBenefits(name string) (domain.TierBenefits, error)
}

type RewardsHandler struct {
	catalogService CatalogService
	logger         *zap.Logger
}

func NewRewardsHandler(catalogService CatalogService, logger *zap.Logger) *RewardsHandler {
	return &RewardsHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

func (h *RewardsHandler) Rewards(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	rewards, err := h.catalogService.Rewards(r.Context(), category)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list rewards", zap.String("category", category))
		return
	}

	writeJSON(w, http.StatusOK, rewards)
}

func (h *RewardsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.Categories(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list categories")
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

func (h *RewardsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	entries, err := h.catalogService.Leaderboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to build leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *RewardsHandler) TierBenefits(w http.ResponseWriter, r *http.Request) {
	benefits, err := h.catalogService.TierBenefits(chi.URLParam(r, "tier"))
	if err != nil {
		if errors.Is(err, service.ErrUnknownTier) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeServiceError(w, h.logger, err, "failed to get tier benefits")
		return
	}

	writeJSON(w, http.StatusOK, benefits)
}
