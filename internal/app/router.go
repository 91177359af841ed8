package app

import (
	"github.com/avc/loyalty-rewards/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// setupRouter создает и настраивает роутер
func setupRouter(deps *dependencies, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	setupMiddleware(r, logger)

	// Маршруты
	setupRoutes(r, deps)

	return r
}

// setupMiddleware настраивает middleware для роутера
func setupMiddleware(r *chi.Mux, logger *zap.Logger) {
	r.Use(handlers.RequestIDMiddleware())
	r.Use(handlers.LoggingMiddleware(logger))
	r.Use(handlers.RecoveryMiddleware(logger))
	r.Use(middleware.Compress(5))
}

// setupRoutes настраивает маршруты приложения
func setupRoutes(r *chi.Mux, deps *dependencies) {
	h := deps.handlers

	// Health check эндпоинты
	r.Get("/health", h.health.Health)
	r.Get("/ready", h.health.Ready)

	r.Route("/api", func(r chi.Router) {
		// Публичные эндпоинты
		r.Post("/auth/register", h.auth.Register)
		r.Post("/auth/login", h.auth.Login)
		r.Get("/rewards", h.rewards.Rewards)
		r.Get("/rewards/categories", h.rewards.Categories)
		r.Get("/leaderboard", h.rewards.Leaderboard)
		r.Get("/tiers/{tier}/benefits", h.rewards.TierBenefits)

		// Защищенные эндпоинты
		r.Group(func(r chi.Router) {
			r.Use(handlers.AuthMiddleware(deps.services.auth))
			r.Get("/user/profile", h.ledger.Profile)
			r.Get("/user/dashboard", h.ledger.Dashboard)
			r.Get("/user/redemptions", h.ledger.Redemptions)
			r.Get("/user/tier-history", h.ledger.TierHistory)
			r.Post("/send-money", h.ledger.SendMoney)
			r.Get("/transactions", h.ledger.Transactions)
			r.Post("/redeem-reward", h.ledger.RedeemReward)
		})

		// Административные эндпоинты, bearer токен пользователя здесь не принимается
		r.Route("/admin", func(r chi.Router) {
			r.Use(handlers.AdminMiddleware(deps.adminToken))
			r.Post("/accounts/{accountID}/bonus", h.ledger.AwardBonus)
		})
	})
}
