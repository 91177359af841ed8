package app

import (
	"github.com/avc/loyalty-rewards/internal/config"
	"github.com/avc/loyalty-rewards/internal/handlers"
	"github.com/avc/loyalty-rewards/internal/repository/postgres"
	"github.com/avc/loyalty-rewards/internal/service"
	"github.com/avc/loyalty-rewards/internal/utils/jwt"
	"github.com/avc/loyalty-rewards/internal/utils/password"
	"github.com/avc/loyalty-rewards/internal/worker"
	"go.uber.org/zap"
)

// services содержит все сервисы приложения
type services struct {
	auth   *service.AuthService
	ledger *service.LedgerService
}

// handlerSet содержит все хендлеры приложения
type handlerSet struct {
	auth    *handlers.AuthHandler
	ledger  *handlers.LedgerHandler
	rewards *handlers.RewardsHandler
	health  *handlers.HealthHandler
}

// dependencies содержит все зависимости приложения
type dependencies struct {
	storage    *postgres.Storage
	services   *services
	handlers   *handlerSet
	workerPool *worker.Pool
	adminToken string
}

// initDependencies создает все зависимости приложения
func initDependencies(cfg *config.Config, db postgres.DBTX, pinger handlers.Pinger, logger *zap.Logger) *dependencies {
	storage := postgres.NewStorage(db)

	// Создание утилит
	passwordHasher := password.NewBCryptHasher(password.DefaultCost, cfg.MinPasswordLength)
	jwtManager := jwt.NewManager(cfg.JWTSecret, cfg.JWTTokenTTL)

	// Создание сервисов
	svcs := &services{
		auth: service.NewAuthService(storage.Accounts(), passwordHasher, jwtManager, cfg.StartingBalance),
		ledger: service.NewLedgerService(storage, service.LedgerConfig{
			DashboardRecentLimit: cfg.DashboardRecentLimit,
			LeaderboardLimit:     cfg.LeaderboardLimit,
		}),
	}

	// Создание handlers
	hdlrs := &handlerSet{
		auth:    handlers.NewAuthHandler(svcs.auth, logger),
		ledger:  handlers.NewLedgerHandler(svcs.ledger, logger),
		rewards: handlers.NewRewardsHandler(svcs.ledger, logger),
		health:  handlers.NewHealthHandler(pinger, logger),
	}

	// Создание worker pool
	workerPool := worker.NewPool(
		cfg.WorkerPoolSize,
		cfg.WorkerQueueSize,
		cfg.WorkerScanInterval,
		storage.Redemptions(),
		logger.Named("expiry"),
	)

	return &dependencies{
		storage:    storage,
		services:   svcs,
		handlers:   hdlrs,
		workerPool: workerPool,
		adminToken: cfg.AdminToken,
	}
}
