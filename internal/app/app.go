package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avc/loyalty-rewards/internal/catalog"
	"github.com/avc/loyalty-rewards/internal/config"
	"github.com/avc/loyalty-rewards/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App представляет приложение
type App struct {
	config     *config.Config
	logger     *zap.Logger
	db         *pgxpool.Pool
	router     *chi.Mux
	workerPool *worker.Pool
	server     *http.Server
}

// NewApp создает новое приложение. args - аргументы командной строки без имени программы.
func NewApp(args []string) (*App, error) {
	ctx := context.Background()

	// Загрузка конфигурации
	cfg, err := config.Load(args)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализация логгера
	logger, err := initLogger(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		return nil, err
	}
	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET is not set, using the default secret")
	}
	if cfg.AdminToken == "" {
		logger.Info("ADMIN_TOKEN is not set, admin routes are disabled")
	}

	// Инициализация базы данных и миграции
	dbPool, err := initDatabase(ctx, cfg.DatabaseURI, logger)
	if err != nil {
		return nil, err
	}

	// Инициализация зависимостей
	deps := initDependencies(cfg, dbPool, dbPool, logger)

	// Заполнение каталога наград
	if _, err := catalog.Seed(ctx, deps.storage, cfg.CatalogFile, logger); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	// Настройка роутера
	router := setupRouter(deps, logger)

	// Создание HTTP сервера
	server := createServer(cfg.RunAddress, router)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         dbPool,
		router:     router,
		workerPool: deps.workerPool,
		server:     server,
	}, nil
}

// Run запускает приложение и блокируется до сигнала завершения
func (a *App) Run() error {
	defer a.logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск worker pool
	a.workerPool.Start(ctx)
	a.logger.Info("worker pool started")

	// Запуск HTTP сервера и ожидание сигнала завершения
	serveErr := a.runServer()

	// Graceful shutdown
	a.shutdown(cancel)

	return serveErr
}
