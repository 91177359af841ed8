package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

const (
	EnvProduction  = "prod"
	EnvDevelopment = "dev"

	defaultJWTSecret = "default-secret-key-change-in-production"
)

// Config содержит конфигурацию приложения
type Config struct {
	RunAddress  string        // Адрес и порт запуска сервиса
	DatabaseURI string        // URI подключения к БД
	JWTSecret   string        // Секретный ключ для JWT
	JWTTokenTTL time.Duration // Время жизни JWT токена
	AdminToken  string        // Токен административных маршрутов, пусто - маршруты закрыты
	LogLevel    string        // Уровень логирования
	Environment string        // prod или dev, влияет на формат логов

	// Программа лояльности
	StartingBalance      decimal.Decimal // Баланс нового счета
	DashboardRecentLimit int             // Количество последних операций на дашборде
	LeaderboardLimit     int             // Размер таблицы лидеров по умолчанию
	CatalogFile          string          // YAML каталог наград, пусто - встроенный

	// Worker Pool конфигурация
	WorkerPoolSize     int           // Количество воркеров
	WorkerQueueSize    int           // Размер очереди обменов
	WorkerScanInterval time.Duration // Интервал сканирования просроченных обменов

	// Валидация
	MinPasswordLength int // Минимальная длина пароля
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		RunAddress:           ":8080",
		JWTSecret:            defaultJWTSecret,
		JWTTokenTTL:          24 * time.Hour,
		LogLevel:             "info",
		Environment:          EnvProduction,
		StartingBalance:      decimal.NewFromInt(5000),
		DashboardRecentLimit: 5,
		LeaderboardLimit:     10,
		WorkerPoolSize:       3,
		WorkerQueueSize:      100,
		WorkerScanInterval:   time.Minute,
		MinPasswordLength:    8,
	}
}

// Load загружает конфигурацию.
// Приоритет: env переменные > флаги > .env файл > дефолтные значения
func Load(args []string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadDotEnv(os.Getwd); err != nil {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	if err := cfg.parseFlags(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.loadEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv читает .env из рабочей директории, если файл есть
func (c *Config) loadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))
	switch {
	case err == nil:
		return c.loadEnv(func(key string) (string, bool) {
			value, ok := envMap[key]
			return value, ok
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) parseFlags(args []string) error {
	fs := pflag.NewFlagSet("loyaltyd", pflag.ContinueOnError)

	fs.StringVarP(&c.RunAddress, "address", "a", c.RunAddress, "address and port to run server")
	fs.StringVarP(&c.DatabaseURI, "database", "d", c.DatabaseURI, "database URI")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "environment (dev, prod)")
	fs.StringVarP(&c.CatalogFile, "catalog", "c", c.CatalogFile, "reward catalog YAML file")

	return fs.Parse(args)
}

// loadEnv применяет непустые переменные окружения
func (c *Config) loadEnv(lookup func(string) (string, bool)) error {
	setString := func(o *string) func(string) error {
		return func(value string) error {
			*o = value
			return nil
		}
	}
	setPositiveInt := func(o *int) func(string) error {
		return func(value string) error {
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return errors.New("must be a positive integer")
			}
			*o = n
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(string) error {
		return func(value string) error {
			d, err := time.ParseDuration(value)
			if err != nil || d <= 0 {
				return errors.New("must be a positive duration")
			}
			*o = d
			return nil
		}
	}

	envMap := []struct {
		key string
		set func(string) error
	}{
		{"RUN_ADDRESS", setString(&c.RunAddress)},
		{"DATABASE_URI", setString(&c.DatabaseURI)},
		{"JWT_SECRET", setString(&c.JWTSecret)},
		{"JWT_TOKEN_TTL", setDuration(&c.JWTTokenTTL)},
		{"ADMIN_TOKEN", setString(&c.AdminToken)},
		{"LOG_LEVEL", setString(&c.LogLevel)},
		{"ENVIRONMENT", setString(&c.Environment)},
		{"STARTING_BALANCE", func(value string) error {
			d, err := decimal.NewFromString(value)
			if err != nil || d.IsNegative() {
				return errors.New("must be a non-negative amount")
			}
			c.StartingBalance = d
			return nil
		}},
		{"DASHBOARD_RECENT_LIMIT", setPositiveInt(&c.DashboardRecentLimit)},
		{"LEADERBOARD_LIMIT", setPositiveInt(&c.LeaderboardLimit)},
		{"CATALOG_FILE", setString(&c.CatalogFile)},
		{"WORKER_POOL_SIZE", setPositiveInt(&c.WorkerPoolSize)},
		{"WORKER_QUEUE_SIZE", setPositiveInt(&c.WorkerQueueSize)},
		{"WORKER_SCAN_INTERVAL", setDuration(&c.WorkerScanInterval)},
		{"MIN_PASSWORD_LENGTH", setPositiveInt(&c.MinPasswordLength)},
	}

	for _, env := range envMap {
		value, ok := lookup(env.key)
		if !ok || value == "" {
			continue
		}
		if err := env.set(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", env.key, value, err)
		}
	}

	return nil
}

func (c *Config) validate() error {
	if c.DatabaseURI == "" {
		return errors.New("database URI is required (use -d flag or DATABASE_URI env)")
	}

	if c.Environment != EnvProduction && c.Environment != EnvDevelopment {
		return fmt.Errorf("unknown environment %q (use %s or %s)", c.Environment, EnvProduction, EnvDevelopment)
	}

	return nil
}

// IsDevelopment сообщает, запущен ли сервис в режиме разработки
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// UsesDefaultSecret сообщает, что JWT секрет не задан явно
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}
