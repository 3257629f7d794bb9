// Package postgres управляет подключением к базе данных PostgreSQL.
// Используется пул соединений pgxpool для эффективной работы
// с несколькими горутинами одновременно.
//
// Подключение живёт в явном объекте Connector: он создаётся один раз
// в точке сборки приложения и передаётся всем, кому нужна БД.
// Повторный Connect при уже установленном соединении ничего не делает.
package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/devflow-bot/internal/common"
	"serotonyl.ru/devflow-bot/internal/config"
)

// Connector держит подключение к PostgreSQL.
type Connector struct {
	url      string
	dbName   string
	maxConns int32
	minConns int32

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewConnector создаёт дескриптор подключения. Подключается Connect.
func NewConnector(cfg *config.Config) *Connector {
	return &Connector{
		url:      cfg.DatabaseURL,
		dbName:   cfg.DBName,
		maxConns: cfg.DBMaxConns,
		minConns: cfg.DBMinConns,
	}
}

// Connect подключается к базе, если подключения ещё нет, и возвращает пул.
//
// Поведение:
//   - уже подключены: возвращаем тот же пул без новых соединений
//   - DATABASE_URL пуст: пишем в лог и возвращаем common.ErrMissingDatabaseURL
//   - ошибка подключения: пишем в лог и возвращаем её; Connector остаётся
//     неподключённым, следующий вызов попробует снова
//
// Пример:
//
//	conn := postgres.NewConnector(cfg)
//	pool, err := conn.Connect(ctx)
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
func (c *Connector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		return c.pool, nil
	}

	if c.url == "" {
		log.Warn("DATABASE_URL не задан, подключение к БД пропущено")
		return nil, common.ErrMissingDatabaseURL
	}

	poolConfig, err := c.poolConfig()
	if err != nil {
		log.WithError(err).Error("Подключение к PostgreSQL не удалось")
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.WithError(err).Error("Подключение к PostgreSQL не удалось")
		return nil, fmt.Errorf("ошибка создания пула: %w", err)
	}

	// Проверяем, что база доступна
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.WithError(err).Error("Подключение к PostgreSQL не удалось")
		return nil, fmt.Errorf("база данных недоступна: %w", err)
	}

	c.pool = pool
	log.WithField("database", poolConfig.ConnConfig.Database).Info("Подключение к PostgreSQL установлено")
	return pool, nil
}

// poolConfig разбирает URL и применяет настройки пула.
func (c *Connector) poolConfig() (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(c.url)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}

	if c.dbName != "" {
		poolConfig.ConnConfig.Database = c.dbName
	}
	if c.maxConns > 0 {
		poolConfig.MaxConns = c.maxConns
	}
	if c.minConns >= 0 && c.minConns <= poolConfig.MaxConns {
		poolConfig.MinConns = c.minConns
	}
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	return poolConfig, nil
}

// Connected сообщает, установлено ли подключение.
func (c *Connector) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool != nil
}

// Pool возвращает пул или nil, если подключения нет.
func (c *Connector) Pool() *pgxpool.Pool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool
}

// Close закрывает пул. Повторный вызов безопасен.
func (c *Connector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool == nil {
		return
	}
	c.pool.Close()
	c.pool = nil
	log.Info("Соединение с PostgreSQL закрыто")
}

// RunMigrations готовит систему миграций: создаёт таблицу schema_migrations.
// Сами миграции применяются через ExecMigrationSQL по номеру версии.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("не удалось получить соединение: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы миграций: %w", err)
	}

	log.Debug("Система миграций готова")
	return nil
}
