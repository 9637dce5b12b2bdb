package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/linemk/ld-shop/internal/config"
	"github.com/linemk/ld-shop/internal/events"
)

type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	DB        *sql.DB
	Redis     *redis.Client // nil, если сессии хранятся в cookie
	Publisher events.Publisher
}

// NewApp создаёт новый экземпляр App: БД обязательна, redis и брокер подключаются по конфигу
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN(""))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	app := &App{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Publisher: events.NopPublisher{},
	}

	if cfg.Redis.Address != "" {
		app.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := app.Redis.Ping(ctx).Err(); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		log.Info("redis session store enabled", slog.String("address", cfg.Redis.Address))
	}

	if cfg.AMQP.URL != "" {
		publisher, err := events.NewAMQPPublisher(log, cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to broker: %w", err)
		}
		app.Publisher = publisher
		log.Info("event publishing enabled", slog.String("exchange", cfg.AMQP.Exchange))
	}

	return app, nil
}

// Close освобождает соединения в обратном порядке
func (a *App) Close() {
	if p, ok := a.Publisher.(*events.AMQPPublisher); ok {
		p.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("failed to close redis", slog.Any("error", err))
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Warn("failed to close database", slog.Any("error", err))
	}
}
