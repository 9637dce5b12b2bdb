package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/storage"
)

// SiteService - настройки сайта. Кэша нет: настройки читаются из БД на каждый запрос.
type SiteService interface {
	Load(ctx context.Context) (models.SiteSettings, error)
	Save(ctx context.Context, values map[string]string) error
}

type siteService struct {
	log         *slog.Logger
	db          *sql.DB
	settingRepo storage.SettingStorage
}

func NewSiteService(log *slog.Logger, db *sql.DB, settingRepo storage.SettingStorage) SiteService {
	return &siteService{log: log, db: db, settingRepo: settingRepo}
}

func (s *siteService) Load(ctx context.Context) (models.SiteSettings, error) {
	const op = "service.SiteService.Load"

	settings, err := s.settingRepo.GetSettings(ctx)
	if err != nil {
		s.log.Error("failed to load settings", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.SiteSettings(settings), nil
}

// Save сохраняет только известные ключи, остальные молча отбрасываются
func (s *siteService) Save(ctx context.Context, values map[string]string) error {
	const op = "service.SiteService.Save"
	logger := s.log.With(slog.String("op", op))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	saved := 0
	for _, key := range models.SiteSettingKeys {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := s.settingRepo.UpsertSetting(ctx, tx, key, strings.TrimSpace(value)); err != nil {
			rollback(logger, tx)
			logger.Error("failed to save setting", slog.String("key", key), slog.Any("error", err))
			return fmt.Errorf("%s: failed to save %s: %w", op, key, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("site settings saved", slog.Int("count", saved))
	return nil
}
