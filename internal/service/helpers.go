package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/linemk/ld-shop/internal/events"
)

// rollback откатывает транзакцию и логирует только ошибку самого отката
func rollback(logger *slog.Logger, tx *sql.Tx) {
	if rbErr := tx.Rollback(); rbErr != nil {
		logger.Error("transaction rollback failed", slog.Any("error", rbErr))
	}
}

// publishEvent вызывается после коммита; сбой брокера только логируется
func publishEvent(ctx context.Context, logger *slog.Logger, publisher events.Publisher, pattern string, data any) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, pattern, data); err != nil {
		logger.Warn("failed to publish event", slog.String("pattern", pattern), slog.Any("error", err))
	}
}
