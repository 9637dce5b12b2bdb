package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SettingStorage - ключ/значение настроек сайта
type SettingStorage interface {
	GetSettings(ctx context.Context) (map[string]string, error)
	UpsertSetting(ctx context.Context, tx *sql.Tx, key, value string) error
}

type settingRepository struct {
	db *sql.DB
}

func NewSettingRepository(db *sql.DB) SettingStorage {
	return &settingRepository{db: db}
}

func (r *settingRepository) GetSettings(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM site_settings")
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *settingRepository) UpsertSetting(ctx context.Context, tx *sql.Tx, key, value string) error {
	query := `INSERT INTO site_settings (key, value, updated_at) VALUES ($1, $2, NOW())
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := tx.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}
	return nil
}
