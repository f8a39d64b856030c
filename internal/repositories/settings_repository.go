package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/skyaboveme/yourgency/internal/models"
)

const settingsKey = "settings"

// SettingsRepository хранит настройки одним JSON-документом (ключ "settings").
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get возвращает сохранённые настройки; found=false, если ещё ничего не сохраняли.
func (r *SettingsRepository) Get(ctx context.Context) (s models.Settings, found bool, err error) {
	var raw string
	err = r.db.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = $1`, settingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return s, false, nil
	}
	if err != nil {
		return s, false, fmt.Errorf("чтение настроек: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return s, false, fmt.Errorf("настройки json: %w", err)
	}
	return s, true, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s models.Settings) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("настройки json: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO app_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, settingsKey, string(b))
	if err != nil {
		return fmt.Errorf("сохранение настроек: %w", err)
	}
	return nil
}
